package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-tracker/internal/models"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/testutil"
)

func TestFindOrCreateTagIsStable(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	first, err := s.FindOrCreateTag(ctx, "work")
	require.NoError(t, err)
	second, err := s.FindOrCreateTag(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	tags, err := s.ListAllTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestAttachTagIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	s := repository.New(db)

	id := insert(t, s, models.Todo{Title: "tagged twice"})
	tagID, err := s.FindOrCreateTag(ctx, "errand")
	require.NoError(t, err)

	require.NoError(t, s.AttachTag(ctx, id, tagID))
	require.NoError(t, s.AttachTag(ctx, id, tagID))

	var rows int
	require.NoError(t, db.GetContext(ctx, &rows,
		`SELECT COUNT(*) FROM todo_tag WHERE todo_id = ? AND tag_id = ?`, id, tagID))
	assert.Equal(t, 1, rows)
}

func TestListAllTagsAlphabetical(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	for _, name := range []string{"work", "errand", "home"} {
		_, err := s.FindOrCreateTag(ctx, name)
		require.NoError(t, err)
	}

	tags, err := s.ListAllTags(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"errand", "home", "work"}, names)
}

func TestListTodosForTagOrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Unix(1_700_000_000, 0))
	s := testutil.NewStore(t, repository.WithClock(clock.Now))

	tagID, err := s.FindOrCreateTag(ctx, "home")
	require.NoError(t, err)

	older := insert(t, s, models.Todo{Title: "older"})
	clock.Advance(time.Minute)
	newer := insert(t, s, models.Todo{Title: "newer"})
	insert(t, s, models.Todo{Title: "untagged"})
	require.NoError(t, s.AttachTag(ctx, older, tagID))
	require.NoError(t, s.AttachTag(ctx, newer, tagID))

	clock.Advance(time.Minute)
	require.NoError(t, s.SetCompleted(ctx, older, true))

	todos, err := s.ListTodosForTag(ctx, tagID)
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "older", todos[0].Title)
	assert.Equal(t, "newer", todos[1].Title)

	missing, err := s.ListTodosForTag(ctx, 12345)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestPrimaryTag(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	id := insert(t, s, models.Todo{Title: "plain"})
	tag, err := s.PrimaryTag(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, tag)

	tagID, err := s.FindOrCreateTag(ctx, "home")
	require.NoError(t, err)
	require.NoError(t, s.AttachTag(ctx, id, tagID))

	tag, err = s.PrimaryTag(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, "home", *tag)

	otherID, err := s.FindOrCreateTag(ctx, "work")
	require.NoError(t, err)
	require.NoError(t, s.AttachTag(ctx, id, otherID))

	tag, err = s.PrimaryTag(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Contains(t, []string{"home", "work"}, *tag)
}

func TestDeleteTagCascades(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	id := insert(t, s, models.Todo{Title: "tagged"})
	tagID, err := s.FindOrCreateTag(ctx, "gone")
	require.NoError(t, err)
	require.NoError(t, s.AttachTag(ctx, id, tagID))

	require.NoError(t, s.DeleteTag(ctx, tagID))

	tag, err := s.PrimaryTag(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, tag)

	todo, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, todo, "deleting a tag keeps its todos")
}

func TestTagByName(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)

	missing, err := s.TagByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	id, err := s.FindOrCreateTag(ctx, "home")
	require.NoError(t, err)
	tag, err := s.TagByName(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, tag)
	assert.Equal(t, id, tag.ID)
}
