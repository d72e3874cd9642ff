package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo-tracker/internal/models"
)

func (a *App) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	var desc, tag string
	var priority int
	var remote bool
	fs.StringVar(&desc, "d", "", "Description")
	fs.StringVar(&desc, "description", "", "Description")
	fs.IntVar(&priority, "p", 0, "Priority from 1 to 10")
	fs.IntVar(&priority, "priority", 0, "Priority from 1 to 10")
	fs.StringVar(&tag, "t", "", "Tag name")
	fs.StringVar(&tag, "tag", "", "Tag name")
	fs.BoolVar(&remote, "remote", false, "Queue the todo on the sync inbox instead of storing it")

	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(strings.Join(pos, " "))
	if title == "" {
		return errors.New("title cannot be empty")
	}
	if isSet(fs, "p", "priority") && (priority < 1 || priority > 10) {
		return errors.New("priority must be between 1 and 10")
	}
	tag = strings.TrimSpace(tag)
	if tag == "" && a.interactive {
		if tag, err = a.promptTag(); err != nil {
			return err
		}
	}

	if remote {
		return a.addRemote(ctx, &models.TodoCommand{
			Action:      models.ActionCreate,
			Title:       title,
			Description: desc,
			Priority:    priority,
			Tag:         tag,
		})
	}

	todo := models.Todo{Title: title, Priority: priority}
	if desc != "" {
		todo.Description = &desc
	}
	id, err := a.store.Insert(ctx, &todo)
	if err != nil {
		return err
	}
	if tag != "" {
		tagID, err := a.store.FindOrCreateTag(ctx, tag)
		if err != nil {
			return err
		}
		if err := a.store.AttachTag(ctx, id, tagID); err != nil {
			return err
		}
	}
	a.success("✓ Added TODO #%d: %s", id, title)
	return nil
}

func (a *App) promptTag() (string, error) {
	ok, err := a.prompter.Confirm("Would you like to add a tag?")
	if err != nil || !ok {
		return "", err
	}
	name, err := a.prompter.Input("Enter tag name", "Will be created if it does not already exist")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

func (a *App) addRemote(ctx context.Context, cmd *models.TodoCommand) error {
	if !a.cfg.Sync.KafkaEnabled() {
		return errors.New("--remote needs sync.kafka_brokers to be configured")
	}
	q := a.commandQueue(a.cfg.Sync)
	defer q.Close()
	if err := q.Publish(ctx, cmd); err != nil {
		return err
	}
	a.success("✓ Queued TODO: %s (event %s)", cmd.Title, cmd.EventID)
	return nil
}

func (a *App) mark(ctx context.Context, args []string) error {
	fs := newFlagSet("mark")
	status := "yes"
	fs.StringVar(&status, "s", status, "Completed status: yes or no")
	fs.StringVar(&status, "status", status, "Completed status: yes or no")

	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	var completed bool
	switch strings.ToLower(status) {
	case "yes", "y":
		completed = true
	case "no", "n":
		completed = false
	default:
		return fmt.Errorf("status must be yes or no, got %q", status)
	}

	id, err := a.pick(ctx, strings.Join(pos, " "), "mark")
	if err != nil {
		return err
	}
	if err := a.store.SetCompleted(ctx, id, completed); err != nil {
		return err
	}
	text := "not completed"
	if completed {
		text = "completed"
	}
	a.success("✓ TODO #%d marked as %s", id, text)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	pos, err := parseArgs(newFlagSet("delete"), args)
	if err != nil {
		return err
	}
	id, err := a.pick(ctx, strings.Join(pos, " "), "delete")
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	a.success("✓ TODO #%d deleted", id)
	return nil
}

// pick searches for query and returns the id of the todo to act on. On a
// terminal the user chooses among the matches; otherwise the query must
// match exactly one todo.
func (a *App) pick(ctx context.Context, query, action string) (int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, fmt.Errorf("missing query: usage: todo %s <query>", action)
	}
	matches, err := a.store.Search(ctx, query)
	if err != nil {
		return 0, err
	}
	if len(matches) == 0 {
		return 0, fmt.Errorf("no TODOs found matching '%s'", query)
	}
	if !a.interactive {
		if len(matches) == 1 {
			return matches[0].ID, nil
		}
		printTodos(a.out, matches)
		return 0, fmt.Errorf("%d TODOs match '%s'; narrow the query", len(matches), query)
	}
	return a.prompter.SelectTodo("Select TODO to "+action, matches)
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	var tag string
	filter := "all"
	fs.StringVar(&tag, "tag", "", "Only todos with this tag")
	fs.StringVar(&tag, "t", "", "Only todos with this tag")
	fs.StringVar(&filter, "filter", filter, "all, completed, active, high, medium or low")
	fs.StringVar(&filter, "f", filter, "all, completed, active, high, medium or low")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	todos, err := a.filtered(ctx, strings.ToLower(filter))
	if err != nil {
		return err
	}
	if tag != "" {
		if todos, err = a.withTag(ctx, todos, tag); err != nil {
			return err
		}
	}
	if len(todos) == 0 {
		a.empty("No TODOs found.")
		return nil
	}
	printTodos(a.out, todos)
	return nil
}

func (a *App) filtered(ctx context.Context, filter string) ([]models.Todo, error) {
	switch filter {
	case "", "all":
		return a.store.List(ctx)
	case "completed":
		return a.store.Completed(ctx)
	case "active":
		return a.store.Active(ctx)
	}
	level, err := models.ParseLevel(filter)
	if err != nil {
		return nil, fmt.Errorf("unknown filter %q: use all, completed, active, high, medium or low", filter)
	}
	return a.store.ByPriority(ctx, level)
}

// withTag keeps the todos that carry the named tag, preserving their order.
func (a *App) withTag(ctx context.Context, todos []models.Todo, name string) ([]models.Todo, error) {
	tag, err := a.store.TagByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, fmt.Errorf("no tag named '%s'", name)
	}
	tagged, err := a.store.ListTodosForTag(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]struct{}, len(tagged))
	for _, t := range tagged {
		ids[t.ID] = struct{}{}
	}
	var out []models.Todo
	for _, t := range todos {
		if _, ok := ids[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (a *App) tags(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("tags"), args); err != nil {
		return err
	}
	tags, err := a.store.ListAllTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		a.empty("No tags found.")
		return nil
	}
	fmt.Fprintln(a.out, headerStyle.Render("ID   Name"))
	fmt.Fprintln(a.out, ruleStyle.Render("---  ----"))
	for _, t := range tags {
		fmt.Fprintf(a.out, "%s  %s\n", idStyle.Render(fmt.Sprintf("%-*d", idWidth, t.ID)), t.Name)
	}
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	if _, err := parseArgs(newFlagSet("stats"), args); err != nil {
		return err
	}
	s, err := a.store.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(a.out, s)
	return nil
}
