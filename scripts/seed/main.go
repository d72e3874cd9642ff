// Seed fills the configured database with sample todos. Run from project root:
// go run ./scripts/seed -n 500
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"todo-tracker/internal/config"
	"todo-tracker/internal/database"
	"todo-tracker/internal/models"
	"todo-tracker/internal/repository"
	"todo-tracker/pkg/logger"
)

var sampleTags = []string{"home", "work", "errands", "health", "reading"}

func main() {
	_ = godotenv.Load()

	total := flag.Int("n", 1000, "Number of todos to insert")
	configPath := flag.String("config", config.DefaultConfigPath(), "Path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config failed:", err)
		os.Exit(1)
	}
	ctx := logger.WithContext(context.Background(), logger.Init(cfg.Log.Level, cfg.Log.Format, os.Stderr))

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Database failed:", err)
		os.Exit(1)
	}
	defer db.Close()
	store := repository.New(db)

	tagIDs := make([]int64, len(sampleTags))
	for i, name := range sampleTags {
		if tagIDs[i], err = store.FindOrCreateTag(ctx, name); err != nil {
			fmt.Fprintln(os.Stderr, "Tag failed:", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	for n := 1; n <= *total; n++ {
		desc := fmt.Sprintf("Description for todo %d", n)
		todo := models.Todo{
			Title:       fmt.Sprintf("Todo %d", n),
			Description: &desc,
			Priority:    rand.IntN(11),
		}
		id, err := store.Insert(ctx, &todo)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Insert failed:", err)
			os.Exit(1)
		}
		if n%3 != 0 {
			if err := store.AttachTag(ctx, id, tagIDs[rand.IntN(len(tagIDs))]); err != nil {
				fmt.Fprintln(os.Stderr, "Attach failed:", err)
				os.Exit(1)
			}
		}
		if n%4 == 0 {
			if err := store.SetCompleted(ctx, id, true); err != nil {
				fmt.Fprintln(os.Stderr, "Update failed:", err)
				os.Exit(1)
			}
		}
		if n%100 == 0 {
			fmt.Printf("\rInserted %d / %d", n, *total)
		}
	}

	fmt.Printf("\nDone: %d todos in %v\n", *total, time.Since(start))
}
