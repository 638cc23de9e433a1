package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tickdeck/internal/grouping"
	"tickdeck/internal/logging"
	"tickdeck/internal/models"
	"tickdeck/internal/normalize"
	"tickdeck/internal/remote"
	"tickdeck/internal/store"
	"tickdeck/internal/timezone"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Fetch and print the grouped task list",
	RunE:  runTasks,
}

func runTasks(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.For("tasks")

	client, err := remote.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("set up API client: %w", err)
	}

	records, err := client.FetchActiveTasks(cmd.Context())
	if err != nil {
		return err
	}

	items, dropped := normalize.Normalize(records)
	resolver := timezone.NewResolver(cfg.Timezone)
	tasks := resolver.Apply(items)
	snap := grouping.Build(time.Now().In(resolver.Effective()), tasks)

	if dropped > 0 {
		log.Debug("dropped records during normalization", "count", dropped)
	}

	// Refresh the local cache so `complete` can resolve project ids.
	s, err := store.New(cfg.DBPath())
	if err != nil {
		log.Warn("task cache unavailable", "err", err)
	} else {
		if err := s.SaveTasks(tasks); err != nil {
			log.Warn("task cache save failed", "err", err)
		}
		s.Close()
	}

	printSnapshot(snap)
	return nil
}

func printSnapshot(snap models.Snapshot) {
	if snap.Count() == 0 {
		fmt.Println("No active tasks.")
		return
	}
	for gi := models.Group(0); gi < models.GroupCount; gi++ {
		tasks := snap.Groups[gi]
		if len(tasks) == 0 {
			continue
		}
		fmt.Printf("%s (%d)\n", gi, len(tasks))
		for _, t := range tasks {
			line := fmt.Sprintf("  [%-6s] %s", t.Priority, t.Title)
			if t.HasDue() {
				line += "  due " + t.Due.Format("2006-01-02 15:04")
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}
