package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickdeck/internal/remote"
	"tickdeck/internal/store"
)

var completeCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a task complete",
	Long: `Marks one task complete. The project id the API needs is resolved
from the local task cache; run "tickdeck tasks" first if the cache is
stale.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open task cache: %w", err)
	}
	defer s.Close()

	projectID, err := s.ProjectIDForTask(taskID)
	if err != nil {
		return err
	}

	client, err := remote.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("set up API client: %w", err)
	}

	if err := client.CompleteTask(cmd.Context(), projectID, taskID); err != nil {
		return err
	}
	fmt.Printf("Completed task %s\n", taskID)
	return nil
}
