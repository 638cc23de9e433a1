package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tickdeck/internal/logging"
	"tickdeck/internal/persist"
	"tickdeck/internal/remote"
	"tickdeck/internal/store"
	"tickdeck/internal/timezone"
	"tickdeck/internal/tui"
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Run the interactive task widget",
	RunE:  runWidget,
}

func runWidget(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.For("widget")

	client, err := remote.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("set up API client: %w", err)
	}

	s, err := store.New(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("open task cache: %w", err)
	}
	defer s.Close()

	// Paint from the local cache before the first fetch lands.
	initial, err := s.LoadTasks()
	if err != nil {
		log.Warn("task cache unreadable, starting empty", "err", err)
		initial = nil
	}

	// The config theme seeds the very first run; after that the
	// persisted state owns the choice.
	state := persist.Load(cfg.StatePath())
	if _, err := os.Stat(cfg.StatePath()); err != nil && cfg.Theme != "" {
		state.ThemeID = cfg.Theme
	}

	writer := persist.NewWriter(cfg.StatePath())
	defer func() {
		// Final flush: pending position state must reach disk
		// before exit.
		if err := writer.Close(); err != nil {
			log.Error("final state flush failed", "err", err)
		}
	}()

	app := tui.New(tui.Options{
		Config:       cfg,
		Service:      client,
		Cache:        s,
		Writer:       writer,
		State:        state,
		Resolver:     timezone.NewResolver(cfg.Timezone),
		InitialTasks: initial,
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("widget error: %w", err)
	}
	return nil
}
