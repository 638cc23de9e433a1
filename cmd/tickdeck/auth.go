package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"tickdeck/internal/auth"
	"tickdeck/internal/remote"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored API credential",
}

var authToken string

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API access token",
	Long: `Store an API access token obtained from the TickTick developer
console. The token is verified with one fetch before it is saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token := strings.TrimSpace(authToken)
		if token == "" {
			fmt.Print("Access token: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}
		if token == "" {
			return fmt.Errorf("no token provided")
		}

		mgr, err := auth.NewManager(cfg)
		if err != nil {
			return err
		}
		if err := mgr.Save(&oauth2.Token{AccessToken: token}); err != nil {
			return err
		}

		// Prove the credential works before reporting success.
		client, err := remote.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout())
		defer cancel()
		if _, err := client.FetchActiveTasks(ctx); err != nil {
			mgr.Clear()
			return fmt.Errorf("token rejected by the API: %w", err)
		}

		fmt.Println("Logged in.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a credential is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr, err := auth.NewManager(cfg)
		if err != nil {
			return err
		}
		if !mgr.IsAuthenticated() {
			fmt.Println("Not logged in. Run `tickdeck auth login`.")
			return nil
		}
		if exp := mgr.Expiry(); !exp.IsZero() {
			fmt.Printf("Logged in. Token expires %s.\n", exp.Local().Format(time.RFC1123))
		} else {
			fmt.Println("Logged in.")
		}
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mgr, err := auth.NewManager(cfg)
		if err != nil {
			return err
		}
		if err := mgr.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authToken, "token", "", "Access token (prompted for when omitted)")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}
