package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted deliberation sessions",
	Long:  `List, inspect, and archive sessions stored under the war-table directory.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions, active and archived",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := wireApp(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		sessions, err := app.store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return
		}

		for _, s := range sessions {
			marker := " "
			if s.Archived {
				marker = "A"
			}
			fmt.Printf("%s %-36s %-12s %-14s %s\n", marker, s.ID, s.Mode, s.Status, s.Problem)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the full persisted state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := wireApp(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		session, err := app.store.Load(cmd.Context(), args[0])
		if err != nil {
			fmt.Printf("Error loading session '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}

var sessionArchiveCmd = &cobra.Command{
	Use:   "archive <session-id>...",
	Short: "Move completed sessions into the campaign archive",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := wireApp(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		project, _ := cmd.Flags().GetString("project")

		hasError := false
		for _, sessionID := range args {
			dest, err := app.files.Archive(cmd.Context(), sessionID, project)
			if err != nil {
				fmt.Printf("Error archiving '%s': %v\n", sessionID, err)
				hasError = true
				continue
			}
			fmt.Printf("Archived '%s' to %s\n", sessionID, dest)
		}
		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionArchiveCmd)

	sessionArchiveCmd.Flags().String("project", "", "Archive project name (defaults to 'default')")
}
