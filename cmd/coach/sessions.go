package main

import (
	"fmt"
	"io"

	"chart-coach-be/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSessionsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List chat sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer core.Close()

			sessions, err := core.Registry.ListSessions(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(out, "%s  %s  %s\n", s.Id, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Title)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}

			core, err := openCore(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.SessionService.DeleteSession(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	})
	return cmd
}

func newScenariosCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List example chart scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openCore(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer core.Close()

			writeScenarios(cmd.OutOrStdout(), core.ConversationService)
			return nil
		},
	}
}

func writeScenarios(out io.Writer, conversations service.IConversationService) {
	for _, s := range conversations.Scenarios() {
		fmt.Fprintf(out, "  %-20s %s\n", s.ID, s.Title)
		if s.Description != "" {
			dimColor.Fprintf(out, "  %-20s %s\n", "", s.Description)
		}
	}
}
