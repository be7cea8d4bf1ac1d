package cmd

import (
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
	"github.com/spf13/cobra"
)

// sessionsCmd groups search session management
var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session", "s"},
	Short:   "Manage saved searches",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		all := shopApp.Sessions.List()
		if len(all) == 0 {
			fmt.Fprintln(w, "No saved searches.")
			return nil
		}
		current := shopApp.Sessions.CurrentID()
		for _, s := range all {
			fmt.Fprintln(w, sessionLine(s, s.ID == current))
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a search's conversation and products",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var s *session.Session
		if len(args) == 0 {
			s = shopApp.Current()
		} else {
			s, _ = shopApp.Sessions.Get(args[0])
		}
		if s == nil {
			if len(args) == 0 {
				return session.ErrNoSession
			}
			return fmt.Errorf("%w: %s", session.ErrNotFound, args[0])
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, sessionLine(s, s.ID == shopApp.Sessions.CurrentID()))
		printTranscript(w, s)
		if s.Products != nil {
			fmt.Fprintln(w)
			printProducts(w, s.Products, shopApp)
		}
		return nil
	},
}

var sessionsSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make a search current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.SwitchSession{ID: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to %q\n", out.Session.Title)
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.DeleteSession{ID: args[0]})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Deleted %s\n", args[0])
		if out.SessionChanged && out.Session != nil {
			fmt.Fprintf(w, "Current search is now %q\n", out.Session.Title)
		}
		return nil
	},
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a search",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.RenameSession{ID: args[0], Title: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %q\n", out.Session.Title)
		return nil
	},
}

var sessionsFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy find searches by title or message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		matches := shopApp.Sessions.Find(strings.Join(args, " "))
		if len(matches) == 0 {
			fmt.Fprintln(w, "No matching searches.")
			return nil
		}
		current := shopApp.Sessions.CurrentID()
		for _, m := range matches {
			fmt.Fprintln(w, sessionLine(m.Session, m.Session.ID == current))
		}
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsSwitchCmd, sessionsDeleteCmd, sessionsRenameCmd, sessionsFindCmd)
}
