package cmd

import (
	"fmt"
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/filter"
	"github.com/spf13/cobra"
)

// filterCmd narrows the current results
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Narrow the current search results",
}

func parseTag(arg string) (filter.Tag, error) {
	tag := filter.Tag(strings.ToLower(strings.TrimSpace(arg)))
	if !filter.Known(tag) {
		return "", fmt.Errorf("unknown filter %q (see 'shopforge filter tags')", arg)
	}
	return tag, nil
}

func printFiltered(cmd *cobra.Command, out app.Outcome) {
	w := cmd.OutOrStdout()
	snap := shopApp.Snapshot()
	if len(snap.ActiveFilters) > 0 {
		tags := make([]string, 0, len(snap.ActiveFilters))
		for _, t := range snap.ActiveFilters {
			tags = append(tags, string(t))
		}
		fmt.Fprintf(w, "Filters: %s\n", strings.Join(tags, ", "))
	}
	if out.NoMatches {
		fmt.Fprintln(w, "No products match these filters.")
		return
	}
	printProducts(w, out.Products, shopApp)
}

var filterAddCmd = &cobra.Command{
	Use:   "add <tag>",
	Short: "Apply a filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := parseTag(args[0])
		if err != nil {
			return err
		}
		out, err := shopApp.Dispatch(cmd.Context(), app.AddFilter{Tag: tag})
		if err != nil {
			return err
		}
		printFiltered(cmd, out)
		return nil
	},
}

var filterRemoveCmd = &cobra.Command{
	Use:   "remove <tag>",
	Short: "Remove a filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, err := parseTag(args[0])
		if err != nil {
			return err
		}
		out, err := shopApp.Dispatch(cmd.Context(), app.RemoveFilter{Tag: tag})
		if err != nil {
			return err
		}
		printFiltered(cmd, out)
		return nil
	},
}

var filterClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every filter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.ClearFilters{})
		if err != nil {
			return err
		}
		printFiltered(cmd, out)
		return nil
	},
}

var filterTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the available filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, info := range filter.Tags() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", info.Tag, info.Description)
		}
		return nil
	},
}

func init() {
	filterCmd.AddCommand(filterAddCmd, filterRemoveCmd, filterClearCmd, filterTagsCmd)
}
