package main

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/spf13/cobra"
)

var backlogCmd = &cobra.Command{
	Use:     "backlog",
	Short:   "Manage the items of a backlog widget",
	GroupID: "backlog",
}

var backlogListCmd = &cobra.Command{
	Use:   "list <widget-id>",
	Short: "List items, active first and newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		b, err := d.Backlog(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		items := b.Items()
		if jsonOutput {
			if items == nil {
				items = []model.BacklogItem{}
			}
			return printJSON(cmd.OutOrStdout(), items)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tasks yet")
			return nil
		}
		printBacklogTable(cmd.OutOrStdout(), items)
		return nil
	},
}

var backlogAddCmd = &cobra.Command{
	Use:     "add <widget-id> <text>...",
	Short:   "Add an item to the top of a backlog",
	Example: `  dashka backlog add backlog-1718000000000-x1y2z3w4 --priority high fix the login page`,
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _ := cmd.Flags().GetString("priority")
		priority := model.Priority(p)
		if !priority.IsValid() {
			return fmt.Errorf("invalid priority %q (want low, medium or high)", p)
		}
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		it, err := d.AddBacklogItem(cmd.Context(), args[0], strings.Join(args[1:], " "), priority)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), it)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", it.ID)
		return nil
	},
}

var backlogToggleCmd = &cobra.Command{
	Use:   "toggle <widget-id> <item-id>",
	Short: "Mark an item done, or active again",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		it, err := d.ToggleBacklogItem(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), it)
		}
		state := "active"
		if it.Completed {
			state = "completed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", it.ID, state)
		return nil
	},
}

var backlogRmCmd = &cobra.Command{
	Use:   "rm <widget-id> <item-id>...",
	Short: "Delete items from a backlog",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range args[1:] {
			if err := d.DeleteBacklogItem(cmd.Context(), args[0], id); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	},
}

var backlogStatsCmd = &cobra.Command{
	Use:   "stats <widget-id>",
	Short: "Count total, active and completed items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		b, err := d.Backlog(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), b.Stats())
		}
		printStats(cmd.OutOrStdout(), b.Stats())
		return nil
	},
}

func init() {
	backlogAddCmd.Flags().String("priority", string(model.PriorityMedium), "priority (low, medium, high)")

	backlogCmd.AddCommand(backlogListCmd)
	backlogCmd.AddCommand(backlogAddCmd)
	backlogCmd.AddCommand(backlogToggleCmd)
	backlogCmd.AddCommand(backlogRmCmd)
	backlogCmd.AddCommand(backlogStatsCmd)
}
