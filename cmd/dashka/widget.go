package main

import (
	"fmt"

	"github.com/alfredjeanlab/dashka/internal/model"
	"github.com/alfredjeanlab/dashka/internal/widget"
	"github.com/spf13/cobra"
)

var widgetCmd = &cobra.Command{
	Use:     "widget",
	Short:   "Add, list and remove widgets",
	GroupID: "widgets",
}

var widgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in panels and registered widgets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		widgets := d.Widgets()
		if jsonOutput {
			if widgets == nil {
				widgets = []model.WidgetConfig{}
			}
			return printJSON(cmd.OutOrStdout(), widgets)
		}
		printWidgetTable(cmd.OutOrStdout(), widgets)
		return nil
	},
}

var widgetTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the analytics widget types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), model.AnalyticsTypes())
		}
		printAnalyticsTypes(cmd.OutOrStdout(), model.AnalyticsTypes())
		return nil
	},
}

var widgetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a widget to the dashboard",
}

var widgetAddAnalyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Add an analytics embed",
	Example: `  dashka widget add analytics --type stats --site-id my-site
  dashka widget add analytics --type docs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		siteID, _ := cmd.Flags().GetString("site-id")
		return addWidget(cmd, model.KindAnalytics, model.AnalyticsType(typ), widget.Params{SiteID: siteID})
	},
}

var widgetAddBacklogCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Add a backlog widget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return addWidget(cmd, model.KindBacklog, "", widget.Params{})
	},
}

func addWidget(cmd *cobra.Command, kind model.WidgetKind, typ model.AnalyticsType, params widget.Params) error {
	d, err := openDashboard(cmd.Context())
	if err != nil {
		return err
	}
	w, err := d.AddWidget(cmd.Context(), kind, typ, params)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), w)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", w.ID, w.Title)
	return nil
}

var widgetRemoveCmd = &cobra.Command{
	Use:   "remove <widget-id>...",
	Short: "Remove widgets and their placements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range args {
			removed, err := d.RemoveWidget(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("removing %s: %w", id, err)
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "No widget %s\n", id)
			}
		}
		return nil
	},
}

var widgetURLCmd = &cobra.Command{
	Use:   "url <widget-id>",
	Short: "Print the embed URL of an analytics widget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}
		u, err := d.WidgetURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{"id": args[0], "url": u})
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	widgetAddAnalyticsCmd.Flags().String("type", "", "analytics type (stats, chart, pages, realtime, docs)")
	widgetAddAnalyticsCmd.Flags().String("site-id", "", "analytics site id (required except for docs)")
	_ = widgetAddAnalyticsCmd.MarkFlagRequired("type")

	widgetAddCmd.AddCommand(widgetAddAnalyticsCmd)
	widgetAddCmd.AddCommand(widgetAddBacklogCmd)

	widgetCmd.AddCommand(widgetListCmd)
	widgetCmd.AddCommand(widgetTypesCmd)
	widgetCmd.AddCommand(widgetAddCmd)
	widgetCmd.AddCommand(widgetRemoveCmd)
	widgetCmd.AddCommand(widgetURLCmd)
}
