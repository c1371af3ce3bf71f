package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsmonitor/internal/api/client"
	"github.com/rsmonitor/internal/models"
)

func NewAlertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alert",
		Short:   "Alert management commands",
		Aliases: []string{"alerts", "a"},
	}

	// Add subcommands
	cmd.AddCommand(newAlertListCommand())
	cmd.AddCommand(newAlertResolveCommand())
	cmd.AddCommand(newAlertHistoryCommand())
	cmd.AddCommand(newAlertSummaryCommand())

	return cmd
}

func newAlertListCommand() *cobra.Command {
	var (
		severity  string
		component string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List active alerts",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			alerts, err := c.ListAlerts(severity, component)
			if err != nil {
				return fmt.Errorf("failed to list alerts: %v", err)
			}

			if len(alerts) == 0 {
				fmt.Println("No active alerts")
				return nil
			}

			return printAlertTable(alerts, false)
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "", "Filter by severity (info/warning/critical)")
	cmd.Flags().StringVar(&component, "component", "", "Filter by component (database/api/queue/storage/activity)")

	return cmd
}

func newAlertResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [alert_id]",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			if err := c.ResolveAlert(args[0]); err != nil {
				return fmt.Errorf("failed to resolve alert: %v", err)
			}

			fmt.Printf("Alert %s resolved\n", args[0])
			return nil
		},
	}

	return cmd
}

func newAlertHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent alerts, resolved ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			alerts, err := c.AlertHistory(limit)
			if err != nil {
				return fmt.Errorf("failed to get alert history: %v", err)
			}

			if len(alerts) == 0 {
				fmt.Println("No alerts recorded")
				return nil
			}

			return printAlertTable(alerts, true)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Limit the number of records")

	return cmd
}

func newAlertSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show alert counts by severity and component",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			summary, err := c.AlertSummary()
			if err != nil {
				return fmt.Errorf("failed to get alert summary: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "Active alerts\t%d\n", summary.ActiveCount)
			fmt.Fprintf(w, "Alerts last 24h\t%d\n", summary.AlertsLast24h)
			for _, severity := range []models.Severity{models.SeverityCritical, models.SeverityWarning, models.SeverityInfo} {
				fmt.Fprintf(w, "  %s\t%d\n", severity, summary.SeverityBreakdown[severity])
			}

			components := make([]string, 0, len(summary.ComponentBreakdown))
			for name := range summary.ComponentBreakdown {
				components = append(components, name)
			}
			sort.Strings(components)
			for _, name := range components {
				fmt.Fprintf(w, "  %s\t%d\n", name, summary.ComponentBreakdown[name])
			}

			if summary.MostRecent != nil {
				fmt.Fprintf(w, "Most recent\t[%s] %s: %s\n",
					summary.MostRecent.Severity,
					summary.MostRecent.Component,
					summary.MostRecent.Title,
				)
			}

			return w.Flush()
		},
	}

	return cmd
}

func printAlertTable(alerts []models.Alert, withResolved bool) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	if withResolved {
		fmt.Fprintln(w, "ID\tSEVERITY\tCOMPONENT\tTITLE\tCREATED\tRESOLVED")
	} else {
		fmt.Fprintln(w, "ID\tSEVERITY\tCOMPONENT\tTITLE\tCREATED")
	}

	for _, alert := range alerts {
		if withResolved {
			resolved := "-"
			if alert.IsResolved && alert.ResolvedAt != nil {
				resolved = alert.ResolvedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				alert.ID,
				alert.Severity,
				alert.Component,
				alert.Title,
				alert.CreatedAt.Format(time.RFC3339),
				resolved,
			)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				alert.ID,
				alert.Severity,
				alert.Component,
				alert.Title,
				alert.CreatedAt.Format(time.RFC3339),
			)
		}
	}

	return w.Flush()
}
