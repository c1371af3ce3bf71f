package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rsmonitor/internal/api/client"
	"github.com/rsmonitor/internal/models"
	"github.com/rsmonitor/internal/report"
)

func NewHealthCommand() *cobra.Command {
	var (
		details    bool
		markdown   bool
		components []string
	)

	cmd := &cobra.Command{
		Use:     "health",
		Short:   "Show overall system health",
		Aliases: []string{"h"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			summary, err := c.HealthSummary(components, details || markdown)
			if err != nil {
				return fmt.Errorf("failed to get health summary: %v", err)
			}

			if markdown {
				fmt.Print(report.RenderHealthSummary(summary))
				return nil
			}

			fmt.Printf("Overall: %s (score %.1f)\n", summary.Status, summary.Score)
			fmt.Printf("Active alerts: %d\n\n", summary.ActiveAlerts)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "COMPONENT\tSCORE\tSTATUS")
			for _, name := range sortedComponents(summary.Components) {
				health := summary.Components[name]
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, health.Score, health.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if details {
				printIssues(summary.Results)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Include raw check results")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the full report as markdown")
	cmd.Flags().StringSliceVar(&components, "components", nil, "Only check the named components")

	return cmd
}

func sortedComponents(components map[string]models.ComponentHealth) []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printIssues(results map[string]models.MonitorResult) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := results[name]
		if result.Error == "" && len(result.Issues) == 0 {
			continue
		}

		fmt.Printf("\n%s:\n", name)
		if result.Error != "" {
			fmt.Printf("  check failed: %s\n", result.Error)
		}
		for _, issue := range result.Issues {
			fmt.Printf("  %s\n", report.IssueLine(issue))
		}
	}
}
