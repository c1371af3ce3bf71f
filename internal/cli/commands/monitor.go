package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rsmonitor/internal/api/client"
	"github.com/rsmonitor/internal/report"
)

func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "monitor",
		Short:   "Monitoring control commands",
		Aliases: []string{"m"},
	}

	// Add subcommands
	cmd.AddCommand(newMonitorStartCommand())
	cmd.AddCommand(newMonitorStopCommand())
	cmd.AddCommand(newMonitorStatusCommand())
	cmd.AddCommand(newMonitorCheckCommand())

	return cmd
}

func newMonitorStartCommand() *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the background monitoring loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			seconds, err := c.StartMonitoring(interval)
			if err != nil {
				return fmt.Errorf("failed to start monitoring: %v", err)
			}

			fmt.Printf("Monitoring started with interval %ds\n", seconds)
			return nil
		},
	}

	cmd.Flags().IntVarP(&interval, "interval", "i", 0, "Check interval in seconds (server default when omitted)")

	return cmd
}

func newMonitorStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background monitoring loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			if err := c.StopMonitoring(); err != nil {
				return fmt.Errorf("failed to stop monitoring: %v", err)
			}

			fmt.Println("Monitoring stopped")
			return nil
		},
	}

	return cmd
}

func newMonitorStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the monitoring loop state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			status, err := c.MonitoringStatus()
			if err != nil {
				return fmt.Errorf("failed to get monitoring status: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "Running\t%t\n", status.Running)
			if status.Running {
				fmt.Fprintf(w, "Interval\t%ds\n", status.IntervalSeconds)
			}
			fmt.Fprintf(w, "Components\t%s\n", strings.Join(status.Components, ", "))
			fmt.Fprintf(w, "Total cycles\t%d\n", status.TotalTicks)
			fmt.Fprintf(w, "Failed checks\t%d\n", status.FailedChecks)
			if status.LastTick != nil {
				fmt.Fprintf(w, "Last cycle\t%s (%.0fms)\n",
					status.LastTick.Format(time.RFC3339), status.LastDurationMS)
			}

			return w.Flush()
		},
	}

	return cmd
}

func newMonitorCheckCommand() *cobra.Command {
	var details bool

	cmd := &cobra.Command{
		Use:   "check [component]",
		Short: "Run a single component check now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			result, err := c.CheckMonitor(args[0])
			if err != nil {
				return fmt.Errorf("failed to check component: %v", err)
			}

			fmt.Printf("Component: %s\n", result.Component)
			fmt.Printf("Check time: %.0fms\n", result.ElapsedMS)

			if result.Error != "" {
				fmt.Printf("Check failed: %s\n", result.Error)
			} else if len(result.Issues) == 0 {
				fmt.Println("No issues detected")
			}
			for _, issue := range result.Issues {
				fmt.Println(report.IssueLine(issue))
			}

			if details && result.Details != nil {
				data, err := json.MarshalIndent(result.Details, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to render details: %v", err)
				}
				fmt.Printf("\nDetails:\n%s\n", data)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Print the raw check details")

	return cmd
}
