package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rsmonitor/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "rsmonctl",
	Short: "RS Systems health monitor CLI",
	Long: `rsmonctl talks to a running rsmonitor server.
It reads RSMONITOR_API_URL and RSMONITOR_API_TOKEN from the environment;
run "rsmonctl login" to obtain a token.`,
}

func init() {
	// Add commands
	rootCmd.AddCommand(commands.NewHealthCommand())
	rootCmd.AddCommand(commands.NewAlertCommand())
	rootCmd.AddCommand(commands.NewMonitorCommand())
	rootCmd.AddCommand(commands.NewLoginCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
