package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rsmonitor/internal/api/client"
)

func NewLoginCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and print an API token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := "admin"
			if len(args) == 1 {
				username = args[0]
			}

			if password == "" {
				fmt.Print("Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read password: %v", err)
				}
				password = strings.TrimSpace(line)
			}

			token, err := client.Login(username, password)
			if err != nil {
				return fmt.Errorf("login failed: %v", err)
			}

			fmt.Println("Login successful. Export the token for the other commands:")
			fmt.Printf("\nexport RSMONITOR_API_TOKEN=%s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Operator password (prompted when omitted)")

	return cmd
}
