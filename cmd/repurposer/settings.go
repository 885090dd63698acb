package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var usageSetLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show this month's usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		if cmd.Flags().Changed("set-limit") {
			if err := svc.SetMonthlyLimit(usageSetLimit); err != nil {
				return err
			}
		}
		u, err := svc.GetUsage(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(usageLine(u))
		return nil
	},
}

var apiKeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage the stored Anthropic API key",
}

var apiKeyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored API key, masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		key, err := svc.GetAPIKey()
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("No API key stored.")
			return nil
		}
		fmt.Println(key)
		return nil
	},
}

var apiKeySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an API key (reads stdin when no key is given; empty clears it)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Print("API key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading key: %w", err)
			}
			key = strings.TrimSpace(line)
		}

		svc, done, err := openBackend()
		if err != nil {
			return err
		}
		defer done()

		if err := svc.SetAPIKey(key); err != nil {
			return err
		}
		if strings.TrimSpace(key) == "" {
			fmt.Println("API key cleared.")
		} else {
			fmt.Println("API key saved.")
		}
		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageSetLimit, "set-limit", 0, "Change the monthly limit")

	apiKeyCmd.AddCommand(apiKeyGetCmd)
	apiKeyCmd.AddCommand(apiKeySetCmd)
}
