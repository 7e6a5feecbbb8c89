package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledgerimport-cli",
		Short: "ledgerimport CLI tool",
		Long:  `A command line interface for interacting with the ledgerimport API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledgerimport API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import operations",
	}
	importCmd.AddCommand(importCreateCmd(), importRunCmd(), importStatusCmd())

	rootCmd.AddCommand(importCmd, suggestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func importCreateCmd() *cobra.Command {
	var familyID, accountID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a pending import run",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{"family_id": familyID}
			if accountID != "" {
				payload["account_id"] = accountID
			}

			return postJSON("/api/v1/imports", payload)
		},
	}

	cmd.Flags().StringVar(&familyID, "family", "", "Family ID (required)")
	cmd.Flags().StringVar(&accountID, "account", "", "Fixed account ID (optional)")
	cmd.MarkFlagRequired("family")

	return cmd
}

func importRunCmd() *cobra.Command {
	var file, dateFormat string

	cmd := &cobra.Command{
		Use:   "run <import-id>",
		Short: "Run an import against a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read csv file: %w", err)
			}

			payload := map[string]string{"csv": string(data)}
			if dateFormat != "" {
				payload["date_format"] = dateFormat
			}

			return postJSON("/api/v1/imports/"+args[0]+"/run", payload)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the CSV file (required)")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "Go reference date layout of the date column")
	cmd.MarkFlagRequired("file")

	return cmd
}

func importStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <import-id>",
		Short: "Show an import run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}

			resp, err := client.Get(baseURL + "/api/v1/imports/" + args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			return printResponse(resp)
		},
	}
}

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <transaction-id>",
		Short: "Compute a category suggestion for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/transactions/"+args[0]+"/suggestion", nil)
		},
	}
}

func postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		fmt.Println("no suggestion")
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, body)
	}

	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(pretty)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(out))
}
