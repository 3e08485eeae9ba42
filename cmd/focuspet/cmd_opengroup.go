package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var openGroupCmd = &cobra.Command{
	Use:   "open-group <name>",
	Short: "Ask the relay to open a named tab group",
	Long:  "Post an open_group command to the relay; the browser extension polls for it and opens the matching tab group",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpenGroup,
}

func init() {
	rootCmd.AddCommand(openGroupCmd)
}

func runOpenGroup(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"action":  "open_group",
		"payload": map[string]any{"name": args[0]},
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post(cfg.RelayURL+"/set_command", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post command: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay refused command: status %d: %s", resp.StatusCode, body)
	}

	fmt.Printf("relay response: %s\n", body)
	return nil
}
