package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchdog/cli/style"
)

var statusCmd = &cobra.Command{
	Use:     "status <id>",
	Short:   "Show a watchdog's state and remaining TTLs",
	Aliases: []string{"s"},
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws, err := client.Status(args[0])
	if err != nil {
		fmt.Println(style.ErrorBox.Render("Status failed: " + err.Error()))
		return err
	}

	state := style.Watching.Render(ws.Status)
	if ws.Status != "watching" {
		state = style.Alert.Render(ws.Status)
	}

	fmt.Printf("%s %s  %s\n", style.StatusDot(ws.Status), style.Bold.Render(ws.ID), state)
	fmt.Printf("  %s %ds\n", style.DimText.Render("timeout:      "), ws.Timeout)
	fmt.Printf("  %s %ds\n", style.DimText.Render("heartbeat ttl:"), ws.HeartbeatTTL)
	fmt.Printf("  %s %ds\n", style.DimText.Render("expires in:   "), ws.ExpireIn)
	fmt.Printf("  %s %s\n", style.DimText.Render("alert url:    "), ws.AlertURL)
	fmt.Printf("  %s %s\n", style.DimText.Render("recover url:  "), ws.RecoverURL)
	return nil
}
