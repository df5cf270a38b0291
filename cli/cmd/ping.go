package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchdog/cli/style"
)

var pingCmd = &cobra.Command{
	Use:   "ping <id>",
	Short: "Send a heartbeat for a watchdog",
	Args:  cobra.ExactArgs(1),
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	res, err := client.Ping(args[0])
	if err != nil {
		fmt.Println(style.ErrorBox.Render("Ping failed: " + err.Error()))
		return err
	}

	if res.Status == "recovered" {
		fmt.Printf("%s %s %s\n", style.DotWatching, style.Bold.Render(res.ID),
			style.Warning.Render("recovered (was in alert)"))
		return nil
	}
	fmt.Printf("%s %s ok\n", style.DotWatching, style.Bold.Render(res.ID))
	return nil
}
