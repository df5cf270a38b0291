package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchdog/cli/style"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Short:   "Remove a watchdog entirely",
	Aliases: []string{"delete", "remove"},
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	if err := client.Remove(args[0]); err != nil {
		fmt.Println(style.ErrorBox.Render("Remove failed: " + err.Error()))
		return err
	}
	fmt.Printf("%s %s deleted\n", style.DimText.Render("✓"), style.Bold.Render(args[0]))
	return nil
}
