package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"watchdog/cli/api"
	"watchdog/cli/style"
)

var (
	regTimeout    int
	regExpire     int
	regAlertURL   string
	regRecoverURL string
)

var registerCmd = &cobra.Command{
	Use:     "register [id]",
	Short:   "Register (or overwrite) a watchdog",
	Aliases: []string{"add", "create"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRegister,
}

func init() {
	registerCmd.Flags().IntVar(&regTimeout, "timeout", 600, "seconds allowed between pings")
	registerCmd.Flags().IntVar(&regExpire, "expire", 0, "watchdog lifetime in seconds (0 = system max)")
	registerCmd.Flags().StringVar(&regAlertURL, "alert-url", "", "URL called once when a ping window is missed")
	registerCmd.Flags().StringVar(&regRecoverURL, "recover-url", "", "URL called once when pings resume after an alert")
	registerCmd.MarkFlagRequired("alert-url")
	registerCmd.MarkFlagRequired("recover-url")
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) == 1 {
		id = args[0]
	}

	created, err := client.Register(id, api.WatchdogSpec{
		Timeout:    regTimeout,
		Expire:     regExpire,
		AlertURL:   regAlertURL,
		RecoverURL: regRecoverURL,
	})
	if err != nil {
		fmt.Println(style.ErrorBox.Render("Register failed: " + err.Error()))
		return err
	}

	fmt.Println(style.Banner.Render("⏱ WATCHDOG REGISTERED"))
	fmt.Printf("  %s %s\n", style.DimText.Render("id:     "), style.Bold.Render(created.ID))
	fmt.Printf("  %s %ds\n", style.DimText.Render("timeout:"), created.Timeout)
	fmt.Printf("  %s %ds\n", style.DimText.Render("expire: "), created.Expire)
	fmt.Println()
	fmt.Println(style.DimText.Render("  ping it with: watchdog ping " + created.ID))
	return nil
}
