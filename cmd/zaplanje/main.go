package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zaplanje",
	Short: "Backend for the Заплањске приче blog",
	Long: `zaplanje serves author sessions, share links and link-preview pages for
the Заплањске приче storytelling blog. Accounts and profiles live with the
hosted auth provider; this process only keeps the provider session per browser.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.AddCommand(newServeCmd(), newMetaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
