package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/sitefixtures/cmd/fixtures/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fixtures",
		Short:        "Load website fixtures into the content repository",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.LoadCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TreeCmd())
	rootCmd.AddCommand(cmd.ExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
