package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/templui/sitefixtures/internal/model"
)

func ExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [root]",
		Short: "Write a YAML snapshot of the stored tree to the fixtures source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := model.RootPath
			if len(args) == 1 {
				root = args[0]
			}

			a, err := setup()
			if err != nil {
				return err
			}
			defer func() {
				closeErr := a.Close()
				if closeErr != nil {
					slog.Error("failed to close app", "error", closeErr)
				}
			}()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			location, err := a.ExportService.Export(ctx, root, out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exported", root, "to", location)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "snapshots/tree.yml", "snapshot key relative to FIXTURES_SOURCE")
	return cmd
}
