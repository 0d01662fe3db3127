package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/templui/sitefixtures/internal/config"
	"github.com/templui/sitefixtures/internal/fixture"
	"github.com/templui/sitefixtures/internal/storage"
)

func LoadCmd() *cobra.Command {
	var (
		file             string
		appendOnly       bool
		watch            bool
		failOnParseError bool
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the fixture file into the content repository",
		Long: `Creates the route, content and menu roots and materializes every page of
the fixture file, replacing previously loaded documents unless --append is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if failOnParseError {
				a.Cfg.FixturesParseError = config.ParseErrorFail
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			loader := a.Loader(file, appendOnly, slog.Default())
			run := func(ctx context.Context) fixture.Result {
				res := loader.Load(ctx)
				fmt.Fprintln(cmd.OutOrStdout(), res.Message())
				return res
			}

			res := run(ctx)
			if !watch {
				return res.Err
			}

			local, ok := a.Storage.(*storage.LocalStorage)
			if !ok {
				return errors.New("--watch needs a local fixtures source")
			}
			if file == "" {
				file = a.Cfg.FixturesFile
			}
			return fixture.Watch(ctx, local.Path(file), fixture.DefaultDebounce, run, slog.Default())
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file relative to FIXTURES_SOURCE (default FIXTURES_FILE)")
	cmd.Flags().BoolVar(&appendOnly, "append", false, "keep existing documents instead of purging them first")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload whenever the fixture file changes")
	cmd.Flags().BoolVar(&failOnParseError, "fail-on-parse-error", false, "fail instead of loading nothing when the file cannot be parsed")

	return cmd
}
