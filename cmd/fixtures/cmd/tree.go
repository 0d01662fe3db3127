package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/templui/sitefixtures/internal/model"
)

func TreeCmd() *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "tree [root]",
		Short: "Print the stored document tree",
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

			tree, err := a.TreeService.Tree(cmd.Context(), root)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree, 0)

			if !counts {
				return nil
			}
			c, err := a.TreeService.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d documents (%d blocks), %d translations\n", c.Documents, c.Blocks, c.Translations)
			for _, kind := range slices.Sorted(maps.Keys(c.Kinds)) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-26s %d\n", kind, c.Kinds[kind])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&counts, "counts", false, "also print document counts per kind")
	return cmd
}

func printTree(w io.Writer, node *model.TreeNode, depth int) {
	label := node.Name
	if label == "" {
		label = node.Path
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(label)
	b.WriteString(" [" + string(node.Kind) + "]")
	if node.Title != "" {
		b.WriteString(" " + strconv.Quote(node.Title))
	}
	if node.Route != "" {
		b.WriteString(" -> " + node.Route)
	}
	if len(node.Translations) > 0 {
		b.WriteString(" (" + strings.Join(slices.Sorted(maps.Keys(node.Translations)), ", ") + ")")
	}
	fmt.Fprintln(w, b.String())

	for _, child := range node.Children {
		printTree(w, child, depth+1)
	}
}
