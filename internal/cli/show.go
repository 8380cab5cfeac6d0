package cli

import (
	"fmt"
	"io"

	"github.com/nconklindev/txtgrid/internal/converter"
	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newShowCommand() *cobra.Command {
	var withTypes bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a delimited text file as a table",
		Long: `Show parses a file exactly as the grid would and prints it, which is a quick
way to check a delimiter or encoding before editing. With --types a footer
shows the cell type each column would be exported with.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd.Context())

			logger, closer, err := commandLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			data, err := converter.ReadFile(args[0], cfg.Delimiter, cfg.Encoding)
			if err != nil {
				return err
			}
			logger.Debug("parsed file", "file", args[0], "rows", len(data.Rows), "columns", len(data.Headers))

			renderData(cmd.OutOrStdout(), data, withTypes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTypes, "types", false, "show the export type of each column")

	return cmd
}

func renderData(w io.Writer, data *types.FileData, withTypes bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)

	t.AppendHeader(toRow(data.Headers))
	for _, row := range data.Rows {
		t.AppendRow(toRow(row))
	}

	if withTypes {
		kinds := converter.InferColumnKinds(data.Headers, data.Rows)
		footer := make(table.Row, len(kinds))
		for i, k := range kinds {
			footer[i] = k.String()
		}
		t.AppendFooter(footer)
	}

	t.SetCaption("%d rows, %d columns", len(data.Rows), len(data.Headers))
	t.Render()
}

func toRow(values []string) table.Row {
	row := make(table.Row, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
