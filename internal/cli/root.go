// Package cli wires the txtgrid commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nconklindev/txtgrid/internal/config"
	"github.com/nconklindev/txtgrid/internal/logging"
	"github.com/nconklindev/txtgrid/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// BuildInfo is stamped into the binary at release time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type configKey struct{}

// NewRootCmd creates the txtgrid command tree.
func NewRootCmd(info BuildInfo) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "txtgrid [file]",
		Short: "Edit delimited text as a grid and export it to Excel",
		Long: `txtgrid opens a delimited text file as an editable grid in the terminal.
Rows and columns can be added, removed and renamed, cells edited, and the
result saved as an .xlsx workbook with a bold header, fitted column widths
and numeric columns detected automatically.

Without a file argument a file picker is shown.`,
		Version: info.Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		RunE:          runGrid,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("txtgrid {{.Version}}\ncommit: %s\nbuilt: %s\n", info.Commit, info.Date))

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./txtgrid.yaml)")
	flags.StringP("delimiter", "d", "", `field delimiter: a literal or one of pipe, comma, semicolon, tab, space (default "|")`)
	flags.StringP("encoding", "e", "", `input file encoding, e.g. utf-8, gbk, gb18030, latin1 (default "utf-8")`)
	flags.String("output-dir", "", `directory for exported workbooks (default ".")`)
	flags.String("sheet", "", `worksheet name in exported workbooks (default "Data")`)
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("log-format", "", "log format (text|json)")
	flags.String("log-file", "", "write logs to this file")

	_ = rootCmd.RegisterFlagCompletionFunc("delimiter", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"pipe", "comma", "semicolon", "tab", "space"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newShowCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	rootCmd := NewRootCmd(info)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return config.Default()
}

// commandLogger logs to the configured file, or to w when none is set.
func commandLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	return logging.Open(cfg.LogFile, w, cfg.LogLevel, cfg.LogFormat)
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg := GetConfig(cmd.Context())

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the grid needs an interactive terminal; use \"txtgrid convert\" or \"txtgrid show\" instead")
	}

	// The grid owns the terminal, so logs only go to a file.
	logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	opts := ui.Options{
		Delimiter: cfg.Delimiter,
		Encoding:  cfg.Encoding,
		OutputDir: cfg.OutputDir,
		Sheet:     cfg.SheetName,
		Logger:    logger,
	}
	if len(args) == 1 {
		opts.File = args[0]
	}

	logger.Info("starting session", "file", opts.File, "delimiter", opts.Delimiter, "config", cfg.File)

	p := tea.NewProgram(ui.InitialModel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
