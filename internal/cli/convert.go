package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nconklindev/txtgrid/internal/converter"
	"github.com/nconklindev/txtgrid/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// convertOutput is the --json form of a conversion result.
type convertOutput struct {
	Success    bool              `json:"success"`
	InputFile  string            `json:"input_file"`
	OutputFile string            `json:"output_file,omitempty"`
	Sheet      string            `json:"sheet,omitempty"`
	RowCount   int               `json:"row_count"`
	Columns    []convertedColumn `json:"columns,omitempty"`
	Error      string            `json:"error,omitempty"`
	Duration   string            `json:"duration"`
}

type convertedColumn struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Width float64 `json:"width"`
}

func newConvertCommand() *cobra.Command {
	var (
		outputPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert delimited text files to .xlsx without opening the grid",
		Long: `Convert writes each input file as a single-sheet workbook. A single input
goes to --output, or to <output-dir>/output_<timestamp>.xlsx. Several inputs
are converted in parallel, each to <output-dir>/<input name>.xlsx.`,
		Example: `  txtgrid convert report.txt
  txtgrid convert -d comma data.csv -o data.xlsx
  txtgrid convert -e gbk --sheet 数据 orders.txt --json
  txtgrid convert --output-dir out/ *.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			cfg := GetConfig(cmd.Context())

			if outputPath != "" && len(args) > 1 {
				return errors.New("--output can only be used with a single input file")
			}

			logger, closer, err := commandLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer closer.Close()

			jobs := make([]convertJob, len(args))
			for i, input := range args {
				jobs[i] = convertJob{input: input, output: outputFor(input, outputPath, cfg.OutputDir, len(args), start)}
			}
			if err := checkDistinctOutputs(jobs); err != nil {
				return err
			}

			var eg errgroup.Group
			eg.SetLimit(runtime.NumCPU())
			for i := range jobs {
				job := &jobs[i]
				eg.Go(func() error {
					logger.Debug("reading input", "file", job.input, "delimiter", converter.DelimiterLabel(cfg.Delimiter), "encoding", cfg.Encoding)
					job.result, job.err = convertFile(job.input, job.output, cfg.Delimiter, cfg.Encoding, cfg.SheetName)
					if job.err != nil {
						logger.Error("conversion failed", "file", job.input, "error", job.err)
						return nil
					}
					logger.Info("exported workbook", "file", job.result.OutputFile, "rows", job.result.RowsProcessed, "columns", len(job.result.Columns))
					return nil
				})
			}
			_ = eg.Wait()
			elapsed := time.Since(start)

			var failed []error
			for _, job := range jobs {
				if job.err != nil {
					failed = append(failed, job.err)
				}
				if asJSON {
					if err := emitJSON(cmd.OutOrStdout(), buildOutput(job, elapsed)); err != nil {
						return err
					}
				} else if job.err == nil {
					printResult(cmd.OutOrStdout(), job.input, job.result)
				}
			}
			return errors.Join(failed...)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output .xlsx path for a single input (default: <output-dir>/output_<timestamp>.xlsx)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each result as JSON")

	return cmd
}

type convertJob struct {
	input  string
	output string
	result *types.ExportResult
	err    error
}

// outputFor picks the destination for input. Batch conversions name each
// workbook after its input since timestamped names would collide.
func outputFor(input, explicit, dir string, batch int, now time.Time) string {
	switch {
	case explicit != "":
		return explicit
	case batch > 1:
		base := filepath.Base(input)
		return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".xlsx")
	}
	return filepath.Join(dir, converter.DefaultOutputName(now))
}

// checkDistinctOutputs rejects batches in which two inputs would be written
// to the same workbook.
func checkDistinctOutputs(jobs []convertJob) error {
	seen := make(map[string]string, len(jobs))
	for _, job := range jobs {
		key := filepath.Clean(job.output)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s would both be written to %s; convert them separately with -o", prev, job.input, job.output)
		}
		seen[key] = job.input
	}
	return nil
}

func convertFile(input, output, delim, encoding, sheet string) (*types.ExportResult, error) {
	data, err := converter.ReadFile(input, delim, encoding)
	if err != nil {
		return nil, err
	}
	return converter.Export(data, output, converter.ExportOptions{Sheet: sheet})
}

func buildOutput(job convertJob, elapsed time.Duration) convertOutput {
	if job.err != nil {
		return convertOutput{
			InputFile: job.input,
			Error:     job.err.Error(),
			Duration:  elapsed.String(),
		}
	}

	result := job.result
	out := convertOutput{
		Success:    true,
		InputFile:  job.input,
		OutputFile: result.OutputFile,
		Sheet:      result.Sheet,
		RowCount:   result.RowsProcessed,
		Duration:   elapsed.String(),
	}
	for i, name := range result.Columns {
		out.Columns = append(out.Columns, convertedColumn{
			Name:  name,
			Type:  result.Kinds[i].String(),
			Width: result.Widths[i],
		})
	}
	return out
}

func emitJSON(w io.Writer, out convertOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printResult(w io.Writer, input string, result *types.ExportResult) {
	var numeric []string
	for i, kind := range result.Kinds {
		if kind != types.KindText {
			numeric = append(numeric, fmt.Sprintf("%s (%s)", result.Columns[i], kind))
		}
	}

	fmt.Fprintf(w, "Input:  %s\n", input)
	fmt.Fprintf(w, "Output: %s\n", result.OutputFile)
	fmt.Fprintf(w, "Rows written: %d\n", result.RowsProcessed)
	if len(numeric) > 0 {
		fmt.Fprintf(w, "Numeric columns: %s\n", strings.Join(numeric, ", "))
	}
}
