package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/openstat-dev/snatree/internal/config"
	"github.com/openstat-dev/snatree/internal/convert"
	"github.com/openstat-dev/snatree/internal/render"
	"github.com/openstat-dev/snatree/internal/sheet"
)

// sourceFlags select what part of an input file is read.
type sourceFlags struct {
	sheet string
	comma string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "xlsx sheet name (default: first sheet)")
	cmd.Flags().StringVar(&f.comma, "comma", "", "csv field delimiter (default: ,)")
}

func (f *sourceFlags) openOptions() (sheet.OpenOptions, error) {
	open := sheet.OpenOptions{Sheet: f.sheet}
	if f.comma != "" {
		r, size := utf8.DecodeRuneInString(f.comma)
		if size != len(f.comma) {
			return open, fmt.Errorf("--comma must be a single character, got %q", f.comma)
		}
		open.Comma = r
	}
	return open, nil
}

// parseFile converts path with the configured markers.
func parseFile(cmd *cobra.Command, path string, cfg *config.Config, src *sourceFlags, log *slog.Logger) (*convert.Result, error) {
	open, err := src.openOptions()
	if err != nil {
		return nil, err
	}
	opts := cfg.Markers.ParserOptions()
	opts.Logger = log
	res, err := convert.File(cmd.Context(), path, sheet.DefaultRegistry(), open, opts)
	if err != nil {
		return nil, err
	}
	log.Info("parsed report",
		"file", path,
		"years", res.Document.Years,
		"accounts", res.Stats.Accounts,
		"records", res.Stats.Records,
		"dropped", res.Stats.Dropped,
	)
	return res, nil
}

func newConvertCommand(opts *globalOptions) *cobra.Command {
	var format, out, selectExpr string
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a report to JSON, YAML, CSV or Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(".")
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Output.Format
			}
			writer, err := render.DefaultRegistry(cfg.Output.Indent).Get(format)
			if err != nil {
				return err
			}

			log := opts.logger(cmd.ErrOrStderr())
			res, err := parseFile(cmd, args[0], cfg, &src, log)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				defer f.Close()
				w = f
			}

			if selectExpr != "" {
				return render.WriteSelection(w, res.Document, selectExpr, cfg.Output.Indent)
			}
			return writer.Write(w, res.Document)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv, json, markdown, yaml (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&selectExpr, "select", "", "JSONPath expression applied to the JSON document, e.g. '$[0].resources'")
	src.register(cmd)

	return cmd
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	var style string
	var width int
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a report in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(".")
			if err != nil {
				return err
			}
			res, err := parseFile(cmd, args[0], cfg, &src, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if style == "" {
				style = cfg.Output.MarkdownStyle
			}
			out, err := render.Terminal(render.DocumentMarkdown(res.Document), style, width)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "glamour style: auto, dark, light, notty, ascii (default from config)")
	cmd.Flags().IntVar(&width, "width", 120, "word wrap width")
	src.register(cmd)

	return cmd
}
