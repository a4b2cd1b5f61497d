package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openstat-dev/snatree/internal/config"
	"github.com/openstat-dev/snatree/internal/gitops"
	"github.com/openstat-dev/snatree/internal/importer"
	"github.com/openstat-dev/snatree/internal/render"
	"github.com/openstat-dev/snatree/internal/runlog"
	"github.com/openstat-dev/snatree/internal/sheet"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var dryRun bool
	var repoDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Convert every pending report in the workspace import dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			cfg, err := opts.loadConfig(absDir)
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr())
			return runImport(cmd, absDir, cfg, dryRun, log)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse without writing outputs")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")

	return cmd
}

func runImport(cmd *cobra.Command, root string, cfg *config.Config, dryRun bool, log *slog.Logger) error {
	ws := importer.Workspace{Root: root, Dirs: cfg.Workspace}
	formats := sheet.DefaultRegistry()

	writer, err := render.DefaultRegistry(cfg.Output.Indent).Get(cfg.Output.Format)
	if err != nil {
		return err
	}

	files, err := ws.Scan(formats)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
		return nil
	}

	runID := uuid.NewString()
	var entries []runlog.Entry
	failed := 0
	for _, f := range files {
		entry, err := importFile(cmd, ws, f, cfg, writer, dryRun, log)
		if err != nil {
			log.Warn("import failed", "file", f.Name, "error", err)
			failed++
			continue
		}
		entry.RunID = runID
		entries = append(entries, entry)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts, %d records -> %s\n", f.Name, entry.Accounts, entry.Records, entry.Output)
	}

	if dryRun || len(entries) == 0 {
		return importResult(failed)
	}

	if cfg.Git.AutoCommit && gitops.IsRepo(root) {
		changed, err := gitops.HasChanges(root)
		if err != nil {
			return err
		}
		if changed {
			author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
			hash, err := gitops.CommitAll(root, fmt.Sprintf("import: %d reports", len(entries)), author)
			if err != nil {
				return fmt.Errorf("committing outputs: %w", err)
			}
			for i := range entries {
				entries[i].CommitHash = hash
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", hash)
		}
	}

	if err := runlog.Append(ws.LogDir(), entries); err != nil {
		log.Warn("failed to write conversion log", "error", err)
	}

	return importResult(failed)
}

func importFile(cmd *cobra.Command, ws importer.Workspace, f importer.FileInfo, cfg *config.Config, writer render.Writer, dryRun bool, log *slog.Logger) (runlog.Entry, error) {
	res, err := parseFile(cmd, f.Path, cfg, &sourceFlags{}, log)
	if err != nil {
		return runlog.Entry{}, err
	}

	outPath := ws.OutputPath(f, writer.Extension())
	rel, err := filepath.Rel(ws.Root, outPath)
	if err != nil {
		rel = outPath
	}
	entry := runlog.Entry{
		Timestamp: time.Now().UTC(),
		Source:    f.Name,
		Format:    writer.Name(),
		Accounts:  len(res.Document.Accounts),
		Records:   res.Document.RecordCount(),
		Output:    filepath.ToSlash(rel),
	}
	if dryRun {
		return entry, nil
	}

	if err := os.MkdirAll(ws.OutputDir(), 0o755); err != nil {
		return runlog.Entry{}, fmt.Errorf("creating output dir: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return runlog.Entry{}, fmt.Errorf("creating output: %w", err)
	}
	if err := writer.Write(out, res.Document); err != nil {
		out.Close()
		return runlog.Entry{}, err
	}
	if err := out.Close(); err != nil {
		return runlog.Entry{}, fmt.Errorf("closing output: %w", err)
	}

	if err := ws.MarkProcessed(f.Name); err != nil {
		return runlog.Entry{}, err
	}
	return entry, nil
}

func importResult(failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d reports failed to import", failed)
	}
	return nil
}
