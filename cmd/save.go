package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devtoy/cli/internal/archive"
	"github.com/devtoy/cli/internal/export"
	"github.com/devtoy/cli/internal/format"
)

var (
	saveCommit  bool
	saveMessage string
	saveQuiet   bool
)

var saveCmd = &cobra.Command{
	Use:   "save [directory]",
	Short: "Download your published articles as markdown files",
	Long: `Download every published article into a directory (default: the current
directory), one <slug>.md file per article. The directory is created if it
does not exist.

Each article body is piped through a markdown formatter before it is written
(default: prettier --parser markdown). Use --formatter none to write the
bodies unchanged.

Examples:
  # Save into the current directory
  devtoy save

  # Save into ./posts and record a git commit of the result
  devtoy save posts --commit

  # Use another formatter with more parallel runs
  devtoy save posts --formatter "mdformat -" --concurrency 8`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSave,
}

func runSave(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	location, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("cannot resolve directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(location, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", location, err)
	}

	formatter := format.Parse(cfg.Formatter)
	if err := format.Available(formatter); err != nil {
		return fmt.Errorf("%w\nInstall it, pick another with --formatter, or use --formatter none", err)
	}

	downloader := &export.Downloader{
		Source:      newClient(),
		Formatter:   formatter,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}

	interactive := !saveQuiet && isTerminal(os.Stdout)
	if !interactive {
		downloader.OnResult = func(res export.Result) {
			if !saveQuiet || res.Err != nil {
				printResult(os.Stdout, res)
			}
		}
	}

	// The key may need to be prompted for; do it before any progress display starts.
	if _, err := keyStore.Obtain(); err != nil {
		return fmt.Errorf("authentication required: %w", err)
	}

	var report *export.Report
	if interactive {
		report, err = runWithProgress(cmd.Context(), downloader, location)
	} else {
		report, err = downloader.Download(cmd.Context(), location)
	}
	if err != nil {
		return err
	}

	total := len(report.Results)
	saved := report.Saved()
	fmt.Println(styleTitle.Render(fmt.Sprintf("Saved %d of %d articles to %s", saved, total, location)))

	if saveCommit && saved > 0 {
		if err := commitExport(location, saved); err != nil {
			return err
		}
	}

	if err := report.Err(); err != nil {
		return fmt.Errorf("%d of %d articles failed:\n%w", total-saved, total, err)
	}
	return nil
}

func commitExport(dir string, saved int) error {
	message := saveMessage
	if message == "" {
		message = fmt.Sprintf("Export %d articles from dev.to", saved)
	}

	hash, err := archive.Commit(dir, message, archive.Signature{
		Name:  cfg.GitAuthorName,
		Email: cfg.GitAuthorEmail,
	})
	if errors.Is(err, archive.ErrNothingToCommit) {
		fmt.Println(styleDim.Render("No changes to commit"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}

	fmt.Printf("Committed %s\n", hash[:min(len(hash), 12)])
	return nil
}

func init() {
	saveCmd.Flags().String("formatter", "", "Markdown formatter command, or 'none' (default \""+format.DefaultCommand+"\")")
	saveCmd.Flags().Int("concurrency", 0, "Maximum number of articles formatted at once (default 4)")
	saveCmd.Flags().BoolVar(&saveCommit, "commit", false, "Commit the saved articles to a git repository in the directory")
	saveCmd.Flags().StringVar(&saveMessage, "message", "", "Commit message used with --commit")
	saveCmd.Flags().BoolVarP(&saveQuiet, "quiet", "q", false, "Only report failures")

	rootCmd.AddCommand(saveCmd)
}
