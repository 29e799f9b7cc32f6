package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/phazer/pkg/logging"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

var conflictCmd = &cobra.Command{
	Use:   "conflict <file>",
	Short: "Show two engines committing to one target in sequence",
	Long: `Conflict builds two independent engines for the same target, writes
different content through each, and commits them one after the other.
Both commits succeed; the later rename simply replaces the earlier
content. Rename does not require the destination to be absent, so
"conflicts" resolve to last-writer-wins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.conflict")
		target := args[0]

		first := phazer.New(target)
		defer func() { _ = first.Close() }()
		second := phazer.New(target)
		defer func() { _ = second.Close() }()

		logger.Debug().
			Str("first", first.WorkingPath()).
			Str("second", second.WorkingPath()).
			Msg("Two engines, two distinct working files")

		if err := writeThrough(first, "from the first engine\n"); err != nil {
			return err
		}
		if err := writeThrough(second, "from the second engine\n"); err != nil {
			return err
		}

		if err := first.Commit(); err != nil {
			return err
		}
		if err := second.Commit(); err != nil {
			return err
		}

		final, err := os.ReadFile(target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, styles.GetStyle("Success").Render(
			fmt.Sprintf("Both commits succeeded; %s now holds:", target)))
		fmt.Fprint(out, string(final))
		return nil
	},
}

// writeThrough fills an engine's working file with content and closes
// the writer, leaving the engine ready to commit.
func writeThrough(p *phazer.Phazer, content string) error {
	w, err := p.Writer()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
