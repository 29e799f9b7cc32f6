package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/phazer/pkg/logging"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

var readonlyCmd = &cobra.Command{
	Use:   "readonly <file>",
	Short: "Recover from a read-only target with CommitRecoverable",
	Long: `Readonly publishes <file>, marks it read-only, then tries to publish a
new version. On platforms that refuse to replace a read-only target the
first attempt fails with a permission error; CommitRecoverable keeps
the engine and its working file alive, so the command clears the
attribute and commits the very same engine again.

On POSIX filesystems rename replaces a read-only target outright and
the recovery path is never taken; the command reports which of the two
happened.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.readonly")
		target := args[0]
		out := cmd.OutOrStdout()

		// Publish the original version.
		p := phazer.New(target)
		if err := writeThrough(p, "read-only\n"); err != nil {
			_ = p.Close()
			return err
		}
		if err := p.Commit(); err != nil {
			_ = p.Close()
			return err
		}

		// Protect it.
		if err := os.Chmod(target, 0444); err != nil {
			return err
		}
		defer func() { _ = os.Chmod(target, 0644) }()

		// Try to replace it.
		p = phazer.New(target)
		defer func() { _ = p.Close() }()
		if err := writeThrough(p, "something new\n"); err != nil {
			return err
		}

		switch err := p.CommitRecoverable(); {
		case err == nil:
			fmt.Fprintln(out, styles.GetStyle("Success").Render(
				"Rename replaced the read-only target directly, no recovery needed"))
		case errors.Is(err, fs.ErrPermission):
			logger.Info().Err(err).Msg("Target is protected, clearing the read-only attribute")
			if err := os.Chmod(target, 0644); err != nil {
				return err
			}
			if err := p.Commit(); err != nil {
				return err
			}
			fmt.Fprintln(out, styles.GetStyle("Success").Render(
				"Recovered: cleared the read-only attribute and committed the same engine"))
		default:
			return err
		}

		final, err := os.ReadFile(target)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s now holds: %s", target, string(final))
		return nil
	},
}
