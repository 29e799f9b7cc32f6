package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/phazer/pkg/config"
	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/logging"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

var raceContenders int

func init() {
	raceCmd.Flags().IntVarP(&raceContenders, "contenders", "n", 0,
		"Number of goroutines racing for the target (default from config)")
}

var raceCmd = &cobra.Command{
	Use:   "race <file>",
	Short: "Race several writers for one target; exactly one wins",
	Long: `Race starts N goroutines that each build an engine for the same
target, write distinct content, and commit concurrently. Whatever
happens, the target ends up holding exactly one contender's complete
content, never a mixture and never a partial file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.race")
		target := args[0]

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		strategy, err := cfg.CommitStrategy()
		if err != nil {
			return err
		}

		contenders := raceContenders
		if contenders <= 0 {
			contenders = cfg.Race.Contenders
		}
		if contenders < 2 {
			return errors.Newf(errors.ErrInvalidInput,
				"a race needs at least 2 contenders, got %d", contenders)
		}

		logger.Info().Int("contenders", contenders).Str("target", target).Msg("Starting race")

		contents := make([]string, contenders)
		for i := range contents {
			contents[i] = fmt.Sprintf("content from contender %d\n", i)
		}

		commitErrs := make([]error, contenders)
		var wg sync.WaitGroup
		for i := 0; i < contenders; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				commitErrs[i] = publishOne(target, strategy, contents[i])
			}(i)
		}
		wg.Wait()

		final, err := os.ReadFile(target)
		if err != nil {
			return err
		}

		winner := -1
		for i, c := range contents {
			if c == string(final) {
				winner = i
				break
			}
		}
		if winner < 0 {
			return errors.New(errors.ErrInternal,
				"target content matches no contender; atomicity was violated")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, styles.GetStyle("Winner").Render(
			fmt.Sprintf("Contender %d won %s", winner, target)))
		for i, err := range commitErrs {
			if err != nil {
				fmt.Fprintln(out, styles.GetStyle("Muted").Render(
					fmt.Sprintf("  contender %d lost: %v", i, err)))
			}
		}
		return nil
	},
}

// publishOne runs one contender: build an engine, write its content,
// commit.
func publishOne(target string, strategy phazer.CommitStrategy, content string) error {
	p, err := phazer.NewBuilder().Strategy(strategy).Target(target).Build()
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	w, err := p.Writer()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return p.Commit()
}
