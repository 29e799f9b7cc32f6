package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/phazer/pkg/config"
	"github.com/arthur-debert/phazer/pkg/logging"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

var genconfigCmd = &cobra.Command{
	Use:   "genconfig [file]",
	Short: "Write the effective configuration to a file, atomically",
	Long: `Genconfig renders the effective configuration (defaults merged with
any existing .phazer.toml and environment overrides) and publishes it
through the engine itself, so a crash mid-write can never leave a
truncated config file behind. The default destination is ` + config.ConfigFileName + `
in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.genconfig")

		target := config.ConfigFileName
		if len(args) == 1 {
			target = args[0]
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		data, err := cfg.Render()
		if err != nil {
			return err
		}

		p := phazer.New(target)
		defer func() { _ = p.Close() }()

		w, err := p.Writer()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		if err := p.Commit(); err != nil {
			return err
		}

		logger.Info().Str("target", target).Msg("Configuration written")
		fmt.Fprintln(cmd.OutOrStdout(), styles.GetStyle("Success").Render(
			fmt.Sprintf("Wrote configuration to %s", target)))
		return nil
	},
}
