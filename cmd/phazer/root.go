package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/phazer/internal/version"
	"github.com/arthur-debert/phazer/pkg/logging"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "phazer",
		Short: "Atomic single-file publishing",
		Long: `phazer builds a file in a private working location and publishes it to
its final path in one indivisible rename, so readers of the final path
never observe a partial file and an interrupted write never corrupts a
pre-existing version.

The subcommands demonstrate the engine: downloading a URL atomically,
racing several writers for one target, and recovering from a read-only
target.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	initTemplateFormatting()
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	manCmd.Flags().StringVar(&manDir, "dir", ".", "Directory to write the man pages to")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(manCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(raceCmd)
	rootCmd.AddCommand(conflictCmd)
	rootCmd.AddCommand(readonlyCmd)
	rootCmd.AddCommand(genconfigCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for phazer`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phazer version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var manDir string

var manCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages",
	Long:  `Generate man pages for phazer and its subcommands`,
	RunE: func(cmd *cobra.Command, args []string) error {
		header := &doc.GenManHeader{
			Title:   "PHAZER",
			Section: "1",
			Source:  "phazer " + version.Version,
			Manual:  "phazer manual",
		}
		return doc.GenManTree(rootCmd, header, manDir)
	},
}
