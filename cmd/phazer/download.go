package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/phazer/pkg/config"
	"github.com/arthur-debert/phazer/pkg/errors"
	"github.com/arthur-debert/phazer/pkg/logging"
	"github.com/arthur-debert/phazer/pkg/phazer"
	"github.com/arthur-debert/phazer/pkg/ui/styles"
)

var downloadCmd = &cobra.Command{
	Use:   "download <url> <file>",
	Short: "Download a URL into a file, atomically",
	Long: `Download streams the response body into a private working file and
renames it onto <file> only after the transfer completes. An
interrupted or failed download leaves <file> exactly as it was: a
previous version stays intact, and a file that never existed never
appears.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.download")
		url, target := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		strategy, err := cfg.CommitStrategy()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(),
			time.Duration(cfg.Download.TimeoutSeconds)*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "invalid url %q", url)
		}

		logger.Info().Str("url", url).Str("target", target).Msg("Starting download")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "fetching %q failed", url)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return errors.Newf(errors.ErrDownload, "fetching %q returned %s", url, resp.Status)
		}

		p, err := phazer.NewBuilder().Strategy(strategy).Target(target).Build()
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		start := time.Now()
		defer logging.LogDuration(start, "download")

		n, err := p.WriteFrom(ctx, resp.Body)
		if err != nil {
			return errors.Wrapf(err, errors.ErrDownload, "transfer of %q failed", url).
				WithDetail("staged_bytes", n)
		}
		if err := p.Commit(); err != nil {
			return err
		}

		logger.Info().
			Int64("bytes", n).
			Msg("Download published")

		fmt.Fprintln(cmd.OutOrStdout(), styles.GetStyle("Success").Render(
			fmt.Sprintf("Published %d bytes to %s", n, target)))
		return nil
	},
}
