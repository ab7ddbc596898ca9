package cmd

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"docnorm/pkg/failure"
	"docnorm/pkg/pipeline"
	"docnorm/pkg/report"
	"docnorm/pkg/smbclient"
	"docnorm/pkg/source"
	"docnorm/pkg/state"
	"docnorm/pkg/utils"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one or more documents",
	Long: `Extract documents of one kind and print one JSON line per location.

Locations for pdf, word and excel are local paths or
smb://[user[:pass]@]host/share/path. Locations for web are URLs.`,
}

func newExtractCmd(kind pipeline.SourceKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind.String() + " <location>...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reporter report.Reporter
			if outputFile != "" {
				jr, err := report.NewJSONReporter(outputFile)
				if err != nil {
					return fmt.Errorf("create report: %w", err)
				}
				reporter = jr
			} else {
				reporter = report.NewStreamReporter(cmd.OutOrStdout())
			}
			defer reporter.Close()

			return runBatch(cmd.Context(), kind, args, reporter)
		},
	}
}

func runBatch(ctx context.Context, kind pipeline.SourceKind, locations []string, reporter report.Reporter) error {
	o := buildOrchestrator(cfg, log)
	loader := &source.Loader{
		Creds: smbclient.Credentials{
			User:     username,
			Password: password,
			Domain:   domain,
			Hash:     hash,
		},
		MaxBytes: cfg.MaxUploadBytes,
		Log:      log,
	}

	var dedup *utils.Deduplicator
	if !noDedup {
		dedup = utils.NewDeduplicator()
	}

	var stateMgr *state.Manager
	if resumeFile != "" {
		var err error
		stateMgr, err = state.NewManager(resumeFile, log)
		if err != nil {
			return fmt.Errorf("load resume state: %w", err)
		}
		log.Info().Msgf("Resume mode enabled. Loaded %d completed locations from %s", stateMgr.Len(), resumeFile)
	}

	var pending []string
	for _, loc := range locations {
		if stateMgr != nil && stateMgr.IsCompleted(loc) {
			log.Info().Msgf("Skipping completed location: %s", loc)
			continue
		}
		pending = append(pending, loc)
	}

	var (
		done, failed int32
		total        = len(pending)
	)

	g := new(errgroup.Group)
	g.SetLimit(max(cfg.BatchParallel, 1))
	for _, loc := range pending {
		g.Go(func() error {
			ok := extractOne(ctx, o, loader, dedup, reporter, kind, loc)
			if !ok {
				atomic.AddInt32(&failed, 1)
			} else if stateMgr != nil {
				if err := stateMgr.MarkCompleted(loc); err != nil {
					log.Error().Err(err).Msg("failed to save resume state")
				}
			}
			curr := atomic.AddInt32(&done, 1)
			log.Debug().Msgf("Progress: [%d/%d] - Finished %s", curr, total, loc)
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d locations failed", failed, total)
	}
	utils.Success(log, "Extracted %d %s locations", total, kind)
	return nil
}

// extractOne reports a response for loc unless its payload duplicates an
// earlier one. It returns false if loc failed.
func extractOne(ctx context.Context, o *pipeline.Orchestrator, loader *source.Loader, dedup *utils.Deduplicator,
	reporter report.Reporter, kind pipeline.SourceKind, loc string) bool {

	var resp pipeline.Response
	if kind == pipeline.KindWeb {
		resp = o.Run(ctx, pipeline.WebRequest(loc))
	} else {
		payload, err := loader.Load(ctx, loc)
		if err != nil {
			resp = pipeline.Response{Kind: kind, Name: loc, Error: failure.Wrap(err, failure.KindRequest)}
			log.Error().Msgf("%s: %s", loc, resp.Error.Details)
		} else {
			if dedup != nil {
				if dup, first := dedup.Seen(loc, payload.Data); dup {
					log.Warn().Msgf("%s is identical to %s, skipping", loc, first)
					return true
				}
			}
			resp = o.Run(ctx, pipeline.BinaryRequest(kind, payload.Name, payload.Data))
		}
	}

	if resp.OK() {
		switch res := resp.Result.(type) {
		case pipeline.Text:
			utils.Success(log, "%s: %d characters", loc, len(res.Content))
		case pipeline.Sheets:
			utils.Success(log, "%s: %d sheets", loc, len(res.Collection))
		}
	}

	if err := reporter.Report(report.Entry{Location: loc, Response: resp}); err != nil {
		log.Error().Err(err).Str("location", loc).Msg("failed to write report")
	}
	return resp.OK()
}

func init() {
	extractCmd.AddCommand(
		newExtractCmd(pipeline.KindWeb, "Fetch web pages and strip them down to safe markup"),
		newExtractCmd(pipeline.KindPDF, "Extract plain text from PDF documents"),
		newExtractCmd(pipeline.KindWord, "Extract plain text from Word documents"),
		newExtractCmd(pipeline.KindExcel, "Convert Excel workbooks to records per sheet"),
	)
	rootCmd.AddCommand(extractCmd)
}
