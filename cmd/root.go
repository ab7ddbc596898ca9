package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"docnorm/pkg/config"
	"docnorm/pkg/extractor"
	"docnorm/pkg/fetch"
	"docnorm/pkg/pipeline"
	"docnorm/pkg/sanitize"
	"docnorm/pkg/utils"
)

// Version is set at build time with -ldflags.
var Version = "dev"

var (
	// Logging
	verbose bool
	logFile string

	// Extraction
	fetchTimeout  time.Duration
	parseTimeout  time.Duration
	maxConcurrent int
	maxBytes      int64

	// Authentication (smb:// locations)
	username string
	password string
	domain   string
	hash     string

	// Batch
	parallel   int
	outputFile string
	resumeFile string
	noDedup    bool

	// Serve
	listenAddr   string
	noRequestLog bool

	log      = zerolog.Nop()
	closeLog = func() {}
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docnorm",
	Short: "docnorm: normalize web pages, PDF, Word and Excel documents",
	Long: `docnorm turns heterogeneous documents into normalized content.

Web pages are fetched and stripped of scripts, images, SVG and every
attribute. PDF and Word documents become plain text. Excel workbooks
become one list of header-keyed records per sheet.

Use "extract" for one-off batches and "serve" for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, closeLog, err = utils.NewLogger(utils.LogOptions{
			Verbose:  verbose,
			FilePath: logFile,
		})
		if err != nil {
			return err
		}

		cfg = config.Load()
		cfg.FetchTimeout = fetchTimeout
		cfg.ParseTimeout = parseTimeout
		cfg.MaxConcurrent = maxConcurrent
		cfg.MaxUploadBytes = maxBytes
		cfg.BatchParallel = parallel
		cfg.ListenAddr = listenAddr
		cfg.RequestLogging = !noRequestLog

		if err := cfg.EnsureTempDir(); err != nil {
			return fmt.Errorf("create temp dir %s: %w", cfg.TempDir, err)
		}
		log.Debug().Str("temp_dir", cfg.TempDir).Msg("configuration loaded")
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildOrchestrator wires every extraction path from c.
func buildOrchestrator(c config.Config, log zerolog.Logger) *pipeline.Orchestrator {
	fetcher := fetch.NewClient(c.FetchTimeout, log)
	fetcher.MaxBodyBytes = c.MaxUploadBytes

	return &pipeline.Orchestrator{
		Fetcher:   fetcher,
		Sanitizer: sanitize.New(log),
		PDF:       extractor.NewPdfExtractor(c.TempDir, c.ParseTimeout, c.MaxConcurrent, log),
		Word:      extractor.NewWordExtractor(log),
		Excel:     extractor.NewExcelExtractor(log),
		Log:       log,
	}
}

func init() {
	defaults := config.Defaults()

	// Logging
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debugging messages")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON log lines to this file")

	// Extraction
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "fetch-timeout", defaults.FetchTimeout, "Timeout for fetching a web page")
	rootCmd.PersistentFlags().DurationVar(&parseTimeout, "parse-timeout", defaults.ParseTimeout, "Timeout for parsing one PDF")
	rootCmd.PersistentFlags().IntVar(&maxConcurrent, "max-pdf", defaults.MaxConcurrent, "Max concurrent PDF parses")
	rootCmd.PersistentFlags().Int64Var(&maxBytes, "max-bytes", defaults.MaxUploadBytes, "Max document or page size in bytes")

	// Auth
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Username for smb:// locations")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Password for smb:// locations")
	rootCmd.PersistentFlags().StringVarP(&domain, "domain", "d", "", "Domain for smb:// locations")
	rootCmd.PersistentFlags().StringVarP(&hash, "hash", "H", "", "NTLM hash for smb:// locations")

	// Batch
	rootCmd.PersistentFlags().IntVarP(&parallel, "parallel", "P", defaults.BatchParallel, "Max locations extracted at once")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Write results to this file (JSON lines) instead of stdout")
	rootCmd.PersistentFlags().StringVar(&resumeFile, "resume", "", "Resume state file (JSON)")
	rootCmd.PersistentFlags().BoolVar(&noDedup, "no-dedup", false, "Extract identical payloads more than once")

	// Serve
	rootCmd.PersistentFlags().StringVarP(&listenAddr, "listen", "l", defaults.ListenAddr, "Listen address for serve")
	rootCmd.PersistentFlags().BoolVar(&noRequestLog, "no-request-log", !defaults.RequestLogging, "Disable per-request logging in serve")
}
