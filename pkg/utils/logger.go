package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	infoLabel    = color.New(color.FgCyan).SprintFunc()
	successLabel = color.New(color.FgGreen).SprintFunc()
	warnLabel    = color.New(color.FgHiBlack).SprintFunc() // Gray/Dark Gray
	errorLabel   = color.New(color.FgRed).SprintFunc()
	debugLabel   = color.New(color.FgHiBlack).SprintFunc()

	// Bold helper
	Bold = color.New(color.Bold).SprintFunc()
)

// LogOptions configures NewLogger.
type LogOptions struct {
	Verbose bool
	// FilePath, when set, receives every event as a JSON line with a timestamp.
	FilePath string
	// Console defaults to stderr.
	Console io.Writer
}

// NewLogger builds the logger handed to every component. The returned closer
// releases the log file, if any.
func NewLogger(opts LogOptions) (zerolog.Logger, func(), error) {
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	console := zerolog.ConsoleWriter{
		Out:         out,
		NoColor:     true, // colours come from FormatLevel
		TimeFormat:  "15:04:05",
		FormatLevel: formatLevel,
	}

	writers := []io.Writer{console}
	closer := func() {}
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = func() { f.Close() }
	}

	level := zerolog.InfoLevel
	if opts.Verbose || os.Getenv("DEBUG") == "true" {
		level = zerolog.DebugLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

func formatLevel(i interface{}) string {
	lvl, _ := i.(string)
	switch strings.ToLower(lvl) {
	case "debug", "trace":
		return debugLabel("[DEBUG]")
	case "info":
		return infoLabel("[INFO]")
	case "warn":
		return warnLabel("[!]")
	case "error", "fatal", "panic":
		return errorLabel("[-]")
	}
	return fmt.Sprintf("[%s]", lvl)
}

// Success logs at info level, prefixing the message with a green "[+]".
func Success(log zerolog.Logger, format string, a ...interface{}) {
	log.Info().Msg(successLabel("[+] ") + fmt.Sprintf(format, a...))
}
