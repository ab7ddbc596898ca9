package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"docnorm/pkg/failure"
)

// PdfText is the outcome of a PDF extraction. ArtifactID is the identifier
// the transient file was named after.
type PdfText struct {
	Text       string
	ArtifactID string
}

// PdfExtractor parses PDFs through a transient file in Dir. Each call owns
// exactly one uniquely named artifact and removes it before returning.
type PdfExtractor struct {
	Dir string
	// Timeout bounds the parse step. Zero disables it.
	Timeout time.Duration
	// Semaphore, if set, bounds concurrently running parses. A slot is held
	// until the parser goroutine returns, even after a timeout.
	Semaphore chan struct{}

	Log zerolog.Logger

	// readText parses the file at path; readPdfText unless a test replaces it.
	readText func(path string, log zerolog.Logger) (string, error)
}

func NewPdfExtractor(dir string, timeout time.Duration, maxConcurrent int, log zerolog.Logger) *PdfExtractor {
	e := &PdfExtractor{
		Dir:      dir,
		Timeout:  timeout,
		Log:      log.With().Str("component", "pdf").Logger(),
		readText: readPdfText,
	}
	if maxConcurrent > 0 {
		e.Semaphore = make(chan struct{}, maxConcurrent)
	}
	return e
}

func (e *PdfExtractor) Extract(ctx context.Context, payload []byte) (out PdfText, err error) {
	if err := ctx.Err(); err != nil {
		return PdfText{}, failure.New(failure.KindTimeout, "pdf extraction not started", err)
	}
	release := func() {}
	if e.Semaphore != nil {
		select {
		case e.Semaphore <- struct{}{}:
			release = func() { <-e.Semaphore }
		case <-ctx.Done():
			return PdfText{}, failure.New(failure.KindTimeout, "waiting for a pdf parse slot", ctx.Err())
		}
	}
	// Once parse starts, its goroutine owns the slot.
	parsing := false
	defer func() {
		if !parsing {
			release()
		}
	}()

	id := uuid.NewString()
	path := filepath.Join(e.Dir, id+".pdf")
	log := e.Log.With().Str("artifact", id).Logger()

	if err := writeArtifact(path, payload); err != nil {
		return PdfText{}, failure.New(failure.KindIO, "failed to write transient file", err)
	}
	log.Debug().Str("path", path).Int("bytes", len(payload)).Msg("transient file created")

	defer func() {
		rmErr := os.Remove(path)
		if rmErr == nil || errors.Is(rmErr, os.ErrNotExist) {
			log.Debug().Msg("transient file removed")
			return
		}
		log.Error().Err(rmErr).Str("path", path).Msg("failed to remove transient file")
		if err == nil {
			out = PdfText{}
			err = failure.New(failure.KindIO, "failed to remove transient file", rmErr)
		}
	}()

	parsing = true
	text, err := e.parse(ctx, path, log, release)
	if err != nil {
		return PdfText{}, err
	}
	return PdfText{Text: text, ArtifactID: id}, nil
}

func writeArtifact(path string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

type parseResult struct {
	text string
	err  error
}

// parse runs the parser on its own goroutine and waits for it, the deadline,
// or cancellation, whichever comes first. release runs when the goroutine exits.
func (e *PdfExtractor) parse(ctx context.Context, path string, log zerolog.Logger, release func()) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	done := make(chan parseResult, 1)
	readText := e.readText
	if readText == nil {
		readText = readPdfText
	}

	go func() {
		defer release()
		defer func() {
			if r := recover(); r != nil {
				done <- parseResult{err: fmt.Errorf("parser panic: %v", r)}
			}
		}()
		text, err := readText(path, log)
		done <- parseResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn().Err(res.err).Msg("pdf parse failed")
			return "", failure.New(failure.KindPdf, "failed to parse the PDF", res.err)
		}
		if res.text == "" {
			log.Warn().Msg("pdf contained no extractable text")
		}
		return res.text, nil
	case <-ctx.Done():
		return "", failure.New(failure.KindTimeout, "pdf parse timed out", ctx.Err())
	}
}

func readPdfText(path string, log zerolog.Logger) (string, error) {
	f, r, err := pdf.Open(path)
	if f != nil {
		defer f.Close()
	}
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		s, err := p.GetPlainText(nil)
		if err != nil {
			log.Debug().Err(err).Int("page", pageIndex).Msg("skipping unreadable page")
			continue
		}
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}
