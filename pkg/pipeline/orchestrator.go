package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"docnorm/pkg/extractor"
	"docnorm/pkg/failure"
)

type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

type Sanitizer interface {
	Sanitize(html string) string
}

type PdfExtractor interface {
	Extract(ctx context.Context, payload []byte) (extractor.PdfText, error)
}

type WordExtractor interface {
	Extract(ctx context.Context, payload []byte) (string, error)
}

type ExcelExtractor interface {
	Extract(ctx context.Context, payload []byte) (extractor.SheetCollection, error)
}

// Orchestrator routes a Request to exactly one extraction path and turns
// whatever that path returns into a Response.
type Orchestrator struct {
	Fetcher   Fetcher
	Sanitizer Sanitizer
	PDF       PdfExtractor
	Word      WordExtractor
	Excel     ExcelExtractor

	Log zerolog.Logger
}

// Run never panics and never returns a failure outside the Response envelope.
func (o *Orchestrator) Run(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := Response{Kind: req.Kind, Name: req.Name}

	log := o.Log.With().Str("kind", req.Kind.String()).Logger()
	if req.Name != "" {
		log = log.With().Str("name", req.Name).Logger()
	}
	if req.URL != "" {
		log = log.With().Str("url", req.URL).Logger()
	}

	result, err := o.dispatch(ctx, req)
	if err != nil {
		resp.Error = failure.Wrap(err, fallbackKind(req.Kind))
		log.Warn().
			Str("error_kind", string(resp.Error.Kind)).
			Str("details", resp.Error.Details).
			Dur("elapsed", time.Since(start)).
			Msg(resp.Error.Message)
		return resp
	}

	resp.Result = result
	log.Info().Dur("elapsed", time.Since(start)).Msg("extraction finished")
	return resp
}

func (o *Orchestrator) dispatch(ctx context.Context, req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = failure.New(fallbackKind(req.Kind), "extraction failed unexpectedly", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.Kind {
	case KindWeb:
		raw, err := o.Fetcher.Get(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		return Text{Content: o.Sanitizer.Sanitize(raw)}, nil
	case KindPDF:
		out, err := o.PDF.Extract(ctx, req.Payload)
		if err != nil {
			return nil, err
		}
		return Text{Content: out.Text, ArtifactID: out.ArtifactID}, nil
	case KindWord:
		text, err := o.Word.Extract(ctx, req.Payload)
		if err != nil {
			return nil, err
		}
		return Text{Content: text}, nil
	case KindExcel:
		sheets, err := o.Excel.Extract(ctx, req.Payload)
		if err != nil {
			return nil, err
		}
		return Sheets{Collection: sheets}, nil
	}
	return nil, failure.Newf(failure.KindRequest, "unknown source kind %s", req.Kind)
}

func fallbackKind(k SourceKind) failure.Kind {
	switch k {
	case KindWeb:
		return failure.KindFetch
	case KindPDF:
		return failure.KindPdf
	case KindWord:
		return failure.KindWord
	case KindExcel:
		return failure.KindExcel
	}
	return failure.KindRequest
}
