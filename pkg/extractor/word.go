package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/nguyenthenguyen/docx"
	"github.com/richardlehane/mscfb"
	"github.com/rs/zerolog"

	"docnorm/pkg/failure"
)

// WordExtractor returns the raw text of .docx and legacy .doc payloads,
// discarding styling, images and structure.
type WordExtractor struct {
	// MinRunLength is the shortest printable run kept from legacy .doc streams.
	MinRunLength int

	Log zerolog.Logger
}

func NewWordExtractor(log zerolog.Logger) *WordExtractor {
	return &WordExtractor{
		MinRunLength: 4,
		Log:          log.With().Str("component", "word").Logger(),
	}
}

func (e *WordExtractor) Extract(ctx context.Context, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", failure.New(failure.KindTimeout, "word extraction not started", err)
	}

	format := Detect(payload)
	var (
		text string
		err  error
	)
	switch format {
	case FormatDocx:
		text, err = e.docx(payload)
	case FormatDoc:
		text, err = e.legacy(payload)
	default:
		return "", failure.Newf(failure.KindWord, "payload is not a .doc or .docx document (detected %s)", format)
	}
	if err != nil {
		e.Log.Warn().Err(err).Str("format", format.String()).Msg("word parse failed")
		return "", failure.New(failure.KindWord, "failed to parse the Word document", err)
	}

	e.Log.Debug().Str("format", format.String()).Int("chars", len(text)).Msg("word text extracted")
	return text, nil
}

func (e *WordExtractor) docx(payload []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docx panic: %v", r)
		}
	}()

	rdr := bytes.NewReader(payload)
	d, err := docx.ReadDocxFromMemory(rdr, rdr.Size())
	if err != nil {
		return "", err
	}
	defer d.Close()

	// The document part is WordprocessingML; paragraphs, breaks and tabs become newlines.
	text, err = docconv.XMLToText(strings.NewReader(d.Editable().GetContent()),
		[]string{"br", "p", "tab"}, []string{"instrText", "script"}, true)
	if err != nil {
		return "", fmt.Errorf("document xml: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (e *WordExtractor) legacy(payload []byte) (string, error) {
	doc, err := mscfb.New(bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name != "WordDocument" {
			continue
		}
		b, err := io.ReadAll(entry)
		if err != nil {
			return "", fmt.Errorf("read WordDocument stream: %w", err)
		}
		return printableRuns(b, e.MinRunLength), nil
	}
	return "", errors.New("no WordDocument stream")
}
