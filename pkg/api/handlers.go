package api

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"docnorm/pkg/failure"
	"docnorm/pkg/pipeline"
)

// Runner is the extraction entry point the handlers call into.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Response
}

type Handler struct {
	runner  Runner
	version string
	log     zerolog.Logger
}

func NewHandler(runner Runner, version string, log zerolog.Logger) *Handler {
	return &Handler{
		runner:  runner,
		version: version,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// HandleHealth returns server health status
func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	})
}

// ScrapResponse is the success body of the web extraction endpoint.
type ScrapResponse struct {
	Data string `json:"data"`
}

// HandleScrap fetches ?url= and returns its sanitized markup.
func (h *Handler) HandleScrap(c echo.Context) error {
	url := c.QueryParam("url")
	if url == "" {
		return c.JSON(http.StatusBadRequest, ErrorBody{
			Error: "Please provide a URL to scrape or process.",
			Kind:  failure.KindRequest,
		})
	}

	resp := h.runner.Run(c.Request().Context(), pipeline.WebRequest(url))
	if !resp.OK() {
		return respondEnvelope(c, resp.Error)
	}
	text, ok := resp.Result.(pipeline.Text)
	if !ok {
		return failure.Newf(failure.KindFetch, "unexpected result type %T", resp.Result)
	}
	return c.JSON(http.StatusOK, ScrapResponse{Data: text.Content})
}

// PdfResponse is the success body of the PDF upload endpoint. FileName is
// the identifier the transient file was created under.
type PdfResponse struct {
	ParsedText string `json:"parsedText"`
	FileName   string `json:"fileName"`
}

// HandleUpload returns a handler extracting the multipart "file" field as kind.
func (h *Handler) HandleUpload(kind pipeline.SourceKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := c.FormFile("file")
		if err != nil {
			h.log.Debug().Err(err).Msg("no valid file uploaded")
			return c.JSON(http.StatusBadRequest, ErrorBody{
				Error: "Invalid file format or no file uploaded.",
				Kind:  failure.KindRequest,
			})
		}

		src, err := file.Open()
		if err != nil {
			return failure.New(failure.KindIO, "failed to open uploaded file", err)
		}
		defer src.Close()

		payload, err := io.ReadAll(src)
		if err != nil {
			return failure.New(failure.KindIO, "failed to read uploaded file", err)
		}

		resp := h.runner.Run(c.Request().Context(), pipeline.BinaryRequest(kind, file.Filename, payload))
		if !resp.OK() {
			return respondEnvelope(c, resp.Error)
		}

		switch res := resp.Result.(type) {
		case pipeline.Text:
			if kind == pipeline.KindPDF {
				return c.JSON(http.StatusOK, PdfResponse{ParsedText: res.Content, FileName: res.ArtifactID})
			}
			return c.String(http.StatusOK, res.Content)
		case pipeline.Sheets:
			return c.JSON(http.StatusOK, res.Collection)
		}
		return failure.Newf(failure.KindRequest, "unexpected result type %T", resp.Result)
	}
}
