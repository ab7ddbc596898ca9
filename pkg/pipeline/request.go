package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"docnorm/pkg/extractor"
	"docnorm/pkg/failure"
)

// SourceKind selects the extraction path.
type SourceKind int

const (
	KindWeb SourceKind = iota + 1
	KindPDF
	KindWord
	KindExcel
)

var kindNames = map[SourceKind]string{
	KindWeb:   "web",
	KindPDF:   "pdf",
	KindWord:  "word",
	KindExcel: "excel",
}

func (k SourceKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// ParseKind accepts the names printed by String, case-insensitively.
func ParseKind(s string) (SourceKind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return k, nil
		}
	}
	return 0, failure.Newf(failure.KindRequest, "unknown source kind %q", s)
}

// Request is a single extraction. Web requests carry URL; the binary kinds
// carry Payload. Carrying the other variant is a request error.
type Request struct {
	Kind    SourceKind
	URL     string
	Payload []byte
	// Name is informational: the uploaded file name or local path.
	Name string
}

func WebRequest(url string) Request {
	return Request{Kind: KindWeb, URL: url}
}

func BinaryRequest(kind SourceKind, name string, payload []byte) Request {
	return Request{Kind: kind, Name: name, Payload: payload}
}

// Validate checks the variant invariant and, for binary kinds, that the
// payload does not sniff as a different document family.
func (r Request) Validate() error {
	switch r.Kind {
	case KindWeb:
		if strings.TrimSpace(r.URL) == "" {
			return failure.Newf(failure.KindRequest, "please provide a URL to scrape or process")
		}
		if len(r.Payload) > 0 {
			return failure.Newf(failure.KindRequest, "web requests take a URL, not a payload")
		}
		return nil
	case KindPDF, KindWord, KindExcel:
		if r.URL != "" {
			return failure.Newf(failure.KindRequest, "%s requests take a payload, not a URL", r.Kind)
		}
		if len(r.Payload) == 0 {
			return failure.Newf(failure.KindRequest, "invalid file format or no file uploaded")
		}
		return checkFamily(r.Kind, extractor.Detect(r.Payload))
	}
	return failure.Newf(failure.KindRequest, "unknown source kind %s", r.Kind)
}

func checkFamily(kind SourceKind, format extractor.Format) error {
	if format == extractor.FormatUnknown {
		return nil
	}
	ok := false
	switch kind {
	case KindPDF:
		ok = format == extractor.FormatPDF
	case KindWord:
		ok = format.IsWord()
	case KindExcel:
		ok = format.IsExcel()
	}
	if ok {
		return nil
	}
	return failure.Newf(failure.KindRequest, "declared %s but payload looks like %s", kind, format)
}

// Result is either Text or extractor.SheetCollection.
type Result interface {
	isResult()
}

// Text is the result of the web, PDF and Word paths. ArtifactID is set only
// by the PDF path.
type Text struct {
	Content    string
	ArtifactID string
}

// Sheets is the result of the Excel path.
type Sheets struct {
	Collection extractor.SheetCollection
}

func (Text) isResult()   {}
func (Sheets) isResult() {}

// Response carries exactly one of Result and Error.
type Response struct {
	Kind   SourceKind
	Name   string
	Result Result
	Error  *failure.Envelope
}

func (r Response) OK() bool {
	return r.Error == nil
}

// MarshalJSON flattens the response for reports: {kind, name, text|sheets|error}.
func (r Response) MarshalJSON() ([]byte, error) {
	out := struct {
		Kind       string                    `json:"kind"`
		Name       string                    `json:"name,omitempty"`
		Text       *string                   `json:"text,omitempty"`
		ArtifactID string                    `json:"artifactId,omitempty"`
		Sheets     extractor.SheetCollection `json:"sheets,omitempty"`
		Error      *failure.Envelope         `json:"error,omitempty"`
	}{Kind: r.Kind.String(), Name: r.Name, Error: r.Error}

	switch res := r.Result.(type) {
	case Text:
		out.Text = &res.Content
		out.ArtifactID = res.ArtifactID
	case Sheets:
		out.Sheets = res.Collection
	}
	return json.Marshal(out)
}
