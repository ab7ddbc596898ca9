package extractor

import (
	"archive/zip"
	"bytes"
	"strings"

	"github.com/richardlehane/mscfb"
)

// Format is the container format recognised from a payload's leading bytes.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDocx
	FormatXlsx
	FormatDoc
	FormatXls
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDocx:
		return "docx"
	case FormatXlsx:
		return "xlsx"
	case FormatDoc:
		return "doc"
	case FormatXls:
		return "xls"
	}
	return "unknown"
}

func (f Format) IsWord() bool  { return f == FormatDocx || f == FormatDoc }
func (f Format) IsExcel() bool { return f == FormatXlsx || f == FormatXls }

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Detect sniffs payload. Anything it cannot place is FormatUnknown; the
// extractors still get a chance to reject it with their own error.
func Detect(payload []byte) Format {
	head := payload
	if len(head) > 1024 {
		head = head[:1024]
	}
	switch {
	case bytes.Contains(head, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(payload, zipMagic):
		return detectOOXML(payload)
	case bytes.HasPrefix(payload, oleMagic):
		return detectOLE(payload)
	}
	return FormatUnknown
}

func detectOOXML(payload []byte) Format {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return FormatUnknown
	}
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return FormatDocx
		case strings.HasPrefix(f.Name, "xl/"):
			return FormatXlsx
		}
	}
	return FormatUnknown
}

func detectOLE(payload []byte) Format {
	doc, err := mscfb.New(bytes.NewReader(payload))
	if err != nil {
		return FormatUnknown
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "WordDocument":
			return FormatDoc
		case "Workbook", "Book":
			return FormatXls
		}
	}
	return FormatUnknown
}
