package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docnorm/pkg/failure"
	"docnorm/pkg/pipeline"
)

func TestJSONReporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")
	r, err := NewJSONReporter(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Report(Entry{
				Location: fmt.Sprintf("doc-%d.docx", i),
				Response: pipeline.Response{Kind: pipeline.KindWord, Result: pipeline.Text{Content: "hi"}},
			}))
		}(i)
	}
	wg.Wait()
	require.NoError(t, r.Report(Entry{
		Location: "broken.pdf",
		Response: pipeline.Response{Kind: pipeline.KindPDF, Error: failure.Wrap(failure.Newf(failure.KindPdf, "bad xref"), failure.KindPdf)},
	}))
	require.NoError(t, r.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &m), scanner.Text())
		lines = append(lines, m)
	}
	require.Len(t, lines, 11)

	for _, m := range lines {
		assert.NotEmpty(t, m["timestamp"])
	}
	last := lines[10]
	assert.Equal(t, "broken.pdf", last["location"])
	resp := last["response"].(map[string]interface{})
	assert.Equal(t, "PdfParseError", resp["error"].(map[string]interface{})["kind"])
}

func TestStreamReporter(t *testing.T) {
	var buf bytes.Buffer
	var r Reporter = NewStreamReporter(&buf)
	require.NoError(t, r.Report(Entry{
		Location:  "people.xlsx",
		Timestamp: "2024-01-02T03:04:05Z",
		Response:  pipeline.Response{Kind: pipeline.KindExcel, Name: "people.xlsx", Result: pipeline.Sheets{}},
	}))
	require.NoError(t, r.Close())

	assert.JSONEq(t, `{
		"location": "people.xlsx",
		"timestamp": "2024-01-02T03:04:05Z",
		"response": {"kind": "excel", "name": "people.xlsx"}
	}`, buf.String())
}
