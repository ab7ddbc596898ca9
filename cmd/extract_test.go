package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docnorm/pkg/config"
	"docnorm/pkg/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.TempDirEnv, t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		outputFile, resumeFile = "", ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func reportLines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		lines = append(lines, m)
	}
	return lines
}

func TestExtractWord_Batch(t *testing.T) {
	dir := t.TempDir()
	memo := filepath.Join(dir, "memo.docx")
	copyOf := filepath.Join(dir, "copy.docx")
	missing := filepath.Join(dir, "missing.docx")
	require.NoError(t, os.WriteFile(memo, testutil.Docx("Quarterly", "Memo"), 0644))
	require.NoError(t, os.WriteFile(copyOf, testutil.Docx("Quarterly", "Memo"), 0644))

	out, err := execute(t, "extract", "word", "--parallel", "1", memo, copyOf, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 locations failed")

	lines := reportLines(t, out)
	require.Len(t, lines, 2, out)

	first := lines[0]["response"].(map[string]interface{})
	assert.Equal(t, memo, lines[0]["location"])
	assert.Equal(t, "Quarterly\nMemo", first["text"])

	second := lines[1]["response"].(map[string]interface{})
	assert.Equal(t, missing, lines[1]["location"])
	assert.Equal(t, "RequestError", second["error"].(map[string]interface{})["kind"])
}

func TestExtractExcel_OutputAndResume(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "people.xlsx")
	require.NoError(t, os.WriteFile(book, testutil.Workbook(
		testutil.SheetSpec{Name: "People", Cells: map[string]interface{}{"A1": "Name", "A2": "Ann"}},
	), 0644))
	report := filepath.Join(dir, "report.jsonl")
	resume := filepath.Join(dir, "resume.json")

	_, err := execute(t, "extract", "excel", "-o", report, "--resume", resume, book)
	require.NoError(t, err)

	content, err := os.ReadFile(report)
	require.NoError(t, err)
	lines := reportLines(t, string(content))
	require.Len(t, lines, 1)
	resp := lines[0]["response"].(map[string]interface{})
	assert.Equal(t, "excel", resp["kind"])
	assert.Len(t, resp["sheets"], 1)

	_, err = execute(t, "extract", "excel", "-o", report, "--resume", resume, book)
	require.NoError(t, err)
	content, err = os.ReadFile(report)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(content)), "completed locations are skipped")
}
