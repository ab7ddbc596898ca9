package extractor

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docnorm/pkg/failure"
	"docnorm/pkg/testutil"
)

func TestWordExtract_Docx(t *testing.T) {
	e := NewWordExtractor(zerolog.Nop())

	text, err := e.Extract(context.Background(), testutil.Docx("Quarterly report", "Revenue grew by 4%."))
	require.NoError(t, err)

	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' })
	assert.Equal(t, []string{"Quarterly report", "Revenue grew by 4%."}, lines)
	assert.NotContains(t, text, "<w:")
}

func TestWordExtract_RejectsOtherPayloads(t *testing.T) {
	e := NewWordExtractor(zerolog.Nop())

	payloads := map[string][]byte{
		"plain text": []byte("hello"),
		"pdf":        testutil.PDF("hello"),
		"workbook":   testutil.Workbook(testutil.SheetSpec{Name: "S", Cells: map[string]interface{}{"A1": 1}}),
		"empty":      nil,
	}
	for name, payload := range payloads {
		_, err := e.Extract(context.Background(), payload)
		require.Error(t, err, name)
		assert.Equal(t, failure.KindWord, failure.KindOf(err, ""), name)
	}
}
