package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicatorSeen(t *testing.T) {
	d := NewDeduplicator()

	dup, first := d.Seen("a.pdf", []byte("%PDF-1.4 one"))
	assert.False(t, dup)
	assert.Equal(t, "a.pdf", first)

	dup, _ = d.Seen("b.pdf", []byte("%PDF-1.4 two"))
	assert.False(t, dup)

	dup, first = d.Seen("copy-of-a.pdf", []byte("%PDF-1.4 one"))
	assert.True(t, dup)
	assert.Equal(t, "a.pdf", first)
}
