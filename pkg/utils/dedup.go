package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Deduplicator remembers payload digests seen during one batch run.
type Deduplicator struct {
	mu     sync.Mutex
	hashes map[string]string
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		hashes: make(map[string]string),
	}
}

// Seen hashes payload and records it under name. If an identical payload was
// already recorded it returns true and the name it was first recorded under.
func (d *Deduplicator) Seen(name string, payload []byte) (bool, string) {
	sum := sha256.Sum256(payload)
	hash := hex.EncodeToString(sum[:])

	d.mu.Lock()
	defer d.mu.Unlock()

	if first, ok := d.hashes[hash]; ok {
		return true, first
	}
	d.hashes[hash] = name
	return false, name
}
