// Package fakerand provides a predictable Random implementation for testing.
package fakerand

import (
	"sync"

	"github.com/ThK-Systems/galangal/internal/ports"
)

// Random is a fake random generator that produces predictable output.
type Random struct {
	mu       sync.Mutex
	sequence []byte
	offset   int
}

// New creates a new fake random with the given sequence. A nil sequence
// defaults to sequential bytes 0-255.
func New(sequence []byte) *Random {
	if sequence == nil {
		sequence = make([]byte, 256)
		for i := range sequence {
			sequence[i] = byte(i)
		}
	}
	return &Random{sequence: sequence}
}

// NewSequential creates a fake random that returns 0, 1, 2, ..., 255, 0, 1, ...
func NewSequential() *Random {
	return New(nil)
}

// Read fills b with predictable bytes from the sequence.
func (r *Random) Read(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range b {
		b[i] = r.sequence[r.offset%len(r.sequence)]
		r.offset++
	}
	return len(b), nil
}

// Ensure Random implements ports.Random.
var _ ports.Random = (*Random)(nil)
