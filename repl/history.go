// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package repl

import (
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-a2a/llmkernel/kernelerr"
)

// MaxHistoryEntries bounds a History's retained line count; the oldest
// entry is dropped once a new one would exceed it.
const MaxHistoryEntries = 1000

// History is a bounded ring buffer of submitted lines with a navigation
// cursor. Add, Prev, and Next are all O(1): Add never shifts existing
// entries (it overwrites the oldest slot once full), and Prev/Next only
// move an integer offset from the newest entry.
type History struct {
	mu      sync.Mutex
	entries [MaxHistoryEntries]string
	start   int // ring index of the oldest entry
	count   int
	cursor  int // 0 = not browsing; 1..count = that many entries back from newest
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Add appends line, skipping it if it duplicates the immediately
// preceding entry, and resets the navigation cursor back to "not
// browsing" the way inserting a new line always does.
func (h *History) Add(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count > 0 && h.at(h.count-1) == line {
		h.cursor = 0
		return
	}

	if h.count < MaxHistoryEntries {
		h.entries[(h.start+h.count)%MaxHistoryEntries] = line
		h.count++
	} else {
		h.entries[h.start] = line
		h.start = (h.start + 1) % MaxHistoryEntries
	}
	h.cursor = 0
}

// at returns the i'th oldest-to-newest logical entry (0 = oldest).
func (h *History) at(i int) string {
	return h.entries[(h.start+i)%MaxHistoryEntries]
}

// Prev moves the cursor one step further into the past and returns the
// entry there. ok is false if already at the oldest entry (or history is
// empty).
func (h *History) Prev() (line string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= h.count {
		return "", false
	}
	h.cursor++
	return h.at(h.count - h.cursor), true
}

// Next moves the cursor one step toward the present. Returning to cursor
// 0 (not browsing) yields an empty line with ok true, matching a
// terminal's usual down-arrow-past-the-newest behavior.
func (h *History) Next() (line string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	if h.cursor == 0 {
		return "", true
	}
	return h.at(h.count - h.cursor), true
}

// ResetCursor returns navigation to "not browsing" without touching the
// stored entries.
func (h *History) ResetCursor() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cursor = 0
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Entries returns every stored entry, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, h.count)
	for i := range out {
		out[i] = h.at(i)
	}
	return out
}

// Save writes every entry to path, one per line.
func (h *History) Save(path string) error {
	entries := h.Entries()
	data := []byte(strings.Join(entries, "\n"))
	if len(entries) > 0 {
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	return nil
}

// Load reads path and replaces the in-memory history with its contents.
// A history file that is not valid UTF-8 — the signature of a
// partially-truncated write landing mid-rune — is discarded rather than
// treated as an error: Load returns nil and leaves the in-memory history
// unchanged, so the caller's REPL session continues uninterrupted.
func (h *History) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return kernelerr.New(kernelerr.Internal, err)
	}

	if !utf8.Valid(data) {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.start, h.count, h.cursor = 0, 0, 0

	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	for _, line := range strings.Split(text, "\n") {
		if h.count > 0 && h.at(h.count-1) == line {
			continue
		}
		if h.count < MaxHistoryEntries {
			h.entries[(h.start+h.count)%MaxHistoryEntries] = line
			h.count++
		} else {
			h.entries[h.start] = line
			h.start = (h.start + 1) % MaxHistoryEntries
		}
	}
	return nil
}
