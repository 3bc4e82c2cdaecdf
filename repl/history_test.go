// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package repl_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/repl"
)

func TestHistorySkipsConsecutiveDuplicates(t *testing.T) {
	h := repl.NewHistory()
	h.Add("a")
	h.Add("a")
	h.Add("b")
	assert.Equal(t, []string{"a", "b"}, h.Entries())
}

func TestHistoryPrevNextNavigation(t *testing.T) {
	h := repl.NewHistory()
	h.Add("first")
	h.Add("second")
	h.Add("third")

	line, ok := h.Prev()
	require.True(t, ok)
	assert.Equal(t, "third", line)

	line, ok = h.Prev()
	require.True(t, ok)
	assert.Equal(t, "second", line)

	line, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "third", line)

	line, ok = h.Next()
	require.True(t, ok)
	assert.Equal(t, "", line)

	_, ok = h.Next()
	assert.False(t, ok)
}

func TestHistoryPrevStopsAtOldest(t *testing.T) {
	h := repl.NewHistory()
	h.Add("only")

	_, ok := h.Prev()
	require.True(t, ok)
	_, ok = h.Prev()
	assert.False(t, ok)
}

func TestHistoryAddResetsCursor(t *testing.T) {
	h := repl.NewHistory()
	h.Add("a")
	h.Add("b")
	h.Prev()

	h.Add("c")
	line, ok := h.Prev()
	require.True(t, ok)
	assert.Equal(t, "c", line)
}

func TestHistoryDropsOldestPastCapacity(t *testing.T) {
	h := repl.NewHistory()
	for i := 0; i < repl.MaxHistoryEntries+10; i++ {
		h.Add(strconv.Itoa(i))
	}
	assert.Equal(t, repl.MaxHistoryEntries, h.Len())
	entries := h.Entries()
	assert.Equal(t, "10", entries[0])
	assert.Equal(t, strconv.Itoa(repl.MaxHistoryEntries+9), entries[len(entries)-1])
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")

	h := repl.NewHistory()
	h.Add("one")
	h.Add("two")
	require.NoError(t, h.Save(path))

	loaded := repl.NewHistory()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, []string{"one", "two"}, loaded.Entries())
}

func TestHistoryLoadDiscardsInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history")
	require.NoError(t, os.WriteFile(path, []byte("one\n\xff\xfe"), 0o600))

	h := repl.NewHistory()
	h.Add("preexisting")
	require.NoError(t, h.Load(path))

	assert.Equal(t, []string{"preexisting"}, h.Entries(), "a corrupt file must be discarded, leaving the in-memory history untouched")
}

func TestHistoryLoadMissingFileIsNotAnError(t *testing.T) {
	h := repl.NewHistory()
	err := h.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NoError(t, err)
}
