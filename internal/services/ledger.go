package services

import (
	"fmt"

	"github.com/google/uuid"
)

// LedgerEntry is an element of an ordered, id-addressable sub-collection.
type LedgerEntry[T any] interface {
	EntryID() string
	WithEntryID(id string) T
}

// PrependEntry assigns entry a fresh id that no existing entry uses and
// inserts it at the front, returning the new ledger and the stored entry.
func PrependEntry[T LedgerEntry[T]](entries []T, entry T) ([]T, T) {
	taken := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		taken[e.EntryID()] = struct{}{}
	}

	id := uuid.NewString()
	for {
		if _, dup := taken[id]; !dup {
			break
		}
		id = uuid.NewString()
	}

	stored := entry.WithEntryID(id)
	out := make([]T, 0, len(entries)+1)
	out = append(out, stored)
	out = append(out, entries...)
	return out, stored
}

// RemoveEntry drops the first entry with the given id. An unknown id returns
// ErrRecordNotFound and leaves the ledger as it was.
func RemoveEntry[T LedgerEntry[T]](entries []T, id string) ([]T, error) {
	for i, e := range entries {
		if e.EntryID() != id {
			continue
		}
		out := make([]T, 0, len(entries)-1)
		out = append(out, entries[:i]...)
		out = append(out, entries[i+1:]...)
		return out, nil
	}
	return entries, fmt.Errorf("entry %q: %w", id, ErrRecordNotFound)
}
