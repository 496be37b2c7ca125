// Package configstore persists the spreadsheet row selected by the user.
//
// The store holds a single key whose value is the decimal row number. Reads never
// fail: an absent, unreadable, non-numeric or non-positive value yields DefaultRow.
// FileStore keeps the value in a small file under the data directory
// (default ~/.local/share/sheet-countdown/row) so it survives restarts.
package configstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DefaultRow is the first data row below the header.
const DefaultRow = 2

// ErrInvalidRow is returned by Set for rows below 1.
var ErrInvalidRow = errors.New("row must be a positive integer")

// Store reads and writes the selected row.
type Store interface {
	Get() int
	Set(row int) error
}

// ParseRow interprets a persisted or user supplied row value, falling back to
// DefaultRow when it is absent, not a number or below 1.
func ParseRow(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 {
		return DefaultRow
	}
	return n
}

func validate(row int) error {
	if row < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	return nil
}

// MemoryStore keeps the row in memory. The zero value is ready to use.
type MemoryStore struct {
	mu    sync.RWMutex
	value string
}

// NewMemoryStore creates an in-memory store, optionally seeded with a raw value.
func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{value: initial}
}

func (m *MemoryStore) Get() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ParseRow(m.value)
}

func (m *MemoryStore) Set(row int) error {
	if err := validate(row); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = strconv.Itoa(row)
	return nil
}
