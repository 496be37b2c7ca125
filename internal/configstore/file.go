package configstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pfrederiksen/sheet-countdown/internal/logger"
)

// FileName is the name of the file holding the row under the data directory.
const FileName = "row"

// FileStore persists the row as a decimal string in a file.
type FileStore struct {
	dataDir string
}

// NewFileStore creates a FileStore rooted at dataDir, creating the directory
// if needed. A leading "~/" is expanded to the user's home directory.
func NewFileStore(dataDir string) (*FileStore, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileStore{dataDir: dataDir}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return filepath.Join(s.dataDir, FileName)
}

// Get returns the persisted row, or DefaultRow if nothing usable is stored.
func (s *FileStore) Get() int {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Reading stored row failed, using default", logger.Fields{
				"path": s.Path(),
				"err":  err.Error(),
			})
		}
		return DefaultRow
	}
	return ParseRow(string(data))
}

// Set overwrites the persisted row. The file is replaced atomically so a
// concurrent Get never sees a partial value.
func (s *FileStore) Set(row int) error {
	if err := validate(row); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dataDir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.WriteString(strconv.Itoa(row)); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing row: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing row file: %w", err)
	}

	logger.Debug("Stored row", logger.Fields{"row": row, "path": s.Path()})
	return nil
}

// Watch calls onChange with the current row whenever the backing file is
// created, written or replaced, until ctx is canceled. Bursts of events
// within debounce are collapsed into one call.
func (s *FileStore) Watch(ctx context.Context, debounce time.Duration, onChange func(row int)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close() // nolint:errcheck

	// Watch the directory: Set replaces the file by rename, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(s.dataDir); err != nil {
		return fmt.Errorf("watching %s: %w", s.dataDir, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	last := s.Get()

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != FileName {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			row := s.Get()
			if row == last {
				continue
			}
			last = row
			logger.Info("Stored row changed on disk", logger.Fields{"row": row})
			onChange(row)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Row file watcher error", logger.Fields{"err": err.Error()})
		}
	}
}
