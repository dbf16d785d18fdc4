package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
)

// FileStore persists balances as a single JSON object {"user_id": balance}.
// Mutations hold an exclusive lock on a sibling ".lock" file for the whole
// read-modify-write, so every FileStore on the same path serializes with the
// others, in this process or another. Saves go through a temp file and rename
// so readers never see a truncated document.
type FileStore struct {
	path     string
	lockPath string
	mu       sync.Mutex
}

// NewFileStore opens the document at path, creating an empty one if absent.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	s := &FileStore{path: path, lockPath: path + ".lock"}
	err := s.withLock(func() error {
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return s.write(map[string]float64{})
		}
		if err != nil {
			return fmt.Errorf("stat ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, userID string) (decimal.Decimal, error) {
	balances, err := s.read()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(balances[userID]), nil
}

func (s *FileStore) All(_ context.Context) (map[string]decimal.Decimal, error) {
	balances, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(balances))
	for id, bal := range balances {
		out[id] = decimal.NewFromFloat(bal)
	}
	return out, nil
}

func (s *FileStore) Mutate(_ context.Context, userID string, apply func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	var next decimal.Decimal
	err := s.withLock(func() error {
		balances, err := s.read()
		if err != nil {
			return err
		}
		next = apply(decimal.NewFromFloat(balances[userID]))
		balances[userID], _ = next.Float64()
		return s.write(balances)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (s *FileStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("lock %s: %w", s.lockPath, err)
	}
	defer unlockFile(f) // nolint:errcheck

	return fn()
}

func (s *FileStore) read() (map[string]float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]float64)
	if len(data) == 0 {
		return balances, nil
	}
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return balances, nil
}

func (s *FileStore) write(balances map[string]float64) error {
	payload, err := json.MarshalIndent(balances, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".balances-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
