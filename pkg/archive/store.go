// Package archive persists processed interactions as content-addressed JSON
// documents keyed by a fingerprint of the request.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/orchestrator/pkg/schema"
)

// ErrNotFound is returned when no record exists for a fingerprint.
var ErrNotFound = errors.New("archive record not found")

// Record is one archived interaction. Repeating a request updates the
// record stored under the same fingerprint.
type Record struct {
	ID          string          `json:"id"`
	Fingerprint string          `json:"fingerprint"`
	Task        schema.Task     `json:"task"`
	Plan        schema.Plan     `json:"plan"`
	Envelope    schema.Envelope `json:"envelope"`
	Count       int             `json:"count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Store manages the content-addressed archive.
type Store struct {
	BasePath string

	mu     sync.Mutex
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an archive rooted at basePath, defaulting to
// ~/.orchestrator/archive.
func NewStore(basePath string, opts ...Option) (*Store, error) {
	if basePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Join(home, ".orchestrator", "archive")
	}

	if err := os.MkdirAll(filepath.Join(basePath, "objects"), 0755); err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	s := &Store{
		BasePath: basePath,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fingerprint hashes the canonical form of a request: lower-cased text with
// collapsed whitespace, plus its language and intent.
func Fingerprint(task schema.Task) string {
	canonical := struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Intent   string `json:"intent"`
	}{
		Text:     strings.Join(strings.Fields(strings.ToLower(task.Text)), " "),
		Language: string(task.Language),
		Intent:   string(task.Intent),
	}
	data, _ := json.Marshal(canonical)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Save stores the interaction under its fingerprint and returns the record.
func (s *Store) Save(task schema.Task, plan schema.Plan, env schema.Envelope) (*Record, error) {
	fp := Fingerprint(task)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, err := s.load(fp)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("archive record unreadable, replacing", zap.String("fingerprint", fp), zap.Error(err))
		}
		rec = &Record{
			ID:          uuid.NewString(),
			Fingerprint: fp,
			CreatedAt:   now,
		}
	}

	rec.Task = task
	rec.Plan = plan
	rec.Envelope = env
	rec.Count++
	rec.UpdatedAt = now

	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Load returns the record stored under fingerprint.
func (s *Store) Load(fingerprint string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(fingerprint)
}

// Recent returns up to n records, most recently updated first.
func (s *Store) Recent(n int) ([]*Record, error) {
	if n <= 0 {
		return nil, nil
	}
	records, err := s.scan(func(*Record) bool { return true })
	if err != nil {
		return nil, err
	}
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// Search returns records whose request or response contains query,
// case-insensitively, most recently updated first.
func (s *Store) Search(query string) ([]*Record, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	return s.scan(func(r *Record) bool {
		return strings.Contains(strings.ToLower(r.Task.Text), q) ||
			strings.Contains(strings.ToLower(r.Envelope.Response), q)
	})
}

func (s *Store) path(fingerprint string) (string, error) {
	if len(fingerprint) < 3 || strings.ContainsAny(fingerprint, `/\.`) {
		return "", fmt.Errorf("invalid fingerprint %q", fingerprint)
	}
	return filepath.Join(s.BasePath, "objects", fingerprint[:2], fingerprint+".json"), nil
}

func (s *Store) load(fingerprint string) (*Record, error) {
	path, err := s.path(fingerprint)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", fingerprint, err)
	}
	return &rec, nil
}

func (s *Store) write(rec *Record) error {
	path, err := s.path(rec.Fingerprint)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".record-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) scan(keep func(*Record) bool) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Record
	root := filepath.Join(s.BasePath, "objects")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			s.logger.Warn("skipping unreadable archive record", zap.String("path", path), zap.Error(err))
			return nil
		}
		if keep(&rec) {
			out = append(out, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
