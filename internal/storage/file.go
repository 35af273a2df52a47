package storage

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/neptune/internal/model"
)

var ErrMalformed = errors.New("storage: malformed document")

const backupStampLayout = "20060102T150405Z"

type StoreOption func(*FileStore)

func WithLogger(logger *log.Logger) StoreOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBackupCorrupt controls whether Load copies a malformed file aside before
// substituting the empty document.
func WithBackupCorrupt(enabled bool) StoreOption {
	return func(s *FileStore) {
		s.backupCorrupt = enabled
	}
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// FileStore reads and writes one document file. Writes replace the whole file
// through a temp file and rename.
type FileStore struct {
	path          string
	logger        *log.Logger
	backupCorrupt bool
	now           func() time.Time

	mu      sync.Mutex
	lastSum [sha256.Size]byte
	hasSum  bool
}

func NewFileStore(path string, opts ...StoreOption) *FileStore {
	s := &FileStore{
		path:          path,
		logger:        log.New(io.Discard),
		backupCorrupt: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) Path() string {
	return s.path
}

// Read returns the document on disk. A missing file yields an error matching
// fs.ErrNotExist; bad JSON or a schema violation yields ErrMalformed.
func (s *FileStore) Read() (model.Document, error) {
	doc, _, err := s.read()
	return doc, err
}

func (s *FileStore) read() (model.Document, []byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return model.Document{}, nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	if err := ValidateJSON(raw); err != nil {
		return model.Document{}, raw, fmt.Errorf("%w: %s: %w", ErrMalformed, s.path, err)
	}
	doc, err := model.Decode(raw)
	if err != nil {
		return model.Document{}, raw, fmt.Errorf("%w: %s: %w", ErrMalformed, s.path, err)
	}
	s.remember(raw)
	return doc, raw, nil
}

// Load never fails. A missing file is created holding the empty document; a
// malformed or unreadable one is replaced in memory by the empty document.
func (s *FileStore) Load() model.Document {
	doc, raw, err := s.read()
	switch {
	case err == nil:
		if verr := doc.Validate(); verr != nil {
			s.logger.Warn("document has invalid entries", "path", s.path, "err", verr)
		}
		return doc
	case errors.Is(err, fs.ErrNotExist):
		if cerr := s.createEmpty(); cerr != nil {
			s.logger.Error("create document", "path", s.path, "err", cerr)
		}
		return model.EmptyDocument()
	case errors.Is(err, ErrMalformed):
		s.logger.Warn("malformed document, starting empty", "path", s.path, "err", err)
		if s.backupCorrupt {
			if backup, berr := s.backup(raw); berr != nil {
				s.logger.Error("back up malformed document", "path", s.path, "err", berr)
			} else {
				s.logger.Info("malformed document backed up", "backup", backup)
			}
		}
		return model.EmptyDocument()
	default:
		s.logger.Error("read document", "path", s.path, "err", err)
		return model.EmptyDocument()
	}
}

// Write serializes doc and replaces the file in one rename.
func (s *FileStore) Write(doc model.Document) error {
	payload, err := model.Encode(doc)
	if err != nil {
		return fmt.Errorf("storage: encode document: %w", err)
	}
	payload = append(payload, '\n')
	if err := ensureDir(s.path); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("storage: replace %s: %w", s.path, err)
	}
	s.remember(payload)
	return nil
}

// Save is Write with the error logged instead of returned.
func (s *FileStore) Save(doc model.Document) bool {
	if err := s.Write(doc); err != nil {
		s.logger.Error("save document", "path", s.path, "err", err)
		return false
	}
	return true
}

// Unchanged reports whether the file still holds the bytes this store last
// read or wrote.
func (s *FileStore) Unchanged() bool {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasSum && sum == s.lastSum
}

func (s *FileStore) remember(raw []byte) {
	sum := sha256.Sum256(raw)
	s.mu.Lock()
	s.lastSum = sum
	s.hasSum = true
	s.mu.Unlock()
}

// createEmpty links a fully written temp file into place so a file created
// concurrently by someone else is never clobbered.
func (s *FileStore) createEmpty() error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	payload, err := model.Encode(model.EmptyDocument())
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	tmp := s.path + ".new"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("storage: write temp file: %w", err)
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, s.path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		if _, statErr := os.Stat(s.path); statErr == nil {
			return nil
		}
		if err := os.Rename(tmp, s.path); err != nil {
			return fmt.Errorf("storage: create %s: %w", s.path, err)
		}
	}
	s.remember(payload)
	return nil
}

func (s *FileStore) backup(raw []byte) (string, error) {
	if raw == nil {
		return "", errors.New("storage: nothing to back up")
	}
	name := s.path + ".corrupt-" + s.now().UTC().Format(backupStampLayout)
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create directory %s: %w", dir, err)
	}
	return nil
}
