// Package store persists named profiles as a single JSON document at a
// global, per-user location. The document is always written whole via a
// temp-file rename, so a crash mid-write cannot leave a half-written store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
	"github.com/Zila-itc/vide-code-rules/internal/rules/storage"
)

const (
	// ConfigPathEnv overrides the default store document location.
	ConfigPathEnv = "VIDE_RULES_CONFIG"

	appDirName    = "vide-code-rules"
	storeFileName = "profiles.json"

	documentVersion = 1
)

// Document is the persisted store layout. Fields are only ever added within
// a major version, keeping the document readable by older builds.
type Document struct {
	Version   int                        `json:"version"`
	UpdatedAt time.Time                  `json:"updatedAt"`
	Profiles  map[string]*domain.Profile `json:"profiles"`
}

// Store is the durable mapping from profile name to profile record. All
// operations are serialized by an in-process mutex; last writer wins at the
// mapping level.
type Store struct {
	mu      sync.Mutex
	storage *storage.Storage
	path    string
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// New creates a Store persisting to path.
func New(st *storage.Storage, path string, logger zerolog.Logger) *Store {
	return &Store{
		storage: st,
		path:    path,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		logger:  logger,
	}
}

// SetNow overrides the clock for testing.
func (s *Store) SetNow(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// Path returns the store document location.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath resolves the store document location: the ConfigPathEnv
// override when set, otherwise the XDG config home.
func DefaultPath() string {
	if custom := os.Getenv(ConfigPathEnv); custom != "" {
		return custom
	}
	return filepath.Join(xdg.ConfigHome, appDirName, storeFileName)
}

// Load reads the persisted document. An absent document initializes an
// empty mapping and persists it; a malformed one fails with ErrCorruptStore
// so the caller can surface it instead of silently discarding profiles.
func (s *Store) Load() (map[string]*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Profiles, nil
}

func (s *Store) load() (*Document, error) {
	exists, err := s.storage.Exists(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile store: %w", err)
	}
	if !exists {
		doc := &Document{
			Version:  documentVersion,
			Profiles: map[string]*domain.Profile{},
		}
		if err := s.save(doc); err != nil {
			return nil, err
		}
		s.logger.Info().Str("path", s.path).Msg("initialized empty profile store")
		return doc, nil
	}

	data, err := s.storage.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile store: %w", err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStore, s.path, err)
	}
	if doc.Profiles == nil {
		doc.Profiles = map[string]*domain.Profile{}
	}
	return doc, nil
}

// Save persists the full mapping in one step.
func (s *Store) Save(all map[string]*domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(&Document{Version: documentVersion, Profiles: all})
}

func (s *Store) save(doc *Document) error {
	doc.UpdatedAt = s.now()
	if doc.Version == 0 {
		doc.Version = documentVersion
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize profile store: %w", err)
	}
	data = append(data, '\n')
	if err := s.storage.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist profile store: %w", err)
	}
	return nil
}

// Get returns the stored profile with the given name.
func (s *Store) Get(name string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	profile, ok := doc.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, name)
	}
	return profile.Clone(), nil
}

// Names returns all stored profile names, sorted lexicographically.
func (s *Store) Names() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc.Profiles))
	for name := range doc.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Create stores a new profile with create-only semantics: an existing name
// fails with ErrDuplicateName.
func (s *Store) Create(profile *domain.Profile) error {
	return s.put(profile, true)
}

// Upsert stores a profile, overwriting any existing record with the same
// name. The original CreatedAt is preserved on overwrite.
func (s *Store) Upsert(profile *domain.Profile) error {
	return s.put(profile, false)
}

func (s *Store) put(profile *domain.Profile, createOnly bool) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}

	now := s.now()
	record := profile.Clone()
	if existing, ok := doc.Profiles[record.Name]; ok {
		if createOnly {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateName, record.Name)
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	if record.ID == "" {
		record.ID = s.newID()
	}
	record.UpdatedAt = now

	doc.Profiles[record.Name] = record
	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Debug().Str("profile", record.Name).Str("tool", string(record.AITool)).Msg("profile stored")
	return nil
}

// Remove deletes the named profile. It returns true if a record existed and
// was removed, false if absent (not an error).
func (s *Store) Remove(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Profiles[name]; !ok {
		return false, nil
	}
	delete(doc.Profiles, name)
	if err := s.save(doc); err != nil {
		return false, err
	}
	s.logger.Debug().Str("profile", name).Msg("profile removed")
	return true, nil
}

// Rename moves a profile to a new name in one save: create-only on the new
// name, then delete of the old. The record keeps its ID and CreatedAt.
func (s *Store) Rename(oldName, newName string) error {
	trimmed, err := domain.ValidateName(newName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	profile, ok := doc.Profiles[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProfileNotFound, oldName)
	}
	if _, exists := doc.Profiles[trimmed]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateName, trimmed)
	}

	renamed := profile.Clone()
	renamed.Name = trimmed
	renamed.UpdatedAt = s.now()
	doc.Profiles[trimmed] = renamed
	delete(doc.Profiles, oldName)
	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Debug().Str("from", oldName).Str("to", trimmed).Msg("profile renamed")
	return nil
}

// IsCorrupt reports whether err indicates an unreadable store document.
func IsCorrupt(err error) bool {
	return errors.Is(err, domain.ErrCorruptStore)
}
