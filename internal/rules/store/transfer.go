package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Zila-itc/vide-code-rules/internal/rules/domain"
)

// Format selects the serialization used by Export and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the transfer format from a file extension,
// defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Export writes the current store document to outPath in the given format.
func (s *Store) Export(outPath string, format Format) error {
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	data, err := marshalDocument(doc, format)
	if err != nil {
		return err
	}
	if err := s.storage.WriteFileAtomic(outPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	s.logger.Info().Str("path", outPath).Str("format", string(format)).Msg("profile store exported")
	return nil
}

// Import replaces the store document with the contents of inPath, detecting
// the format from the extension. The incoming document is validated profile
// by profile before anything is written, and the current document is saved
// to a timestamped sibling first so the import can be undone by hand.
func (s *Store) Import(inPath string) error {
	data, err := s.storage.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	doc, err := unmarshalDocument(data, FormatForPath(inPath))
	if err != nil {
		return fmt.Errorf("invalid import file %s: %w", inPath, err)
	}
	for name, profile := range doc.Profiles {
		if profile.Name == "" {
			profile.Name = name
		}
		if profile.Name != name {
			return fmt.Errorf("invalid import file %s: profile keyed %q is named %q", inPath, name, profile.Name)
		}
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("invalid import file %s: profile %q: %w", inPath, name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if exists, err := s.storage.Exists(s.path); err == nil && exists {
		stamp := s.now().UTC().Format("20060102-150405")
		backupPath := fmt.Sprintf("%s.pre-import-%s", s.path, stamp)
		if err := s.storage.CopyFile(s.path, backupPath); err != nil {
			return fmt.Errorf("failed to back up store before import: %w", err)
		}
		s.logger.Info().Str("path", backupPath).Msg("saved pre-import store backup")
	}

	return s.save(doc)
}

func marshalDocument(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		// Round-trip through JSON so the YAML keys match the persisted
		// document's field names rather than Go struct names.
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize store: %w", err)
		}
		var generic map[string]interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("failed to serialize store: %w", err)
		}
		return yaml.Marshal(generic)
	default:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize store: %w", err)
		}
		return append(data, '\n'), nil
	}
}

func unmarshalDocument(data []byte, format Format) (*Document, error) {
	if format == FormatYAML {
		var generic map[string]interface{}
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, err
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return nil, err
		}
		data = converted
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if doc.Profiles == nil {
		doc.Profiles = map[string]*domain.Profile{}
	}
	return doc, nil
}
