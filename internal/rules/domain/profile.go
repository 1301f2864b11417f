package domain

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Zila-itc/vide-code-rules/internal/rules/catalog"
)

// FileContent is the payload written to one relative path when a profile is
// applied. Exactly one of Text or JSON should be set: Text is written
// verbatim, JSON is a structured value re-serialized with stable two-space
// indentation.
type FileContent struct {
	Text string          `json:"text,omitempty"`
	JSON json.RawMessage `json:"json,omitempty"`
}

// Render returns the bytes to write for this content.
func (c FileContent) Render() ([]byte, error) {
	if len(c.JSON) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, c.JSON, "", "  "); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	return []byte(c.Text), nil
}

// Profile is a named, persisted bundle describing one AI tool's
// configuration files. Name is the store key and is immutable after
// creation except through an explicit rename.
type Profile struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	AITool      catalog.ToolID         `json:"aiTool"`
	Files       map[string]FileContent `json:"files,omitempty"`
	RulesText   string                 `json:"rulesText,omitempty"`
	IgnoreText  string                 `json:"ignoreText,omitempty"`
	MemoryText  string                 `json:"memoryText,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// Validate checks the profile's name, tool, and file keys. It is called by
// the store on every create and upsert.
func (p *Profile) Validate() error {
	if _, err := ValidateName(p.Name); err != nil {
		return err
	}
	if !catalog.Known(p.AITool) {
		return ErrUnknownTool
	}
	for path := range p.Files {
		if err := ValidateFilePath(path); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate the result without
// aliasing store state.
func (p *Profile) Clone() *Profile {
	out := *p
	if p.Files != nil {
		out.Files = make(map[string]FileContent, len(p.Files))
		for k, v := range p.Files {
			if len(v.JSON) > 0 {
				v.JSON = append(json.RawMessage(nil), v.JSON...)
			}
			out.Files[k] = v
		}
	}
	return &out
}
