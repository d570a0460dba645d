package scan

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Settings scope tiers.
const (
	ScopeUser         = "user"
	ScopeProject      = "project"
	ScopeProjectLocal = "project-local"
)

// Location identifies where a token was found. It is a closed sum:
// SettingsLocation or DiscussionLocation. Modeling it as a sealed interface
// keeps illegal combinations (a settings match carrying a session id)
// unrepresentable. Both variants marshal with a "source" discriminator.
type Location interface {
	Source() string
	isLocation()
}

// SettingsLocation points into a settings document.
type SettingsLocation struct {
	Scope       string `json:"scope"`
	ProjectPath string `json:"projectPath,omitempty"`
	SettingsKey string `json:"settingsKey"`
}

func (SettingsLocation) Source() string { return "settings" }
func (SettingsLocation) isLocation()   {}

// MarshalJSON tags the variant with its source.
func (l SettingsLocation) MarshalJSON() ([]byte, error) {
	type alias SettingsLocation
	return json.Marshal(struct {
		SourceTag string `json:"source"`
		alias
	}{SourceTag: l.Source(), alias: alias(l)})
}

// DiscussionLocation points into a transcript file. The project directory
// name is kept in its encoded form; decoding to a real path is deferred to
// the caller that needs it.
type DiscussionLocation struct {
	EncodedProjectDir string `json:"encodedProjectDir"`
	ProjectName       string `json:"projectName"`
	SessionID         string `json:"sessionId"`
	FilePath          string `json:"filePath"`
}

func (DiscussionLocation) Source() string { return "discussion" }
func (DiscussionLocation) isLocation()   {}

// MarshalJSON tags the variant with its source.
func (l DiscussionLocation) MarshalJSON() ([]byte, error) {
	type alias DiscussionLocation
	return json.Marshal(struct {
		SourceTag string `json:"source"`
		alias
	}{SourceTag: l.Source(), alias: alias(l)})
}

// UnmarshalLocation decodes a location by its "source" discriminator.
func UnmarshalLocation(data []byte) (Location, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Source {
	case "settings":
		var loc SettingsLocation
		if err := json.Unmarshal(data, &loc); err != nil {
			return nil, err
		}
		return loc, nil
	case "discussion":
		var loc DiscussionLocation
		if err := json.Unmarshal(data, &loc); err != nil {
			return nil, err
		}
		return loc, nil
	default:
		return nil, fmt.Errorf("unknown location source %q", env.Source)
	}
}

// TokenMatch is a single credential finding. FullPattern holds the raw
// matched substring; it is persisted to the (0600) cache but must never be
// displayed, only RedactedValue is.
type TokenMatch struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	Remediation   string   `json:"remediation"`
	RedactedValue string   `json:"redactedValue"`
	FullPattern   string   `json:"fullPattern"`
	Location      Location `json:"location"`
}

// NewMatchID returns a fresh match identifier.
func NewMatchID() string { return uuid.NewString() }

// UnmarshalJSON decodes the location variant by its "source" discriminator.
// Marshaling needs no custom code: the variants tag themselves.
func (m *TokenMatch) UnmarshalJSON(data []byte) error {
	type alias TokenMatch
	var raw struct {
		alias
		Location json.RawMessage `json:"location"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = TokenMatch(raw.alias)
	loc, err := UnmarshalLocation(raw.Location)
	if err != nil {
		return err
	}
	m.Location = loc
	return nil
}
