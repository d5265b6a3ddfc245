package council

import (
	"github.com/Iron-Ham/hivecouncil/internal/ledger"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// Status represents the lifecycle state of a council session.
type Status string

const (
	// StatusIdle is the baseline before Start and after Clear.
	StatusIdle Status = "idle"

	// StatusRunning indicates events are being applied as they arrive.
	StatusRunning Status = "running"

	// StatusPaused indicates events are queued until resume.
	StatusPaused Status = "paused"

	// StatusCompleted is terminal: the remote reported completion.
	StatusCompleted Status = "completed"

	// StatusError is terminal: the session failed.
	StatusError Status = "error"
)

// Terminal reports whether no further event may change the session.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Active reports whether a stream is being consumed for the session.
func (s Status) Active() bool {
	return s == StatusRunning || s == StatusPaused
}

// ResponseRecord is one committed participant contribution. Records are
// appended to a session and never changed afterwards.
type ResponseRecord struct {
	ID        string        `json:"id"`
	Provider  string        `json:"provider"`
	Model     string        `json:"model,omitempty"`
	Content   string        `json:"content"`
	Iteration int           `json:"iteration"`
	Kind      stream.Kind   `json:"kind"`
	Tokens    stream.Tokens `json:"tokens"`
	Cost      float64       `json:"cost"`
}

// LedgerEntry returns the accounting view of the record.
func (r ResponseRecord) LedgerEntry() ledger.Entry {
	return ledger.Entry{Tokens: r.Tokens, Cost: r.Cost}
}

// Member describes one council participant.
type Member struct {
	ID                string `json:"id,omitempty" yaml:"id"`
	Provider          string `json:"provider" yaml:"provider"`
	Model             string `json:"model" yaml:"model"`
	Role              string `json:"role,omitempty" yaml:"role"`
	Archetype         string `json:"archetype,omitempty" yaml:"archetype"`
	CustomPersonality string `json:"custom_personality,omitempty" yaml:"custom_personality"`
	IsChair           bool   `json:"is_chair" yaml:"chair"`
}

// Attachment is a file sent along with the prompt. Data is base64 encoded on
// the wire by encoding/json.
type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Merge templates understood by the remote service.
const (
	TemplateAnalytical = "analytical"
	TemplateCreative   = "creative"
	TemplateTechnical  = "technical"
	TemplateBalanced   = "balanced"
)

// Model presets understood by the remote service.
const (
	PresetCreative = "creative"
	PresetBalanced = "balanced"
	PresetPrecise  = "precise"
)

// Templates returns the accepted merge template names.
func Templates() []string {
	return []string{TemplateAnalytical, TemplateCreative, TemplateTechnical, TemplateBalanced}
}

// Presets returns the accepted preset names.
func Presets() []string {
	return []string{PresetCreative, PresetBalanced, PresetPrecise}
}
