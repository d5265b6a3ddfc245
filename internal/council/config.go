package council

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/Iron-Ham/hivecouncil/internal/errors"
)

// Config is the session configuration sent with the start request.
type Config struct {
	Prompt       string       `json:"prompt"`
	Members      []Member     `json:"council_members"`
	Iterations   int          `json:"iterations"`
	Template     string       `json:"template,omitempty"`
	Preset       string       `json:"preset,omitempty"`
	SystemPrompt string       `json:"system_prompt,omitempty"`
	Autopilot    bool         `json:"autopilot"`
	Files        []Attachment `json:"files,omitempty"`
}

// Limits are the caller-side bounds a Config must respect.
type Limits struct {
	MaxPromptLength int
	MaxIterations   int
	MaxMembers      int
	MaxFileBytes    int64
}

// DefaultLimits returns the limits the remote service enforces.
func DefaultLimits() Limits {
	return Limits{
		MaxPromptLength: 50000,
		MaxIterations:   10,
		MaxMembers:      10,
		MaxFileBytes:    10 * 1024 * 1024,
	}
}

// Chair returns the chair member. With no explicit chair the first member
// chairs the council.
func (c Config) Chair() (Member, bool) {
	for _, m := range c.Members {
		if m.IsChair {
			return m, true
		}
	}
	if len(c.Members) > 0 {
		return c.Members[0], true
	}
	return Member{}, false
}

// Validate checks c against l and returns an *errors.InvalidConfigurationError
// listing every problem found, or nil.
func (c Config) Validate(l Limits) error {
	var problems []errors.FieldProblem

	problems = append(problems, c.validatePrompt(l)...)
	problems = append(problems, c.validateIterations(l)...)
	problems = append(problems, c.validateMembers(l)...)
	problems = append(problems, c.validateChoices()...)
	problems = append(problems, c.validateFiles(l)...)

	if len(problems) > 0 {
		return errors.NewInvalidConfigurationError(problems...)
	}
	return nil
}

func (c Config) validatePrompt(l Limits) []errors.FieldProblem {
	if strings.TrimSpace(c.Prompt) == "" {
		return []errors.FieldProblem{{Field: "prompt", Message: "must not be empty"}}
	}
	if n := utf8.RuneCountInString(c.Prompt); l.MaxPromptLength > 0 && n > l.MaxPromptLength {
		return []errors.FieldProblem{{
			Field:   "prompt",
			Value:   n,
			Message: fmt.Sprintf("must be at most %d characters", l.MaxPromptLength),
		}}
	}
	return nil
}

func (c Config) validateIterations(l Limits) []errors.FieldProblem {
	if c.Iterations < 1 {
		return []errors.FieldProblem{{Field: "iterations", Value: c.Iterations, Message: "must be at least 1"}}
	}
	if l.MaxIterations > 0 && c.Iterations > l.MaxIterations {
		return []errors.FieldProblem{{
			Field:   "iterations",
			Value:   c.Iterations,
			Message: fmt.Sprintf("must be at most %d", l.MaxIterations),
		}}
	}
	return nil
}

func (c Config) validateMembers(l Limits) []errors.FieldProblem {
	var problems []errors.FieldProblem

	if len(c.Members) == 0 {
		problems = append(problems, errors.FieldProblem{Field: "council_members", Message: "at least one member is required"})
	}
	if l.MaxMembers > 0 && len(c.Members) > l.MaxMembers {
		problems = append(problems, errors.FieldProblem{
			Field:   "council_members",
			Value:   len(c.Members),
			Message: fmt.Sprintf("at most %d members are allowed", l.MaxMembers),
		})
	}

	chairs := 0
	for i, m := range c.Members {
		field := fmt.Sprintf("council_members[%d]", i)
		if strings.TrimSpace(m.Provider) == "" {
			problems = append(problems, errors.FieldProblem{Field: field + ".provider", Message: "must not be empty"})
		}
		if strings.TrimSpace(m.Model) == "" {
			problems = append(problems, errors.FieldProblem{Field: field + ".model", Message: "must not be empty"})
		}
		if m.IsChair {
			chairs++
		}
	}
	if chairs > 1 {
		problems = append(problems, errors.FieldProblem{
			Field:   "council_members",
			Value:   chairs,
			Message: "at most one member may be chair",
		})
	}

	return problems
}

func (c Config) validateChoices() []errors.FieldProblem {
	var problems []errors.FieldProblem
	if c.Template != "" && !slices.Contains(Templates(), c.Template) {
		problems = append(problems, errors.FieldProblem{
			Field:   "template",
			Value:   c.Template,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(Templates(), ", ")),
		})
	}
	if c.Preset != "" && !slices.Contains(Presets(), c.Preset) {
		problems = append(problems, errors.FieldProblem{
			Field:   "preset",
			Value:   c.Preset,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(Presets(), ", ")),
		})
	}
	return problems
}

func (c Config) validateFiles(l Limits) []errors.FieldProblem {
	var problems []errors.FieldProblem
	for i, f := range c.Files {
		field := fmt.Sprintf("files[%d]", i)
		if f.Name == "" {
			problems = append(problems, errors.FieldProblem{Field: field + ".name", Message: "must not be empty"})
		}
		if l.MaxFileBytes > 0 && int64(len(f.Data)) > l.MaxFileBytes {
			problems = append(problems, errors.FieldProblem{
				Field:   field,
				Value:   len(f.Data),
				Message: fmt.Sprintf("must be at most %d bytes", l.MaxFileBytes),
			})
		}
	}
	return problems
}
