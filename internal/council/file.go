package council

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// councilFile is the YAML shape of a saved council definition. Files are
// listed by path and read relative to the council file.
type councilFile struct {
	Prompt       string   `yaml:"prompt"`
	Members      []Member `yaml:"members"`
	Iterations   int      `yaml:"iterations"`
	Template     string   `yaml:"template"`
	Preset       string   `yaml:"preset"`
	SystemPrompt string   `yaml:"system_prompt"`
	Autopilot    bool     `yaml:"autopilot"`
	Files        []string `yaml:"files"`
}

// LoadFile reads a council definition from a YAML file. The result is not
// validated; callers apply their own limits.
//
//	prompt: Compare these two designs
//	iterations: 2
//	template: technical
//	members:
//	  - provider: openai
//	    model: gpt-4o
//	    chair: true
//	  - provider: anthropic
//	    model: claude-sonnet-4
//	files:
//	  - notes.md
func LoadFile(path string, maxFileBytes int64) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read council file: %w", err)
	}

	var cf councilFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse council file %s: %w", path, err)
	}

	cfg := Config{
		Prompt:       cf.Prompt,
		Members:      cf.Members,
		Iterations:   cf.Iterations,
		Template:     cf.Template,
		Preset:       cf.Preset,
		SystemPrompt: cf.SystemPrompt,
		Autopilot:    cf.Autopilot,
	}

	base := filepath.Dir(path)
	for _, name := range cf.Files {
		if !filepath.IsAbs(name) {
			name = filepath.Join(base, name)
		}
		att, err := ReadAttachment(name, maxFileBytes)
		if err != nil {
			return Config{}, err
		}
		cfg.Files = append(cfg.Files, att)
	}

	return cfg, nil
}

// ReadAttachment loads a file to send with the prompt. Files larger than
// maxBytes are rejected without reading them fully; maxBytes <= 0 disables
// the check.
func ReadAttachment(path string, maxBytes int64) (Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to open attachment: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment %s: %w", path, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Attachment{}, fmt.Errorf("attachment %s exceeds %d bytes", filepath.Base(path), maxBytes)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return Attachment{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
