package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/hivecouncil/internal/council"
)

const chairSuffix = ":chair"

// parseMember parses a --member value of the form provider:model[:chair].
// Everything after the first colon is the model, so model names that contain
// colons (e.g. "ollama:llama3:8b") survive.
func parseMember(value string) (council.Member, error) {
	var m council.Member

	rest := strings.TrimSpace(value)
	if strings.HasSuffix(rest, chairSuffix) {
		m.IsChair = true
		rest = strings.TrimSuffix(rest, chairSuffix)
	}

	provider, model, ok := strings.Cut(rest, ":")
	provider = strings.TrimSpace(provider)
	model = strings.TrimSpace(model)
	if !ok || provider == "" || model == "" {
		return council.Member{}, fmt.Errorf("invalid member %q: expected provider:model[:chair]", value)
	}

	m.Provider = provider
	m.Model = model
	return m, nil
}

func parseMembers(values []string) ([]council.Member, error) {
	members := make([]council.Member, 0, len(values))
	for _, v := range values {
		m, err := parseMember(v)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}
