package stream

import "strings"

// Normalizer maps source-specific team names to canonical short names.
type Normalizer struct {
	aliases map[string]string
}

func NewNormalizer(aliases map[string]string) *Normalizer {
	copied := make(map[string]string, len(aliases))
	for variant, canonical := range aliases {
		copied[variant] = canonical
	}
	return &Normalizer{aliases: copied}
}

// Normalize returns the canonical name for name, or name itself when unknown.
func (n *Normalizer) Normalize(name string) string {
	if n == nil {
		return name
	}
	if canonical, ok := n.aliases[name]; ok {
		return canonical
	}
	if trimmed := strings.TrimSpace(name); trimmed != name {
		if canonical, ok := n.aliases[trimmed]; ok {
			return canonical
		}
	}
	return name
}
