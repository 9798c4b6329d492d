package stream

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProvider    = errors.New("unknown stream provider")
	ErrInvalidStreamID    = errors.New("stream id must be greater than zero")
	ErrMissingTeam        = errors.New("stream entry team is required")
	ErrDuplicateStreamKey = errors.New("duplicate stream key")
	ErrNonCanonicalTeam   = errors.New("stream entry uses a non-canonical team name")
	ErrAliasChain         = errors.New("alias target is itself an alias")
	ErrMissingEmbedBase   = errors.New("embed base url is required")
)

// Provider is the embed provider segment of a playback URL.
type Provider string

const (
	ProviderAlpha   Provider = "alpha"
	ProviderBravo   Provider = "bravo"
	ProviderCharlie Provider = "charlie"
	ProviderDelta   Provider = "delta"
	ProviderEcho    Provider = "echo"
	ProviderFoxtrot Provider = "foxtrot"
)

var knownProviders = map[Provider]struct{}{
	ProviderAlpha:   {},
	ProviderBravo:   {},
	ProviderCharlie: {},
	ProviderDelta:   {},
	ProviderEcho:    {},
	ProviderFoxtrot: {},
}

func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownProviders[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
	}
	return p, nil
}

// Entry maps one canonical home/away pairing to a stream.
type Entry struct {
	HomeTeam string
	AwayTeam string
	Provider Provider
	StreamID int64
}

func (e Entry) Key() string {
	return Key(e.HomeTeam, e.AwayTeam)
}

// Key builds the "Home-Away" lookup key from canonical names.
func Key(home, away string) string {
	return home + "-" + away
}

// Catalog is the static stream configuration loaded at start.
type Catalog struct {
	EmbedBaseURL string
	// Aliases maps an observed team name variant to its canonical name.
	Aliases map[string]string
	Streams []Entry
}

// Validate checks the invariants lookups rely on: aliases resolve in one step
// and stream entries are keyed by canonical names.
func (c Catalog) Validate() error {
	if strings.TrimSpace(c.EmbedBaseURL) == "" {
		return ErrMissingEmbedBase
	}

	for variant, canonical := range c.Aliases {
		if strings.TrimSpace(canonical) == "" {
			return fmt.Errorf("%w: alias %q has empty target", ErrMissingTeam, variant)
		}
		if next, ok := c.Aliases[canonical]; ok && next != canonical {
			return fmt.Errorf("%w: %q -> %q -> %q", ErrAliasChain, variant, canonical, next)
		}
	}

	seen := make(map[string]struct{}, len(c.Streams))
	for _, e := range c.Streams {
		if strings.TrimSpace(e.HomeTeam) == "" || strings.TrimSpace(e.AwayTeam) == "" {
			return fmt.Errorf("%w: %+v", ErrMissingTeam, e)
		}
		if _, ok := knownProviders[e.Provider]; !ok {
			return fmt.Errorf("%w: %q in %s", ErrUnknownProvider, e.Provider, e.Key())
		}
		if e.StreamID <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidStreamID, e.Key())
		}
		for _, team := range []string{e.HomeTeam, e.AwayTeam} {
			if canonical, ok := c.Aliases[team]; ok && canonical != team {
				return fmt.Errorf("%w: %q should be %q in %s", ErrNonCanonicalTeam, team, canonical, e.Key())
			}
		}
		if _, dup := seen[e.Key()]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateStreamKey, e.Key())
		}
		seen[e.Key()] = struct{}{}
	}

	return nil
}
