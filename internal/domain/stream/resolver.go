package stream

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

const trailingSegment = "1"

// Resolver finds the stream for a pairing of team names. It is read-only after
// construction and safe for concurrent use.
type Resolver struct {
	normalizer *Normalizer
	baseURL    string
	byKey      map[string]Entry
	entries    []Entry
}

func NewResolver(catalog Catalog) *Resolver {
	byKey := make(map[string]Entry, len(catalog.Streams))
	entries := make([]Entry, 0, len(catalog.Streams))
	for _, e := range catalog.Streams {
		if _, exists := byKey[e.Key()]; exists {
			continue
		}
		byKey[e.Key()] = e
		entries = append(entries, e)
	}

	return &Resolver{
		normalizer: NewNormalizer(catalog.Aliases),
		baseURL:    strings.TrimRight(strings.TrimSpace(catalog.EmbedBaseURL), "/"),
		byKey:      byKey,
		entries:    entries,
	}
}

// Lookup returns the catalog entry for the pairing, trying the normalized
// forward order first and the reversed order second.
func (r *Resolver) Lookup(team1, team2 string) (Entry, bool) {
	n1 := r.normalizer.Normalize(team1)
	n2 := r.normalizer.Normalize(team2)

	if e, ok := r.byKey[Key(n1, n2)]; ok {
		return e, true
	}
	if e, ok := r.byKey[Key(n2, n1)]; ok {
		return e, true
	}
	return Entry{}, false
}

// Resolve returns the playback URL for the pairing. The path keeps the caller's
// team order, not the order of the matched key.
func (r *Resolver) Resolve(team1, team2 string) (string, bool) {
	e, ok := r.Lookup(team1, team2)
	if !ok {
		return "", false
	}
	return r.BuildURL(e.Provider, r.normalizer.Normalize(team1), r.normalizer.Normalize(team2), e.StreamID), true
}

// URL builds the playback URL of a catalog entry in its own key order.
func (r *Resolver) URL(e Entry) string {
	return r.BuildURL(e.Provider, e.HomeTeam, e.AwayTeam, e.StreamID)
}

func (r *Resolver) BuildURL(provider Provider, team1, team2 string, id int64) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(r.baseURL)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(string(provider))
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(Slug(team1))
	_, _ = buf.WriteString("-vs-")
	_, _ = buf.WriteString(Slug(team2))
	_ = buf.WriteByte('-')
	buf.B = strconv.AppendInt(buf.B, id, 10)
	_ = buf.WriteByte('/')
	_, _ = buf.WriteString(trailingSegment)

	return buf.String()
}

// Entries lists catalog entries in file order.
func (r *Resolver) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Slug lowercases name and replaces spaces with hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
