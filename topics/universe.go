// Package topics holds the fixed catalog of topics the game can present and
// the column identifiers derived from their names.
package topics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTopic is returned when the same topic name is listed twice.
var ErrDuplicateTopic = errors.New("duplicate topic name")

// ReservedColumns are the session-level columns every dense row starts with.
// No topic column is ever allowed to take one of these names.
var ReservedColumns = []string{
	"session_id",
	"session_number",
	"date",
	"total_questions",
	"correct_answers",
	"percentage",
	"duration_seconds",
	"user_ip",
}

// Auxiliary column suffixes, emitted only for topics that appeared.
const (
	SuffixCorrect = "_correct"
	SuffixTime    = "_time"
	SuffixOrder   = "_order"
)

var auxSuffixes = []string{SuffixCorrect, SuffixTime, SuffixOrder}

// Topic is one entry of the catalog.
type Topic struct {
	Name           string `json:"name"`
	DomainRelevant bool   `json:"is_domain_relevant"`
	// Slug is the resolved column identifier, unique within its Universe.
	Slug string `json:"slug"`
}

// Universe is an ordered, immutable topic catalog. The order fixes the
// column order of every export.
type Universe struct {
	topics []Topic
	byName map[string]int
}

// NewUniverse builds a universe from topics in the given order and resolves
// slug collisions. Slug fields on the input are ignored.
func NewUniverse(list ...Topic) (*Universe, error) {
	u := &Universe{
		topics: make([]Topic, 0, len(list)),
		byName: make(map[string]int, len(list)),
	}

	taken := make(map[string]bool, len(ReservedColumns)+4*len(list))
	for _, c := range ReservedColumns {
		taken[c] = true
	}

	for _, t := range list {
		if _, dup := u.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTopic, t.Name)
		}
		t.Slug = resolveSlug(Slug(t.Name), taken)
		taken[t.Slug] = true
		for _, s := range auxSuffixes {
			taken[t.Slug+s] = true
		}
		u.byName[t.Name] = len(u.topics)
		u.topics = append(u.topics, t)
	}
	return u, nil
}

// MustUniverse is NewUniverse for catalogs known at build time.
func MustUniverse(list ...Topic) *Universe {
	u, err := NewUniverse(list...)
	if err != nil {
		panic(err)
	}
	return u
}

// resolveSlug returns base if neither it nor its auxiliary columns are taken,
// otherwise the first free base_N with N starting at 2.
func resolveSlug(base string, taken map[string]bool) string {
	free := func(s string) bool {
		if taken[s] {
			return false
		}
		for _, suffix := range auxSuffixes {
			if taken[s+suffix] {
				return false
			}
		}
		return true
	}
	if free(base) {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if free(candidate) {
			return candidate
		}
	}
}

// Slug derives the base column identifier of a topic name: the first three
// whitespace-separated words joined by "_", lower-cased, with everything
// outside [a-z0-9_] removed. Distinct names may share a slug; NewUniverse
// disambiguates.
func Slug(name string) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}
	joined := strings.ToLower(strings.Join(words, "_"))

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "topic"
	}
	return b.String()
}

// Topics returns a copy of the catalog in universe order.
func (u *Universe) Topics() []Topic {
	out := make([]Topic, len(u.topics))
	copy(out, u.topics)
	return out
}

// Len is the number of topics.
func (u *Universe) Len() int { return len(u.topics) }

// At returns the topic at position i.
func (u *Universe) At(i int) Topic { return u.topics[i] }

// Lookup finds a topic by its exact name.
func (u *Universe) Lookup(name string) (Topic, int, bool) {
	i, ok := u.byName[name]
	if !ok {
		return Topic{}, -1, false
	}
	return u.topics[i], i, true
}

// Columns returns the code column followed by the three auxiliary columns of
// the topic at position i.
func (u *Universe) Columns(i int) [4]string {
	s := u.topics[i].Slug
	return [4]string{s, s + SuffixCorrect, s + SuffixTime, s + SuffixOrder}
}
