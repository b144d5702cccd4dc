package analysis

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"topicquiz/api/models"
	"topicquiz/api/topics"
)

// Report is the full derived view of a session history. It is shared
// between readers and must not be modified.
type Report struct {
	Version    string
	Rows       []DenseRow
	Statistics map[string]TopicStatistic
	Ranking    []TopicStatistic
}

// Build aggregates and reduces a fetched session history.
func Build(version string, sessions []models.Session, u *topics.Universe) *Report {
	rows := AggregateAll(sessions, u)
	stats := Reduce(rows)
	return &Report{
		Version:    version,
		Rows:       rows,
		Statistics: stats,
		Ranking:    Rank(stats),
	}
}

// Cache keeps recently built reports keyed by the corpus snapshot version.
// A new session changes the version, so a stale report is never returned.
type Cache struct {
	reports *lru.Cache[string, *Report]
}

// NewCache creates a cache holding up to size reports.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	reports, err := lru.New[string, *Report](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}
	return &Cache{reports: reports}, nil
}

// Get returns the report for version, calling build on a miss. The second
// result reports whether the cache was hit.
func (c *Cache) Get(version string, build func() (*Report, error)) (*Report, bool, error) {
	if r, ok := c.reports.Get(version); ok {
		return r, true, nil
	}
	r, err := build()
	if err != nil {
		return nil, false, err
	}
	c.reports.Add(version, r)
	return r, false, nil
}

// Purge drops every cached report.
func (c *Cache) Purge() {
	c.reports.Purge()
}
