package analysis

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// TopicStatistic summarises one topic across a corpus of rows.
type TopicStatistic struct {
	Slug             string  `json:"slug" yaml:"slug"`
	Topic            string  `json:"topic" yaml:"topic"`
	DomainRelevant   bool    `json:"is_domain_relevant" yaml:"is_domain_relevant"`
	TotalAppearances int     `json:"total_appearances" yaml:"total_appearances"`
	TotalClicks      int     `json:"total_clicks" yaml:"total_clicks"`
	TotalCorrect     int     `json:"total_correct" yaml:"total_correct"`
	ClickRate        float64 `json:"click_rate" yaml:"click_rate"`
	NonClickRate     float64 `json:"non_click_rate" yaml:"non_click_rate"`
	SuccessRate      float64 `json:"success_rate" yaml:"success_rate"`
}

type topicCounts struct {
	topic          string
	domainRelevant bool
	appearances    int
	clicks         int
	correct        int
}

// Tally accumulates raw per-topic counts. Adding rows in any order, or
// merging tallies built from disjoint batches, yields the same counts.
type Tally struct {
	bySlug map[string]*topicCounts
}

func NewTally() *Tally {
	return &Tally{bySlug: make(map[string]*topicCounts)}
}

func (t *Tally) entry(slug, topic string, domainRelevant bool) *topicCounts {
	c, ok := t.bySlug[slug]
	if !ok {
		c = &topicCounts{topic: topic, domainRelevant: domainRelevant}
		t.bySlug[slug] = c
	}
	return c
}

// Add folds one row into the tally.
func (t *Tally) Add(row DenseRow) {
	for _, cell := range row.Cells {
		if cell.Code == CodeAbsent {
			continue
		}
		c := t.entry(cell.Slug, cell.Topic, cell.DomainRelevant)
		c.appearances++
		if cell.Code == CodeSelected {
			c.clicks++
		}
		if cell.Detail != nil && cell.Detail.Correct {
			c.correct++
		}
	}
}

// Merge adds the counts of other into t.
func (t *Tally) Merge(other *Tally) {
	for slug, o := range other.bySlug {
		c := t.entry(slug, o.topic, o.domainRelevant)
		c.appearances += o.appearances
		c.clicks += o.clicks
		c.correct += o.correct
	}
}

// Statistics derives the per-topic statistics. Topics that never appeared
// are left out.
func (t *Tally) Statistics() map[string]TopicStatistic {
	stats := make(map[string]TopicStatistic, len(t.bySlug))
	for slug, c := range t.bySlug {
		if c.appearances == 0 {
			continue
		}
		stats[slug] = TopicStatistic{
			Slug:             slug,
			Topic:            c.topic,
			DomainRelevant:   c.domainRelevant,
			TotalAppearances: c.appearances,
			TotalClicks:      c.clicks,
			TotalCorrect:     c.correct,
			ClickRate:        percent(c.clicks, c.appearances),
			NonClickRate:     percent(c.appearances-c.clicks, c.appearances),
			SuccessRate:      percent(c.correct, c.appearances),
		}
	}
	return stats
}

// Reduce computes per-topic statistics keyed by slug.
func Reduce(rows []DenseRow) map[string]TopicStatistic {
	t := NewTally()
	for _, row := range rows {
		t.Add(row)
	}
	return t.Statistics()
}

// percent returns part/whole*100 rounded to two decimal places.
func percent(part, whole int) float64 {
	return decimal.NewFromInt(int64(part) * 100).
		DivRound(decimal.NewFromInt(int64(whole)), 2).
		InexactFloat64()
}

// Rank orders topics from hardest to easiest: ascending share of correct
// answers, ties broken by slug.
func Rank(stats map[string]TopicStatistic) []TopicStatistic {
	out := sortedValues(stats)
	slices.SortStableFunc(out, func(a, b TopicStatistic) int {
		// a.correct/a.appearances vs b.correct/b.appearances without division
		if c := cmp.Compare(a.TotalCorrect*b.TotalAppearances, b.TotalCorrect*a.TotalAppearances); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	return out
}

// MostClicked returns up to n topics with the most clicks, ties broken by
// slug. n <= 0 returns all of them.
func MostClicked(stats map[string]TopicStatistic, n int) []TopicStatistic {
	out := sortedValues(stats)
	slices.SortStableFunc(out, func(a, b TopicStatistic) int {
		if c := cmp.Compare(b.TotalClicks, a.TotalClicks); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedValues(stats map[string]TopicStatistic) []TopicStatistic {
	out := make([]TopicStatistic, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b TopicStatistic) int { return cmp.Compare(a.Slug, b.Slug) })
	return out
}
