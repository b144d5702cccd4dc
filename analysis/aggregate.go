// Package analysis turns recorded sessions into dense per-session rows,
// per-topic statistics and exportable artifacts. Everything in it is a pure
// function of its inputs.
package analysis

import (
	"time"

	"topicquiz/api/models"
	"topicquiz/api/topics"
)

// DateLayout is how the date column is rendered (dd/mm/yyyy, hh:mm:ss).
const DateLayout = "02/01/2006, 15:04:05"

// Code marks whether a topic appeared in a session and whether it was picked.
type Code int

const (
	CodeAbsent   Code = 0
	CodeShown    Code = 1
	CodeSelected Code = 2
)

// Column enumerates the four columns each topic contributes to a row.
type Column int

const (
	ColumnCode Column = iota
	ColumnCorrect
	ColumnTime
	ColumnOrder
)

// CellDetail holds the auxiliary values of a topic that appeared.
type CellDetail struct {
	Correct     bool
	TimeSeconds int
	Order       int
}

// Cell is the state of one universe topic within one session.
type Cell struct {
	Slug           string
	Topic          string
	DomainRelevant bool
	Code           Code
	// Detail is nil exactly when Code is CodeAbsent.
	Detail *CellDetail
}

// Value returns the integer stored in column c, and false for auxiliary
// columns of an absent topic.
func (c Cell) Value(col Column) (int, bool) {
	if col == ColumnCode {
		return int(c.Code), true
	}
	if c.Detail == nil {
		return 0, false
	}
	switch col {
	case ColumnCorrect:
		if c.Detail.Correct {
			return 1, true
		}
		return 0, true
	case ColumnTime:
		return c.Detail.TimeSeconds, true
	case ColumnOrder:
		return c.Detail.Order, true
	}
	return 0, false
}

// DenseRow is one session re-expressed over the whole topic universe.
// Cells are in universe order.
type DenseRow struct {
	SessionID       string
	SessionNumber   int
	Date            string
	CreatedAt       time.Time
	TotalQuestions  int
	CorrectAnswers  int
	Percentage      float64
	DurationSeconds int
	UserIP          string
	Cells           []Cell
}

// Aggregate builds the dense row of a single session. The response list is
// authoritative: TotalQuestions is copied through but never consulted.
// Responses for topics outside u are ignored; if a topic is answered twice
// in the same session the later response wins.
func Aggregate(s models.Session, u *topics.Universe) DenseRow {
	byTopic := make(map[string]models.Response, len(s.Responses))
	for _, r := range s.Responses {
		byTopic[r.Topic] = r
	}

	row := DenseRow{
		SessionID:       s.ID,
		Date:            s.CreatedAt.UTC().Format(DateLayout),
		CreatedAt:       s.CreatedAt,
		TotalQuestions:  s.TotalQuestions,
		CorrectAnswers:  s.CorrectAnswers,
		Percentage:      s.Percentage.InexactFloat64(),
		DurationSeconds: s.DurationSeconds,
		UserIP:          s.UserIP,
		Cells:           make([]Cell, u.Len()),
	}

	for i := range row.Cells {
		t := u.At(i)
		cell := Cell{Slug: t.Slug, Topic: t.Name, DomainRelevant: t.DomainRelevant}
		if r, ok := byTopic[t.Name]; ok {
			cell.Code = CodeShown
			if r.WasSelected {
				cell.Code = CodeSelected
			}
			cell.Detail = &CellDetail{
				Correct:     r.IsCorrect,
				TimeSeconds: r.TimeSpentSeconds,
				Order:       r.Order,
			}
		}
		row.Cells[i] = cell
	}
	return row
}

// AggregateAll aggregates sessions in the order given and numbers the rows
// from 1.
func AggregateAll(sessions []models.Session, u *topics.Universe) []DenseRow {
	rows := make([]DenseRow, 0, len(sessions))
	for i, s := range sessions {
		row := Aggregate(s, u)
		row.SessionNumber = i + 1
		rows = append(rows, row)
	}
	return rows
}
