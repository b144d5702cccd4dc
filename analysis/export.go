package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"topicquiz/api/topics"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects the artifact Export produces.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format. The empty string means
// JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Document is the structured export: rows, statistics and the legend.
type Document struct {
	TotalSessions     int                       `json:"total_sessions" yaml:"total_sessions"`
	AnalysisData      []DenseRow                `json:"analysis_data" yaml:"analysis_data"`
	TopicStatistics   map[string]TopicStatistic `json:"topic_statistics" yaml:"topic_statistics"`
	DifficultyRanking []TopicStatistic          `json:"difficulty_ranking" yaml:"difficulty_ranking"`
	Legend            Legend                    `json:"legend" yaml:"legend"`
}

// NewDocument assembles a Document. Nil inputs become empty collections.
func NewDocument(rows []DenseRow, stats map[string]TopicStatistic) Document {
	if rows == nil {
		rows = []DenseRow{}
	}
	if stats == nil {
		stats = map[string]TopicStatistic{}
	}
	return Document{
		TotalSessions:     len(rows),
		AnalysisData:      rows,
		TopicStatistics:   stats,
		DifficultyRanking: Rank(stats),
		Legend:            DefaultLegend(),
	}
}

// Export renders rows and stats in the requested format.
func Export(format Format, rows []DenseRow, stats map[string]TopicStatistic) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, rows); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(NewDocument(rows, stats), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis document: %w", err)
		}
		return out, nil
	case FormatYAML:
		out, err := yaml.Marshal(NewDocument(rows, stats))
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis document: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}

// WriteCSV writes the header and one record per row. Topic columns are only
// present when there is at least one row; a topic's auxiliary columns are
// present when the topic appeared in at least one row.
func WriteCSV(w io.Writer, rows []DenseRow) error {
	var cells []Cell
	if len(rows) > 0 {
		cells = rows[0].Cells
	}
	withDetail := make([]bool, len(cells))
	for _, row := range rows {
		for i := range withDetail {
			if i < len(row.Cells) && row.Cells[i].Detail != nil {
				withDetail[i] = true
			}
		}
	}

	header := append([]string{}, topics.ReservedColumns...)
	for i, c := range cells {
		header = append(header, c.Slug)
		if withDetail[i] {
			header = append(header, c.Slug+topics.SuffixCorrect, c.Slug+topics.SuffixTime, c.Slug+topics.SuffixOrder)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		for _, f := range row.sessionFields() {
			record = append(record, csvValue(f.value))
		}
		for i := range cells {
			var cell Cell
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			record = append(record, strconv.Itoa(int(cell.Code)))
			if !withDetail[i] {
				continue
			}
			for _, col := range []Column{ColumnCorrect, ColumnTime, ColumnOrder} {
				if v, ok := cell.Value(col); ok {
					record = append(record, strconv.Itoa(v))
				} else {
					record = append(record, "")
				}
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for session %s: %w", row.SessionID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func csvValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

type field struct {
	name  string
	value any
}

func (r DenseRow) sessionFields() []field {
	return []field{
		{"session_id", r.SessionID},
		{"session_number", r.SessionNumber},
		{"date", r.Date},
		{"total_questions", r.TotalQuestions},
		{"correct_answers", r.CorrectAnswers},
		{"percentage", r.Percentage},
		{"duration_seconds", r.DurationSeconds},
		{"user_ip", r.UserIP},
	}
}

// fields lists the row as ordered name/value pairs. Auxiliary columns of
// absent topics are omitted.
func (r DenseRow) fields() []field {
	out := r.sessionFields()
	for _, c := range r.Cells {
		out = append(out, field{c.Slug, int(c.Code)})
		if c.Detail == nil {
			continue
		}
		correct, _ := c.Value(ColumnCorrect)
		out = append(out,
			field{c.Slug + topics.SuffixCorrect, correct},
			field{c.Slug + topics.SuffixTime, c.Detail.TimeSeconds},
			field{c.Slug + topics.SuffixOrder, c.Detail.Order},
		)
	}
	return out
}

// MarshalJSON encodes the row as a flat object in column order.
func (r DenseRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the row as a mapping in column order.
func (r DenseRow) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range r.fields() {
		var val yaml.Node
		if err := val.Encode(f.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.name},
			&val,
		)
	}
	return node, nil
}
