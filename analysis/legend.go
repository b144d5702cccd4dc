package analysis

// LegendSummary is the one-line description of the response codes.
const LegendSummary = "0 = topic absent this session; 1 = topic shown, not selected; 2 = topic shown and selected"

// Legend explains the response codes and auxiliary column suffixes.
type Legend struct {
	Summary           string            `json:"summary" yaml:"summary"`
	ResponseCodes     map[string]string `json:"response_codes" yaml:"response_codes"`
	AdditionalColumns map[string]string `json:"additional_columns" yaml:"additional_columns"`
}

func DefaultLegend() Legend {
	return Legend{
		Summary: LegendSummary,
		ResponseCodes: map[string]string{
			"0": "topic absent this session",
			"1": "topic shown, not selected",
			"2": "topic shown and selected",
		},
		AdditionalColumns: map[string]string{
			"_correct": "1 if the answer was correct, 0 if incorrect",
			"_time":    "time spent on the question (seconds)",
			"_order":   "order in which the question appeared",
		},
	}
}

// LegendText is the long-form legend written next to CSV exports.
func LegendText() string {
	return `RESPONSE CODE LEGEND
====================

Every topic contributes these columns:
- [topic]:         response code (0, 1 or 2)
- [topic]_correct: 1 if the answer was correct, 0 if incorrect
- [topic]_time:    time spent on the question (seconds)
- [topic]_order:   order in which the question appeared

RESPONSE CODES:
- 0 = topic absent this session
- 1 = topic shown, not selected
- 2 = topic shown and selected

The _correct, _time and _order columns are empty when the topic was absent.

SUGGESTED ANALYSES:
===================

1. Click rate per topic: count of 2 divided by appearances (1 + 2).
2. Success rate per topic: sum of _correct divided by appearances.
3. Perceived difficulty: a domain topic with code 1, or a non-domain topic
   with code 2, cost the player a point.
4. Response time: compare mean _time between domain and non-domain topics.
5. Position: compare success on early versus late _order values.
`
}
