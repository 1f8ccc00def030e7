package parse

import "strings"

// Summary is the four-part medical report summary. Empty fields are the valid
// "not found" state; segmentation never fails a document.
type Summary struct {
	OverallCondition string `json:"overall_condition"`
	TestResults      string `json:"test_results"`
	Diagnosis        string `json:"diagnosis"`
	FollowUp         string `json:"follow_up"`
}

// sectionLabels is the fixed ordered label set the summarize_report prompt
// asks the generator to use. Matching is by substring: replies are rarely
// formatted exactly as requested, and a tolerant match recovers structure
// from numbered, bolded, or colon-suffixed headings alike. The flip side is
// that a prose line merely mentioning a label word switches sections; that
// looseness is accepted, not worked around.
var sectionLabels = []string{
	"Overall Condition",
	"Test Results",
	"Diagnosis",
	"Follow-up",
}

// Sections segments a free-text reply into the four summary parts with a
// single pass over its lines. A line containing a label opens that section;
// the remainder of the label line (past an optional separator) and every
// following non-label line belong to it. Text before the first recognized
// label is discarded.
func Sections(raw string) Summary {
	parts := make(map[string][]string, len(sectionLabels))

	current := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if label, rest, ok := matchLabel(line); ok {
			current = label
			if rest != "" {
				parts[current] = append(parts[current], rest)
			}
			continue
		}
		if current != "" {
			parts[current] = append(parts[current], line)
		}
	}

	section := func(label string) string {
		return strings.TrimRight(strings.Join(parts[label], " "), " \t")
	}
	return Summary{
		OverallCondition: section("Overall Condition"),
		TestResults:      section("Test Results"),
		Diagnosis:        section("Diagnosis"),
		FollowUp:         section("Follow-up"),
	}
}

// matchLabel reports the first label contained in line and the text that
// follows it, with one leading ":" or "-" separator stripped.
func matchLabel(line string) (label, rest string, ok bool) {
	for _, l := range sectionLabels {
		idx := strings.Index(line, l)
		if idx < 0 {
			continue
		}
		rest = strings.TrimSpace(line[idx+len(l):])
		if len(rest) > 0 && (rest[0] == ':' || rest[0] == '-') {
			rest = strings.TrimSpace(rest[1:])
		}
		return l, rest, true
	}
	return "", "", false
}
