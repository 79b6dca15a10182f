package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"profileimport/internal/model"
)

// Date fields arrive in four shapes: explicit start/end fields, a combined
// "start - end" string, a bare year, and a relative "N years M months"
// duration. All normalize to a {start, end} pair with a Present sentinel for
// ongoing entries.

var (
	startAliases       = []string{"startDate", "start_date", "started_on", "from", "start"}
	endAliases         = []string{"endDate", "end_date", "ended_on", "to", "end"}
	rangeAliases       = []string{"duration", "dates", "date_range", "period"}
	currentFlagAliases = []string{"current", "is_current", "currently_working"}
)

var rangeSeparators = []string{" - ", " – ", " — ", " to "}

var (
	yearRe     = regexp.MustCompile(`^\d{4}$`)
	relativeRe = regexp.MustCompile(`(?i)^(?:(\d+)\s*years?)?\s*(?:(\d+)\s*months?)?$`)
)

func inferDateRange(entry map[string]interface{}, now time.Time) model.DateRange {
	start := stringField(entry, startAliases...)
	end := stringField(entry, endAliases...)

	if start == "" && end == "" {
		if combined := stringField(entry, rangeAliases...); combined != "" {
			start, end = splitDateRange(combined, now)
		}
	}

	if isPresent(end) {
		end = model.PresentEnd
	}
	if end == "" && (start != "" || currentFlag(entry)) {
		end = model.PresentEnd
	}
	return model.DateRange{StartDate: start, EndDate: end}
}

// splitDateRange handles the combined shapes: "Jan 2020 - Present", a bare
// year, and a relative duration counted back from now.
func splitDateRange(s string, now time.Time) (start, end string) {
	for _, sep := range rangeSeparators {
		if idx := strings.Index(s, sep); idx >= 0 {
			return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(sep):])
		}
	}

	trimmed := strings.TrimSpace(s)
	if yearRe.MatchString(trimmed) {
		return trimmed, ""
	}
	if from, ok := relativeStart(trimmed, now); ok {
		return from, model.PresentEnd
	}
	return trimmed, ""
}

// relativeStart converts "N years M months" into an absolute "Jan 2006"
// start date counted back from now.
func relativeStart(s string, now time.Time) (string, bool) {
	m := relativeRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return "", false
	}
	years, _ := strconv.Atoi(m[1])
	months, _ := strconv.Atoi(m[2])
	return now.AddDate(-years, -months, 0).Format("Jan 2006"), true
}

func isPresent(end string) bool {
	return strings.EqualFold(end, "present") || strings.EqualFold(end, "current") || strings.EqualFold(end, "now")
}

func currentFlag(entry map[string]interface{}) bool {
	for _, alias := range currentFlagAliases {
		switch v := entry[alias].(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if strings.EqualFold(v, "true") {
				return true
			}
		}
	}
	return false
}
