package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// Sentinel is the answer the model gives when no date/time can be determined
const Sentinel = "CANNOT_DETERMINE"

const modelLayout = "2006/01/02, 15:04"

var modelPattern = regexp.MustCompile(`^\d{4}/\d{2}/\d{2}, \d{2}:\d{2}$`)

// Parser turns a raw model answer into a future instant in a fixed zone
type Parser struct {
	loc *time.Location
}

// NewParser creates a parser that interprets answers in loc
func NewParser(loc *time.Location) *Parser {
	return &Parser{loc: loc}
}

// Parse validates the model answer strictly. A date earlier than today is moved
// onto today's date, then an instant that is not after now is moved forward one day.
func (p *Parser) Parse(raw string, now time.Time) (time.Time, error) {
	answer := strings.TrimSpace(raw)

	if strings.EqualFold(strings.TrimSpace(strings.TrimSuffix(answer, ".")), Sentinel) {
		return time.Time{}, usecaseErrors.ErrExtractionAmbiguous
	}
	if !modelPattern.MatchString(answer) {
		return time.Time{}, fmt.Errorf("%w: %q", usecaseErrors.ErrExtractionMalformed, truncate(answer, 64))
	}

	t, err := time.ParseInLocation(modelLayout, answer, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", usecaseErrors.ErrExtractionMalformed, answer, err)
	}

	now = now.In(p.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.loc)
	if t.Before(today) {
		t = time.Date(today.Year(), today.Month(), today.Day(), t.Hour(), t.Minute(), 0, 0, p.loc)
	}

	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %w: %s", usecaseErrors.ErrExtractionMalformed, usecaseErrors.ErrNotFuture, t.Format(time.RFC3339))
	}
	return t, nil
}

// Fallback returns the default meeting slot: the next calendar day at hhmm in the parser's zone
func (p *Parser) Fallback(now time.Time, hhmm string) (time.Time, error) {
	slot, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fallback time %q: %w", hhmm, err)
	}
	now = now.In(p.loc)
	return time.Date(now.Year(), now.Month(), now.Day()+1, slot.Hour(), slot.Minute(), 0, 0, p.loc), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
