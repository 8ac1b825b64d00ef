package parse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	internalstrings "github.com/beemnet-bee/BeeSmartToDo/internal/strings"
	"github.com/beemnet-bee/BeeSmartToDo/todo"
)

var (
	categoryPatterns = buildCategoryPatterns()

	highPattern     = regexp.MustCompile(`(?i)\b(high priority|high)\b`)
	lowPattern      = regexp.MustCompile(`(?i)\b(low priority|low)\b`)
	tomorrowPattern = regexp.MustCompile(`(?i)\b(due |by )?tomorrow\b`)
	todayPattern    = regexp.MustCompile(`(?i)\b(due |by )?today\b`)
	datePattern     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	timePattern     = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(\s?([ap]m))?`)
	stopWordPattern = regexp.MustCompile(`(?i)\b(task|for|at|due by|due|by|remind me)\b`)
)

type categoryPattern struct {
	category todo.Category
	pattern  *regexp.Regexp
}

func buildCategoryPatterns() []categoryPattern {
	var patterns []categoryPattern
	for _, c := range todo.ValidCategories() {
		patterns = append(patterns, categoryPattern{
			category: c,
			pattern:  regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(string(c)) + `\b`),
		})
	}
	return patterns
}

// RuleParser extracts category, priority, due date and reminder from each
// line using keyword patterns.
type RuleParser struct {
	// Now returns the current time; relative dates resolve in its location.
	// Nil uses time.Now.
	Now func() time.Time
}

// Parse returns one draft per non-blank line of text, in line order.
func (p *RuleParser) Parse(ctx context.Context, text string) ([]todo.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := internalstrings.NonBlankLines(text)
	if len(lines) == 0 {
		return nil, ErrNoTasks
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	drafts := make([]todo.Draft, 0, len(lines))
	for _, line := range lines {
		drafts = append(drafts, ParseLine(line, now))
	}
	return drafts, nil
}

// ParseLine converts a single line into a draft, resolving relative dates
// against now.
func ParseLine(line string, now time.Time) todo.Draft {
	text := strings.TrimSpace(line)
	draft := todo.Draft{
		Category: todo.DefaultCategory,
		Priority: todo.DefaultPriority,
	}

	for _, cp := range categoryPatterns {
		if cp.pattern.MatchString(text) {
			draft.Category = cp.category
			text = replaceFirst(cp.pattern, text)
			break
		}
	}

	switch {
	case highPattern.MatchString(text):
		draft.Priority = todo.PriorityHigh
		text = replaceFirst(highPattern, text)
	case lowPattern.MatchString(text):
		draft.Priority = todo.PriorityLow
		text = replaceFirst(lowPattern, text)
	}

	draft.DueDate, draft.ReminderDate, text = parseDates(text, now)

	text = stopWordPattern.ReplaceAllString(text, "")
	draft.Text = internalstrings.NormalizeWhitespace(text)
	if draft.Text == "" {
		draft.Text = PlaceholderText
	}
	return draft
}

// parseDates pulls a due date and a reminder time out of text. A relative
// day is applied first and an explicit YYYY-MM-DD date overrides it.
func parseDates(text string, now time.Time) (dueDate, reminderDate, remaining string) {
	switch {
	case tomorrowPattern.MatchString(text):
		dueDate = now.AddDate(0, 0, 1).Format(todo.DateLayout)
		text = replaceFirst(tomorrowPattern, text)
	case todayPattern.MatchString(text):
		dueDate = now.Format(todo.DateLayout)
		text = replaceFirst(todayPattern, text)
	}

	for _, loc := range datePattern.FindAllStringIndex(text, -1) {
		candidate := text[loc[0]:loc[1]]
		if _, err := time.Parse(todo.DateLayout, candidate); err != nil {
			continue
		}
		dueDate = candidate
		text = text[:loc[0]] + text[loc[1]:]
		break
	}

	for _, m := range timePattern.FindAllStringSubmatchIndex(text, -1) {
		hour, _ := strconv.Atoi(text[m[2]:m[3]])
		minute, _ := strconv.Atoi(text[m[4]:m[5]])
		meridiem := ""
		if m[8] >= 0 {
			meridiem = strings.ToLower(text[m[8]:m[9]])
		}
		hour, ok := clockHour(hour, minute, meridiem)
		if !ok {
			continue
		}

		day := now
		if dueDate != "" {
			if parsed, err := time.ParseInLocation(todo.DateLayout, dueDate, now.Location()); err == nil {
				day = parsed
			}
		}
		reminderDate = fmt.Sprintf("%s%02d:%02d", day.Format("2006-01-02T"), hour, minute)
		text = text[:m[0]] + text[m[1]:]
		break
	}

	return dueDate, reminderDate, strings.TrimSpace(text)
}

// clockHour converts an hour with an optional am/pm suffix to 24-hour time.
// With a suffix the hour must be 1-12.
func clockHour(hour, minute int, meridiem string) (int, bool) {
	if minute > 59 || hour > 23 {
		return 0, false
	}
	if meridiem != "" && (hour == 0 || hour > 12) {
		return 0, false
	}
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, true
}

func replaceFirst(pattern *regexp.Regexp, text string) string {
	loc := pattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]] + text[loc[1]:]
}
