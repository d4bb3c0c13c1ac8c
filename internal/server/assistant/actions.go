package assistant

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Action names understood by the Applicator.
const (
	ActionCreateTask   = "create_task"
	ActionCreateEvent  = "create_event"
	ActionCompleteTask = "complete_task"
	ActionDeleteTask   = "delete_task"
	ActionDeleteEvent  = "delete_event"
)

// Directive is one action the model asked for. Absent fields are "";
// Has reports whether a field was present at all.
type Directive struct {
	Action      string
	Title       string
	Description string
	Priority    string
	DueDate     string
	Date        string
	Time        string
	TaskID      string
	EventID     string

	present map[string]bool
}

// Has reports whether the directive carried a non-null field named key.
func (d Directive) Has(key string) bool {
	return d.present[key]
}

var (
	inlineActionRe = regexp.MustCompile(`\{[^{}]*"action"[^{}]*\}`)
	extraNewlineRe = regexp.MustCompile(`\n{3,}`)

	quoteRe        = regexp.MustCompile(`["'“”‘’]`)
	asteriskRe     = regexp.MustCompile(`\*+`)
	braceSpanRe    = regexp.MustCompile(`\{[^}]*\}`)
	bracketSpanRe  = regexp.MustCompile(`\[[^\]]*\]`)
	strayBracketRe = regexp.MustCompile(`[{}\[\]]`)
	// same set strings.TrimSpace strips
	spaceRe        = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
	trailingBangRe = regexp.MustCompile(`[!\s\v\x{85}\p{Z}]+$`)
)

// Extract pulls action directives out of a model reply.
//
// Lines that begin with "{" and mention "action" are parsed as JSON objects
// first. Only when that yields nothing is the whole text scanned for flat
// {...} spans containing "action". Unparseable candidates are skipped.
func Extract(raw string) []Directive {
	var out []Directive

	for _, line := range strings.Split(raw, "\n") {
		if !isActionLine(line) {
			continue
		}
		if d, ok := parseDirective(strings.TrimSpace(line)); ok {
			out = append(out, d)
		}
	}

	if len(out) > 0 {
		return out
	}

	for _, span := range inlineActionRe.FindAllString(raw, -1) {
		if d, ok := parseDirective(span); ok {
			out = append(out, d)
		}
	}

	return out
}

// Sanitize removes directive lines, code fences and blank lines from a
// reply, then any inline directive spans, and squeezes runs of blank lines.
func Sanitize(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if isActionLine(line) || strings.HasPrefix(trimmed, "```") || trimmed == "" {
			continue
		}
		kept = append(kept, line)
	}

	s := strings.TrimSpace(strings.Join(kept, "\n"))
	s = inlineActionRe.ReplaceAllString(s, "")
	s = extraNewlineRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// CleanTitle strips decoration a model tends to put into titles: quotes,
// asterisks, {...} and [...] spans, trailing exclamation marks and extra
// whitespace. CleanTitle(CleanTitle(s)) == CleanTitle(s).
func CleanTitle(title string) string {
	title = quoteRe.ReplaceAllString(title, "")
	title = asteriskRe.ReplaceAllString(title, "")
	title = braceSpanRe.ReplaceAllString(title, "")
	title = bracketSpanRe.ReplaceAllString(title, "")
	title = strayBracketRe.ReplaceAllString(title, "")
	title = spaceRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	title = trailingBangRe.ReplaceAllString(title, "")
	return title
}

func isActionLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"action"`)
}

func parseDirective(s string) (Directive, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return Directive{}, false
	}
	if _, ok := obj["action"]; !ok {
		return Directive{}, false
	}

	d := Directive{present: make(map[string]bool, len(obj))}
	fields := map[string]*string{
		"action":      &d.Action,
		"title":       &d.Title,
		"description": &d.Description,
		"priority":    &d.Priority,
		"due_date":    &d.DueDate,
		"date":        &d.Date,
		"time":        &d.Time,
		"task_id":     &d.TaskID,
		"event_id":    &d.EventID,
	}
	for key, dst := range fields {
		v, ok := scalar(obj[key])
		if !ok {
			continue
		}
		*dst = v
		d.present[key] = true
	}

	if d.present["title"] {
		d.Title = CleanTitle(d.Title)
	}

	return d, true
}

// scalar renders a JSON scalar as a string. null, objects and arrays are
// treated as absent.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
