package async

import (
	"regexp"
	"strings"

	"github.com/flowsight/flowsight/model"
)

// Tracker detects async bindings in raw source text.
type Tracker struct{}

// NewTracker returns a ready-to-use Tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Analyze scans source line by line against every mechanism's bind
// pattern, then restricts trigger scanning to locations whose normalised
// variable matches the bind's variable (or accepts every trigger match
// when the bind carries no variable). The handler function is always
// marked IsCallback with CallbackContext set to the mechanism's tag.
func (t *Tracker) Analyze(source, filename string, functions map[string]*model.FunctionDef) []model.AsyncBinding {
	lines := strings.Split(source, "\n")
	var bindings []model.AsyncBinding

	for _, pat := range patterns {
		for lineNum, line := range lines {
			m := pat.bind.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			handler, variable := extractHandlerAndVariable(m)
			if handler == "" || handler == "NULL" {
				continue
			}
			fn, ok := functions[handler]
			if !ok {
				continue
			}

			binding := model.AsyncBinding{
				Mechanism:    pat.mechanism,
				Variable:     variable,
				Handler:      handler,
				BindLocation: model.NewLocation(filename, lineNum+1, 0),
				Context:      pat.context,
			}
			binding.TriggerLocations = findTriggers(lines, pat.trigger, variable, filename)

			fn.IsCallback = true
			fn.CallbackContext = pat.mechanism.Tag()

			bindings = append(bindings, binding)
		}
	}
	return bindings
}

// extractHandlerAndVariable applies the "handler is always the last
// capture group; variable is the first capture if two groups are present"
// rule.
func extractHandlerAndVariable(m []string) (handler, variable string) {
	switch len(m) {
	case 2:
		return m[1], ""
	case 3:
		return m[2], normalizeVariable(m[1])
	default:
		return "", ""
	}
}

func findTriggers(lines []string, trigger *regexp.Regexp, variable, filename string) []model.Location {
	var locs []model.Location
	for lineNum, line := range lines {
		m := trigger.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if variable != "" && len(m) > 1 {
			triggerVar := normalizeVariable(m[1])
			if triggerVar != "" && triggerVar != variable {
				continue
			}
		}
		locs = append(locs, model.NewLocation(filename, lineNum+1, 0))
	}
	return locs
}

// normalizeVariable strips addressing ('&') and whitespace, and unifies
// the arrow and dot field-access operators so "&d->work" and "d.work"
// compare equal.
func normalizeVariable(v string) string {
	v = strings.ReplaceAll(v, "&", "")
	v = strings.ReplaceAll(v, " ", "")
	v = strings.ReplaceAll(v, "->", ".")
	return v
}
