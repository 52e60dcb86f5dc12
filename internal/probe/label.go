package probe

import "strings"

// Label selects an application, a probe class within it, or a single probe
// method: "app", "app.Class" or "app.Class.method".
type Label struct {
	App    string
	Class  string
	Method string
}

// ParseLabel splits a dotted label into its 1 to 3 segments.
func ParseLabel(s string) (Label, error) {
	parts := strings.Split(s, ".")
	if s == "" || len(parts) > 3 {
		return Label{}, &LabelError{Label: s, Err: ErrLabelFormat}
	}
	for _, p := range parts {
		if p == "" {
			return Label{}, &LabelError{Label: s, Err: ErrLabelFormat}
		}
	}
	l := Label{App: parts[0]}
	if len(parts) > 1 {
		l.Class = parts[1]
	}
	if len(parts) > 2 {
		l.Method = parts[2]
	}
	return l, nil
}

// Segments is the number of populated segments.
func (l Label) Segments() int {
	switch {
	case l.Method != "":
		return 3
	case l.Class != "":
		return 2
	case l.App != "":
		return 1
	}
	return 0
}

func (l Label) String() string {
	parts := []string{l.App}
	if l.Class != "" {
		parts = append(parts, l.Class)
	}
	if l.Method != "" {
		parts = append(parts, l.Method)
	}
	return strings.Join(parts, ".")
}
