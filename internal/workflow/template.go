package workflow

import "strings"

// Render expands a single-brace template against an environment: `{name}`
// or `{name.sub}`. Name characters are alphanumerics, underscore, dot, and
// space; each dotted segment is trimmed of surrounding whitespace. An
// unresolvable path renders as the literal token `{UNDEFINED:name}` rather
// than raising, so renderings are always defined strings and callers can
// detect missing bindings by scanning the output. There is no escaping, no
// control flow, no arithmetic: deliberately narrow.
func Render(tmpl string, env Environment) string {
	var out strings.Builder
	i := 0
	for i < len(tmpl) {
		if tmpl[i] != '{' {
			out.WriteByte(tmpl[i])
			i++
			continue
		}

		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			out.WriteByte(tmpl[i])
			i++
			continue
		}
		end += i + 1

		name := tmpl[i+1 : end]
		if !isTemplateName(name) {
			out.WriteByte(tmpl[i])
			i++
			continue
		}

		path := splitAndTrim(name)
		if value, ok := env.Resolve(path); ok {
			out.WriteString(value)
		} else {
			out.WriteString("{UNDEFINED:")
			out.WriteString(name)
			out.WriteString("}")
		}
		i = end + 1
	}
	return out.String()
}

func isTemplateName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == ' ':
		default:
			return false
		}
	}
	return true
}

func splitAndTrim(name string) []string {
	parts := strings.Split(name, ".")
	trimmed := make([]string, len(parts))
	for i, p := range parts {
		trimmed[i] = strings.TrimSpace(p)
	}
	return trimmed
}
