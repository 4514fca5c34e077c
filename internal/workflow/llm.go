package workflow

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/deskbridge/deskbridge/internal/connector"
)

var bracketFieldPattern = regexp.MustCompile(`(?m)^\[([a-zA-Z0-9_]+)\]\s*\n([^\[]*)`)

// formatWithLLM builds a field-listing prompt from input (scalar or
// mapping), calls the connector's completion endpoint at temperature 0.3
// with a 500-token cap, and parses the response into a field->content
// mapping.
func formatWithLLM(ctx context.Context, conn *connector.Connector, endpoint string, input any, fields map[string]string) (map[string]string, *StepError) {
	prompt := buildFormatPrompt(input, fields)

	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
		"max_tokens":  500,
	}

	resp, err := conn.Execute(ctx, endpoint, payload, "POST")
	if err != nil {
		return nil, newStepError(ErrConnectorFailed, "format_with_llm: %v", err)
	}

	content, ok := extractChatContent(resp)
	if !ok {
		return nil, newStepError(ErrConnectorFailed, "format_with_llm: response missing completion content")
	}

	return parseFieldBlocks(content, fields), nil
}

func buildFormatPrompt(input any, fields map[string]string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the text below. ")
	b.WriteString("Respond with one block per field in the form [field_name]\\ncontent.\n\n")

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, fields[name])
	}

	b.WriteString("\nText:\n")
	switch v := input.(type) {
	case string:
		b.WriteString(v)
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, v[k])
		}
	default:
		fmt.Fprintf(&b, "%v", v)
	}

	return b.String()
}

func extractChatContent(resp map[string]any) (string, bool) {
	choices, ok := resp["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := message["content"].(string)
	return content, ok
}

// parseFieldBlocks locates "[field]\ncontent" blocks, falling back to a
// bare "field\ncontent" form when no bracket form is present.
func parseFieldBlocks(content string, fields map[string]string) map[string]string {
	result := make(map[string]string, len(fields))

	matches := bracketFieldPattern.FindAllStringSubmatch(content, -1)
	if len(matches) > 0 {
		for _, m := range matches {
			if _, want := fields[m[1]]; want {
				result[m[1]] = strings.TrimSpace(m[2])
			}
		}
		return result
	}

	for name := range fields {
		re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `\s*\n(.*)$`)
		if m := re.FindStringSubmatch(content); m != nil {
			result[name] = strings.TrimSpace(m[1])
		}
	}
	return result
}
