package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with optional language tag.
// Captures: (1) optional language, (2) content.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n?(.+?)` + "```")

// ExtractionError is returned when no recoverable structure exists in a model
// response. It carries the raw text so the caller can decide whether to build
// a minimal structure from it or surface the failure as a warning.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return "no valid JSON payload found in model response"
}

// ExtractJSON recovers a JSON payload from a model response that may be
// wrapped in prose or markdown. Strategies are tried in order, first
// success wins:
//
//  1. The whole text parses as JSON.
//  2. A ```json (or untagged) fenced block parses.
//  3. The first balanced {...} or [...] span parses.
//  4. Light repair (trailing commas, unterminated strings/brackets) applied
//     to the best candidate, then reparse.
//
// It never panics on malformed input. On failure the error is an
// *ExtractionError carrying the original text.
func ExtractJSON(response string) (string, error) {
	trimmed := strings.TrimSpace(response)

	// Step 1: the whole response is already JSON
	if isValidJSON(trimmed) {
		return trimmed, nil
	}

	// Step 2: fenced code block
	if jsonStr, found := extractFromCodeBlock(response); found {
		return jsonStr, nil
	}

	// Step 3: first balanced bracket span
	candidate, found := extractBracketSpan(response)
	if found && isValidJSON(candidate) {
		return candidate, nil
	}

	// Step 4: repair the best candidate we have and retry
	if candidate == "" {
		candidate = trimmed
	}
	repaired := repairJSON(candidate)
	if isValidJSON(repaired) {
		return repaired, nil
	}

	return "", &ExtractionError{Raw: response}
}

// ExtractJSONAs extracts a JSON payload and unmarshals it into T.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal extracted JSON: %w", err)
	}

	return result, nil
}

// extractFromCodeBlock finds a parseable JSON payload in markdown code blocks.
func extractFromCodeBlock(response string) (string, bool) {
	matches := codeBlockPattern.FindAllStringSubmatch(response, -1)

	for _, match := range matches {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])

		// Accept json-tagged or untagged blocks; skip other languages
		if lang != "" && lang != "json" {
			continue
		}

		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}

		if isValidJSON(content) {
			return content, true
		}
		if repaired := repairJSON(content); isValidJSON(repaired) {
			return repaired, true
		}
	}

	return "", false
}

// extractBracketSpan returns the first balanced {...} or [...] span by
// bracket-depth scanning. The span may still be invalid JSON; the caller
// validates. When brackets never balance the remainder of the text is
// returned so the repair pass has something to work with.
func extractBracketSpan(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start := -1
	closeChar := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		closeChar = ']'
	}

	if start < 0 {
		return "", false
	}

	content := response[start:]
	if span := findMatchingBracket(content, closeChar); span != "" {
		return span, true
	}

	// Unbalanced: hand back the tail for the repair pass
	return content, true
}

// findMatchingBracket finds the complete JSON span by matching brackets,
// respecting string literals and escapes.
func findMatchingBracket(s string, closeChar byte) string {
	if len(s) == 0 {
		return ""
	}

	openChar := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return "" // unmatched brackets
}

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON applies light, total repairs to a near-JSON candidate:
// trailing commas are stripped, an unterminated string literal closed, and
// unclosed brackets balanced in last-opened-first-closed order. The result
// still has to survive a real parse before anyone trusts it.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	s = trailingCommaPattern.ReplaceAllString(s, "$1")

	// Walk the candidate tracking open brackets and string state
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		s += `"`
	}

	// A dangling comma before the closers we add would re-break the parse
	s = strings.TrimRight(s, " \t\n\r")
	s = strings.TrimSuffix(s, ",")

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			s += "}"
		} else {
			s += "]"
		}
	}

	return s
}

// isValidJSON checks if a string is a parseable JSON document.
func isValidJSON(s string) bool {
	if s == "" {
		return false
	}
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
