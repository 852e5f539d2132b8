package ai

import (
	"regexp"
	"strings"

	"github.com/kiranshivaraju/codereview/internal/heuristics"
	"github.com/kiranshivaraju/codereview/pkg/models"
)

// FallbackSuggestions are used when a reply mentions println but yields no
// usable suggestion lines.
var FallbackSuggestions = []string{
	"Replace all instances of System.out.println with a logging framework such as SLF4J/Logback",
	"Address TODO/FIXME comments by implementing the necessary changes or removing them",
	"Move hard-coded credentials to a configuration file or use a secrets management tool",
	"Replace broad Exception catching with specific exception handling",
}

var numberedSuggestion = regexp.MustCompile(`^\d+\.\s+\*\*.*\*\*:.*`)

// ParseSuggestions extracts suggestion lines from a free-text model reply.
// Numbered "**Title**: text" items keep the text after the first colon;
// summary sentences are kept whole. Markdown bold markers are stripped.
func ParseSuggestions(reply string) []string {
	var out []string

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		if line == "" ||
			strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "```") ||
			line == "**Overall Summary:**" ||
			strings.Contains(strings.ToLower(line), "suggestions for fixing") {
			continue
		}

		if numberedSuggestion.MatchString(line) {
			_, text, _ := strings.Cut(line, ":")
			text = strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(text), "**", ""))
			if len(text) > 20 {
				out = append(out, text)
			}
			continue
		}

		if strings.HasPrefix(line, "The code contains") ||
			strings.HasPrefix(line, "Addressing these issues") ||
			(len(line) > 50 && strings.Contains(line, "should") && !strings.Contains(line, "```")) {
			cleaned := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
			if len(cleaned) > 30 {
				out = append(out, cleaned)
			}
		}
	}

	if len(out) == 0 && strings.Contains(reply, "System.out.println") {
		out = append(out, FallbackSuggestions...)
	}
	return out
}

// HeuristicSuggestions derives one suggestion per kind of issue found, in order
// of first appearance. It is used when no provider reply is available.
func HeuristicSuggestions(issues []models.Issue) []string {
	var out []string
	seen := make(map[string]bool)
	for _, iss := range issues {
		s := suggestionFor(iss.Message)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func suggestionFor(message string) string {
	switch {
	case message == heuristics.MsgPrintln:
		return FallbackSuggestions[0]
	case message == heuristics.MsgTodo:
		return FallbackSuggestions[1]
	case message == heuristics.MsgCredential:
		return FallbackSuggestions[2]
	case message == heuristics.MsgBroadCatch:
		return FallbackSuggestions[3]
	case message == heuristics.MsgSQLConcat:
		return "Use PreparedStatement with bind parameters instead of concatenating SQL strings"
	case strings.HasPrefix(message, "Long method"):
		return "Split long methods into smaller methods with a single responsibility"
	default:
		return ""
	}
}

// ExtractCode returns the code between the first ```java fence and the last
// fence in reply. A reply with only generic fences falls back to the first
// fenced block. ok is false when no non-empty block is found.
func ExtractCode(reply string) (code string, ok bool) {
	if start := strings.Index(reply, "```java"); start != -1 {
		end := strings.LastIndex(reply, "```")
		if end > start {
			code = strings.TrimSpace(reply[start+len("```java") : end])
			if code != "" {
				return code, true
			}
		}
		return "", false
	}

	start := strings.Index(reply, "```")
	if start == -1 {
		return "", false
	}
	body := reply[start+3:]
	// skip the info string, if any
	nl := strings.IndexByte(body, '\n')
	if nl == -1 {
		return "", false
	}
	body = body[nl+1:]
	end := strings.Index(body, "```")
	if end == -1 {
		return "", false
	}
	code = strings.TrimSpace(body[:end])
	return code, code != ""
}
