package ai

import (
	"testing"

	"github.com/kiranshivaraju/codereview/internal/heuristics"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestParseSuggestions_NumberedItems(t *testing.T) {
	reply := "### Suggestions for fixing the issues\n" +
		"\n" +
		"1. **Logging**: Replace System.out.println with **SLF4J** logger calls.\n" +
		"2. **TODO**: Too short.\n" +
		"3. **Credentials**: Load the password from an environment variable.\n" +
		"\n" +
		"**Overall Summary:**\n" +
		"The code contains several maintainability problems.\n" +
		"```java\nSystem.out.println(\"x\");\n```\n"

	got := ParseSuggestions(reply)

	assert.Equal(t, []string{
		"Replace System.out.println with SLF4J logger calls.",
		"Load the password from an environment variable.",
		"The code contains several maintainability problems.",
	}, got)
}

func TestParseSuggestions_ShouldSentences(t *testing.T) {
	reply := "- Exceptions should be caught by their specific types to avoid hiding bugs.\n" +
		"It should work.\n" +
		"Addressing these issues will improve **security** and readability."

	got := ParseSuggestions(reply)

	assert.Equal(t, []string{
		"- Exceptions should be caught by their specific types to avoid hiding bugs.",
		"Addressing these issues will improve security and readability.",
	}, got)
}

func TestParseSuggestions_FallbackWhenPrintlnMentioned(t *testing.T) {
	got := ParseSuggestions("Use a logger, not System.out.println.")
	assert.Equal(t, FallbackSuggestions, got)
}

func TestParseSuggestions_Nothing(t *testing.T) {
	assert.Empty(t, ParseSuggestions(""))
	assert.Empty(t, ParseSuggestions("ok"))
}

func TestHeuristicSuggestions(t *testing.T) {
	issues := []models.Issue{
		{Line: 8, Message: heuristics.MsgPrintln},
		{Line: 9, Message: heuristics.MsgPrintln},
		{Line: 4, Message: heuristics.MsgCredential},
		{Line: 3, Message: "Long method 'run' (80 lines): consider refactoring."},
		{Line: 5, Message: heuristics.MsgSQLConcat},
		{Line: 6, Message: "unknown"},
	}

	got := HeuristicSuggestions(issues)

	assert.Len(t, got, 4)
	assert.Equal(t, FallbackSuggestions[0], got[0])
	assert.Equal(t, FallbackSuggestions[2], got[1])
	assert.Contains(t, got[2], "Split long methods")
	assert.Contains(t, got[3], "PreparedStatement")

	assert.Empty(t, HeuristicSuggestions(nil))
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		code  string
		ok    bool
	}{
		{"java fence", "Here:\n```java\nclass A {}\n```\nDone.", "class A {}", true},
		{"last fence wins", "```java\nclass A {\n}\n```\ntext\n```", "class A {\n}\n```\ntext", true},
		{"unterminated", "```java\nclass A {}", "", false},
		{"empty block", "```java\n\n```", "", false},
		{"generic fence", "```\nclass B {}\n```", "class B {}", true},
		{"other language fence", "```kotlin\nclass C\n```", "class C", true},
		{"no fence", "class A {}", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ExtractCode(tt.reply)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}
