// Package prompt builds the chat prompts sent to AI providers.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/codereview/pkg/models"
)

// Suggest asks for fix suggestions for each issue plus an overall summary.
// revisit switches to the wording used when the source was refactored before.
func Suggest(issues []models.Issue, revisit bool) string {
	var b strings.Builder
	if revisit {
		b.WriteString("You are a senior Java refactoring expert. The code needs further improvements to reach a perfect score. ")
		b.WriteString("The code was previously refactored but still has these issues:\n")
	} else {
		b.WriteString("You are a senior Java reviewer. The file has the following issues:\n")
	}
	for _, iss := range issues {
		fmt.Fprintf(&b, "Line %d: %s\n", iss.Line, iss.Message)
	}
	b.WriteString("\nProvide concise suggestions to fix each issue, and provide a brief overall summary. Reply in plain text.")
	return b.String()
}

// Refactor asks for the complete rewritten source inside a java code fence.
func Refactor(source string, suggestions []string, revisit bool) string {
	var b strings.Builder
	if revisit {
		b.WriteString("You are a senior Java expert tasked with PERFECT code refactoring. ")
		b.WriteString("This code has been previously refactored but still needs improvement. ")
		b.WriteString("Your goal is to achieve 100% quality score by fixing ALL remaining issues.\n\n")
	} else {
		b.WriteString("You are a senior Java developer tasked with refactoring code. ")
	}

	b.WriteString("Here is the Java code to improve:\n\n```java\n")
	b.WriteString(source)
	b.WriteString("\n```\n\n")
	b.WriteString("Apply these improvements to the code:\n")
	for _, s := range suggestions {
		fmt.Fprintf(&b, "- %s\n", s)
	}

	if revisit {
		b.WriteString("\nBe extremely thorough. Fix EVERY issue including those not explicitly mentioned above. ")
		b.WriteString("Focus on clean code principles, proper exception handling, removing any hardcoded values, ")
		b.WriteString("and ensuring code meets highest quality standards.\n")
	}

	b.WriteString("\nProvide ONLY the complete refactored code with no explanations. Begin and end with ```java and ```")
	return b.String()
}
