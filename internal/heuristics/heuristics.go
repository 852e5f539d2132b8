// Package heuristics finds common Java code smells, scores them, and applies
// mechanical rewrites for the ones that can be fixed without a model.
package heuristics

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kiranshivaraju/codereview/pkg/models"
)

// ErrUnparseable is returned by Validate when the source is not a plausible
// Java compilation unit.
var ErrUnparseable = errors.New("unable to parse source")

// Issue messages. Penalty classifies issues by these phrases.
const (
	MsgPrintln       = "Use of System.out.println: prefer a logging framework (SLF4J/Logback)."
	MsgTodo          = "Found TODO/FIXME comment: address before production."
	MsgCredential    = "Possible hard-coded credential pattern: move secrets to config/secrets manager."
	MsgBroadCatch    = "Broad catch of Exception: catch specific exceptions and avoid swallowing errors."
	MsgSQLConcat     = "Possible SQL string concatenation: use PreparedStatement to prevent SQL injection."
	MsgParseFailure  = "Unable to parse Java file. Provide a valid .java file."
	longMethodFormat = "Long method '%s' (%d lines): consider refactoring."

	// LongMethodLines is the longest method body, in lines, that is not flagged.
	LongMethodLines = 50

	// MinScore is the floor applied to the score of any parsable source.
	MinScore = 40
)

// Detection regexes compiled once at package init.
var (
	rePrint      = regexp.MustCompile(`\bSystem\s*\.\s*out\s*\.\s*print(?:ln)?\s*\(`)
	reTodo       = regexp.MustCompile(`TODO|FIXME`)
	reCredential = regexp.MustCompile(`(?i)(password\s*=\s*".+?"|secret\s*=\s*".+?"|API_KEY\s*=\s*".+?")`)
	reBroadCatch = regexp.MustCompile(`(?i)catch\s*\(\s*Exception\s+\w+\s*\)`)
	reSQLConcat  = regexp.MustCompile(`(?i)execute(Query|Update)\s*\(.*\+.*\)`)
	reTypeDecl   = regexp.MustCompile(`\b(class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)
	reMethod     = regexp.MustCompile(`(?m)^[ \t]*(?:@[\w.]+(?:\([^)]*\))?\s+)*` +
		`(?:(?:public|protected|private|static|final|abstract|synchronized|native|default|strictfp)\s+)*` +
		`(?:<[^>{};]*>\s*)?` +
		`([\w$.]+(?:<[^{};()]*>)?(?:\[\])*)\s+([\w$]+)\s*\([^;{}]*\)\s*(?:throws\s+[\w$.,\s]+?)?\s*\{`)
)

// statement keywords that reMethod can mistake for a return type or name
var notMethod = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"synchronized": true, "return": true, "new": true, "else": true,
	"throw": true, "do": true, "try": true, "case": true, "record": true,
}

// Validate checks that source lexes cleanly, has balanced brackets outside
// comments and literals, and declares at least one type.
func Validate(source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("%w: empty source", ErrUnparseable)
	}

	sc, err := scan(source)
	if err != nil {
		return err
	}

	var stack []int
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for i := 0; i < len(sc.masked); i++ {
		switch c := sc.masked[i]; c {
		case '(', '[', '{':
			stack = append(stack, i)
		case ')', ']', '}':
			if len(stack) == 0 || sc.masked[stack[len(stack)-1]] != pairs[c] {
				return fmt.Errorf("%w: unexpected %q at line %d", ErrUnparseable, c, sc.line(i))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return fmt.Errorf("%w: unclosed %q from line %d", ErrUnparseable, sc.masked[open], sc.line(open))
	}

	if !reTypeDecl.MatchString(sc.masked) {
		return fmt.Errorf("%w: no type declaration", ErrUnparseable)
	}
	return nil
}

// FindIssues runs every detector over source. Issues are grouped by detector
// and ordered by position within each group. Lines are 1-based.
func FindIssues(source string) []models.Issue {
	sc := scanLenient(source)
	issues := []models.Issue{}

	// console output in code only
	for _, m := range rePrint.FindAllStringIndex(sc.masked, -1) {
		issues = append(issues, models.Issue{Line: sc.line(m[0]), Message: MsgPrintln})
	}

	for _, c := range sc.comments {
		for _, m := range reTodo.FindAllStringIndex(sc.src[c.start:c.end], -1) {
			issues = append(issues, models.Issue{Line: sc.line(c.start + m[0]), Message: MsgTodo})
		}
	}

	// credentials live inside string literals, so match the raw source
	for _, m := range reCredential.FindAllStringIndex(sc.src, -1) {
		issues = append(issues, models.Issue{Line: sc.line(m[0]), Message: MsgCredential})
	}

	for _, m := range reBroadCatch.FindAllStringIndex(sc.masked, -1) {
		issues = append(issues, models.Issue{Line: sc.line(m[0]), Message: MsgBroadCatch})
	}

	for _, m := range reSQLConcat.FindAllStringIndex(sc.masked, -1) {
		issues = append(issues, models.Issue{Line: sc.line(m[0]), Message: MsgSQLConcat})
	}

	for _, lm := range longMethods(sc) {
		issues = append(issues, models.Issue{
			Line:    lm.line,
			Message: fmt.Sprintf(longMethodFormat, lm.name, lm.lines),
		})
	}

	return issues
}

type longMethod struct {
	name  string
	line  int
	lines int
}

func longMethods(sc *scanned) []longMethod {
	var out []longMethod
	for _, m := range reMethod.FindAllStringSubmatchIndex(sc.masked, -1) {
		retType := sc.masked[m[2]:m[3]]
		name := sc.masked[m[4]:m[5]]
		if notMethod[retType] || notMethod[name] {
			continue
		}

		open := m[1] - 1
		closeAt := sc.matchingBrace(open)
		if closeAt < 0 {
			continue
		}

		// start at the return type so leading annotations are not counted
		start := sc.line(m[2])
		lines := sc.line(closeAt) - start + 1
		if lines > LongMethodLines {
			out = append(out, longMethod{name: name, line: start, lines: lines})
		}
	}
	return out
}

// Penalty sums the per-issue penalties, capped at 100.
func Penalty(issues []models.Issue) int {
	penalty := 0
	for _, iss := range issues {
		s := iss.Message
		switch {
		case strings.Contains(s, "Long method"):
			penalty += 15
		case strings.Contains(s, "System.out.println"):
			penalty += 5
		case strings.Contains(s, "TODO") || strings.Contains(s, "FIXME"):
			penalty += 8
		case strings.Contains(s, "hard-coded"):
			penalty += 30
		case strings.Contains(s, "Broad catch"):
			penalty += 10
		case strings.Contains(s, "SQL"):
			penalty += 25
		default:
			penalty += 5
		}
	}
	return min(penalty, 100)
}

// Score is 100 for a clean source and otherwise 100 minus the penalty,
// floored at MinScore.
func Score(issues []models.Issue) int {
	if len(issues) == 0 {
		return 100
	}
	return max(100-Penalty(issues), MinScore)
}
