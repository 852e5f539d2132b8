package heuristics

import (
	"regexp"
	"strings"
)

const (
	loggerImport        = "import org.slf4j.Logger;"
	loggerFactoryImport = "import org.slf4j.LoggerFactory;"
	credentialEnvVar    = `System.getenv("APP_PASSWORD")`
	narrowedException   = "ArithmeticException"
)

var (
	rePrintlnCall   = regexp.MustCompile(`\bSystem\s*\.\s*out\s*\.\s*println\s*\(`)
	reCatchClause   = regexp.MustCompile(`\bcatch\s*\(\s*(Exception)\s+[\w$]+\s*\)`)
	reDeclarator    = regexp.MustCompile(`\b([A-Za-z_$][\w$]*(?:<[^;=(){}]*>)?(?:\[\])*)\s+([A-Za-z_$][\w$]*)\s*=\s*("[^;]*?)\s*;`)
	reImportLine    = regexp.MustCompile(`(?m)^[ \t]*import\s+[\w$.*\s]+;[^\n]*`)
	rePackageDecl   = regexp.MustCompile(`(?m)^[ \t]*package\s+[\w$.]+\s*;`)
	reLoggerField   = regexp.MustCompile(`\blogger\s*[=;]`)
	reTypeDeclBrace = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([A-Za-z_$][\w$]*)[^{;]*\{`)
)

var credentialNames = []string{"password", "secret", "key"}

// Rewrite applies the mechanical fixes that need no model: console output
// goes through an SLF4J logger, TODO/FIXME line comments are dropped, string
// credentials are read from the environment, and broad Exception catches are
// narrowed. Sources that fail Validate are returned unchanged.
func Rewrite(source string) string {
	if Validate(source) != nil {
		return source
	}

	out := source
	for _, step := range []func(string) string{
		replacePrintln,
		dropTodoComments,
		externalizeCredentials,
		narrowCatches,
		addLoggerImports,
		addLoggerField,
	} {
		out = step(out)
	}
	return out
}

type edit struct {
	start, end int
	text       string
}

// applyEdits replaces non-overlapping ranges of src, given in ascending order.
func applyEdits(src string, edits []edit) string {
	if len(edits) == 0 {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	prev := 0
	for _, e := range edits {
		b.WriteString(src[prev:e.start])
		b.WriteString(e.text)
		prev = e.end
	}
	b.WriteString(src[prev:])
	return b.String()
}

func replacePrintln(src string) string {
	sc := scanLenient(src)
	var edits []edit
	for _, m := range rePrintlnCall.FindAllStringIndex(sc.masked, -1) {
		edits = append(edits, edit{start: m[0], end: m[1], text: "logger.info("})
	}
	return applyEdits(src, edits)
}

func dropTodoComments(src string) string {
	sc := scanLenient(src)
	var edits []edit
	for _, c := range sc.comments {
		if c.block {
			continue
		}
		text := strings.ToLower(src[c.start:c.end])
		if !strings.Contains(text, "todo") && !strings.Contains(text, "fixme") {
			continue
		}

		lineStart := strings.LastIndexByte(src[:c.start], '\n') + 1
		if strings.TrimSpace(src[lineStart:c.start]) != "" {
			// trailing comment after code: keep the code
			end := c.start
			for end > lineStart && (src[end-1] == ' ' || src[end-1] == '\t') {
				end--
			}
			edits = append(edits, edit{start: end, end: c.end})
			continue
		}

		end := c.end
		if end < len(src) && src[end] == '\n' {
			end++
		}
		edits = append(edits, edit{start: lineStart, end: end})
	}
	return applyEdits(src, edits)
}

func externalizeCredentials(src string) string {
	sc := scanLenient(src)
	var edits []edit
	for _, m := range reDeclarator.FindAllStringSubmatchIndex(sc.masked, -1) {
		typ := sc.masked[m[2]:m[3]]
		name := strings.ToLower(sc.masked[m[4]:m[5]])
		if notMethod[typ] || !containsAny(name, credentialNames) {
			continue
		}
		// only a lone string literal initializer is a hard-coded credential
		init := strings.TrimSpace(sc.masked[m[6]:m[7]])
		if strings.Count(init, `"`) != 2 || !strings.HasSuffix(init, `"`) {
			continue
		}
		edits = append(edits, edit{start: m[6], end: m[7], text: credentialEnvVar})
	}
	return applyEdits(src, edits)
}

func narrowCatches(src string) string {
	sc := scanLenient(src)
	var edits []edit
	for _, m := range reCatchClause.FindAllStringSubmatchIndex(sc.masked, -1) {
		edits = append(edits, edit{start: m[2], end: m[3], text: narrowedException})
	}
	return applyEdits(src, edits)
}

func addLoggerImports(src string) string {
	var missing []string
	for _, imp := range []string{loggerImport, loggerFactoryImport} {
		if !strings.Contains(src, imp) {
			missing = append(missing, imp)
		}
	}
	if len(missing) == 0 {
		return src
	}
	block := strings.Join(missing, "\n")

	sc := scanLenient(src)
	if imports := reImportLine.FindAllStringIndex(sc.masked, -1); len(imports) > 0 {
		at := imports[len(imports)-1][1]
		return src[:at] + "\n" + block + src[at:]
	}
	if pkg := rePackageDecl.FindStringIndex(sc.masked); pkg != nil {
		return src[:pkg[1]] + "\n\n" + block + src[pkg[1]:]
	}
	return block + "\n\n" + src
}

func addLoggerField(src string) string {
	sc := scanLenient(src)
	if reLoggerField.MatchString(sc.masked) {
		return src
	}
	m := reTypeDeclBrace.FindStringSubmatchIndex(sc.masked)
	if m == nil {
		return src
	}

	name := src[m[2]:m[3]]
	field := "\n    private static final Logger logger = LoggerFactory.getLogger(" + name + ".class);\n"
	return src[:m[1]] + field + src[m[1]:]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
