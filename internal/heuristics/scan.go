package heuristics

import (
	"fmt"
	"sort"
	"strings"
)

// comment is a [start,end) byte range of a comment in the source.
type comment struct {
	start, end int
	block      bool
}

// scanned holds a source alongside a masked copy of the same length in which
// comments and the contents of literals are blanked out. Newlines are kept so
// offsets and line numbers agree between the two.
type scanned struct {
	src        string
	masked     string
	comments   []comment
	lineStarts []int
}

func scan(src string) (*scanned, error) {
	s := &scanned{src: src, lineStarts: lineStarts(src)}
	buf := []byte(src)
	blank := func(from, to int) {
		for k := from; k < to && k < len(buf); k++ {
			if buf[k] != '\n' {
				buf[k] = ' '
			}
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			s.comments = append(s.comments, comment{start: i, end: end})
			blank(i, end)
			i = end

		case strings.HasPrefix(src[i:], "/*"):
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated block comment at line %d", ErrUnparseable, s.line(i))
			}
			end = i + 2 + end + 2
			s.comments = append(s.comments, comment{start: i, end: end, block: true})
			blank(i, end)
			i = end

		case strings.HasPrefix(src[i:], `"""`):
			end := strings.Index(src[i+3:], `"""`)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated text block at line %d", ErrUnparseable, s.line(i))
			}
			end = i + 3 + end
			blank(i+3, end)
			i = end + 3

		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c && src[j] != '\n' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) || src[j] != c {
				return nil, fmt.Errorf("%w: unterminated literal at line %d", ErrUnparseable, s.line(i))
			}
			blank(i+1, j)
			i = j + 1

		default:
			i++
		}
	}

	s.masked = string(buf)
	return s, nil
}

// scanLenient falls back to treating the whole source as code when it does
// not lex cleanly.
func scanLenient(src string) *scanned {
	if s, err := scan(src); err == nil {
		return s
	}
	return &scanned{src: src, masked: src, lineStarts: lineStarts(src)}
}

// line returns the 1-based line number of byte offset off.
func (s *scanned) line(off int) int {
	return sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > off })
}

func lineStarts(src string) []int {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// matchingBrace returns the offset of the '}' closing the '{' at open, or -1.
func (s *scanned) matchingBrace(open int) int {
	depth := 0
	for i := open; i < len(s.masked); i++ {
		switch s.masked[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
