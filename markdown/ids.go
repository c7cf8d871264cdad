package markdown

import (
	"fmt"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"
)

// headingIDs generates heading ids like goldmark's default, but from the
// heading text with inline HTML tags removed. Footnote anchors are expanded
// into the source before conversion and would otherwise end up in the id.
type headingIDs struct {
	values map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{values: make(map[string]bool)}
}

func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	value = util.TrimRightSpace(util.TrimLeftSpace(stripTags(value)))
	var result []byte
	for i := 0; i < len(value); {
		v := value[i]
		l := util.UTF8Len(v)
		if l == 0 {
			l = 1
		}
		i += int(l)
		if l != 1 {
			continue
		}
		switch {
		case util.IsAlphaNumeric(v):
			if 'A' <= v && v <= 'Z' {
				v += 'a' - 'A'
			}
			result = append(result, v)
		case util.IsSpace(v) || v == '-' || v == '_':
			result = append(result, '-')
		}
	}
	if len(result) == 0 {
		if kind == ast.KindHeading {
			result = []byte("heading")
		} else {
			result = []byte("id")
		}
	}
	if !s.values[string(result)] {
		s.values[string(result)] = true
		return result
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("%s-%d", result, i)
		if !s.values[id] {
			s.values[id] = true
			return []byte(id)
		}
	}
}

func (s *headingIDs) Put(value []byte) {
	s.values[string(value)] = true
}

// stripTags drops everything between '<' and the next '>'.
func stripTags(b []byte) []byte {
	out := make([]byte, 0, len(b))
	inTag := false
	for _, c := range b {
		switch {
		case inTag:
			inTag = c != '>'
		case c == '<':
			inTag = true
		default:
			out = append(out, c)
		}
	}
	return out
}
