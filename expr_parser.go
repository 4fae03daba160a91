package blockstate

import (
	"fmt"
	"strings"

	exprast "github.com/expr-lang/expr/ast"
	exprparser "github.com/expr-lang/expr/parser"
)

// exprParser reads the record grammar with the expr-lang parser. Only the
// syntax tree is inspected; nothing is compiled or run.
type exprParser struct{}

// NewExprParser constructs a Parser backed by github.com/expr-lang/expr.
func NewExprParser() Parser {
	return exprParser{}
}

func (exprParser) Parse(text string) (Record, error) {
	if strings.TrimSpace(text) == "" {
		return Record{}, &ParseError{Engine: "expr", Input: text, Err: fmt.Errorf("record must not be empty")}
	}
	tree, err := exprparser.Parse(quoteBareKeys(text))
	if err != nil {
		return Record{}, &ParseError{Engine: "expr", Input: text, Err: err}
	}
	fields, err := literalMap(tree.Node)
	if err != nil {
		return Record{}, &ParseError{Engine: "expr", Input: text, Err: err}
	}
	return recordFromMap("expr", text, fields)
}

// quoteBareKeys wraps unquoted map keys in single quotes so words the expr
// lexer treats as operators (in, not, matches, let, and, or, contains,
// startsWith, endsWith) still read as keys. A key is a run of letters, digits
// or underscores that follows '{' or ',' and precedes ':'. Quoted strings are
// copied through unchanged.
func quoteBareKeys(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	keyPosition := false
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(text, i)
			b.WriteString(text[i:end])
			i = end
			keyPosition = false
		case c == '{' || c == ',':
			b.WriteByte(c)
			i++
			keyPosition = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(c)
			i++
		case keyPosition && isKeyByte(c):
			end := i
			for end < len(text) && isKeyByte(text[end]) {
				end++
			}
			next := end
			for next < len(text) && (text[next] == ' ' || text[next] == '\t') {
				next++
			}
			if next < len(text) && text[next] == ':' {
				b.WriteByte('\'')
				b.WriteString(text[i:end])
				b.WriteByte('\'')
			} else {
				b.WriteString(text[i:end])
			}
			i = end
			keyPosition = false
		default:
			b.WriteByte(c)
			i++
			keyPosition = false
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the string literal opened at start.
// An unterminated literal runs to the end of text.
func skipQuoted(text string, start int) int {
	quote := text[start]
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(text)
}

func isKeyByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func literalMap(node exprast.Node) (map[string]any, error) {
	m, ok := node.(*exprast.MapNode)
	if !ok {
		return nil, fmt.Errorf("expected map literal, got %T", node)
	}
	out := make(map[string]any, len(m.Pairs))
	for _, pairNode := range m.Pairs {
		pair, ok := pairNode.(*exprast.PairNode)
		if !ok {
			return nil, fmt.Errorf("expected key/value pair, got %T", pairNode)
		}
		key, ok := pair.Key.(*exprast.StringNode)
		if !ok {
			return nil, fmt.Errorf("map key must be literal, got %T", pair.Key)
		}
		if _, dup := out[key.Value]; dup {
			return nil, fmt.Errorf("duplicate key %q", key.Value)
		}
		value, err := literalValue(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key.Value, err)
		}
		out[key.Value] = value
	}
	return out, nil
}

func literalValue(node exprast.Node) (any, error) {
	switch n := node.(type) {
	case *exprast.StringNode:
		return n.Value, nil
	case *exprast.IntegerNode:
		return n.Value, nil
	case *exprast.FloatNode:
		return n.Value, nil
	case *exprast.BoolNode:
		return n.Value, nil
	case *exprast.MapNode:
		return literalMap(n)
	default:
		return nil, fmt.Errorf("unsupported literal %T", node)
	}
}
