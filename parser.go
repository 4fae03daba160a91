package blockstate

import (
	"fmt"
	"strconv"
)

// Parser turns a record grammar string such as
// {Name:'minecraft:stone',Properties:{variant:'granite'}} into a Record.
type Parser interface {
	Parse(text string) (Record, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(text string) (Record, error)

// Parse implements Parser.
func (f ParserFunc) Parse(text string) (Record, error) {
	if f == nil {
		return Record{}, &ParseError{Engine: "func", Input: text, Err: fmt.Errorf("parser func is nil")}
	}
	return f(text)
}

var defaultParser = NewExprParser()

// ParseRecord parses text with the default expr-backed parser.
func ParseRecord(text string) (Record, error) {
	return defaultParser.Parse(text)
}

// MustParseRecord is ParseRecord for static tables; it panics on malformed
// input.
func MustParseRecord(text string) Record {
	r, err := ParseRecord(text)
	if err != nil {
		panic(err)
	}
	return r
}

// recordFromMap converts a decoded object literal into a Record. Engines that
// walk a JavaScript object literal (goja) share this path.
func recordFromMap(engine, input string, fields map[string]any) (Record, error) {
	var r Record
	for key, raw := range fields {
		switch key {
		case "Name":
			name, ok := raw.(string)
			if !ok {
				return Record{}, &ParseError{Engine: engine, Input: input, Err: fmt.Errorf("Name must be a string, got %T", raw)}
			}
			r.Name = name
		case "Properties":
			props, ok := raw.(map[string]any)
			if !ok {
				return Record{}, &ParseError{Engine: engine, Input: input, Err: fmt.Errorf("Properties must be a map, got %T", raw)}
			}
			r.Properties = make(map[string]string, len(props))
			for pk, pv := range props {
				value, err := scalarString(pv)
				if err != nil {
					return Record{}, &ParseError{Engine: engine, Input: input, Err: fmt.Errorf("property %q: %w", pk, err)}
				}
				r.Properties[pk] = value
			}
		default:
			return Record{}, &ParseError{Engine: engine, Input: input, Err: fmt.Errorf("unexpected field %q", key)}
		}
	}
	if r.Name == "" {
		return Record{}, &ParseError{Engine: engine, Input: input, Err: fmt.Errorf("missing Name")}
	}
	return r, nil
}

func scalarString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}
