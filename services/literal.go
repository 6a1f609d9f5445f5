package services

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// decodeTopicList parses a string-encoded topic sequence, e.g. `["a b", "a c"]`
// or `('ai', 'ml')`. Only list, tuple, string and number literals are accepted;
// anything else (names, calls, operators) fails with MalformedTopicsError.
// Stored values come from an ingestion pipeline that serialized lists with
// repr-style single quotes, so this cannot be delegated to a JSON decoder.
func decodeTopicList(raw string) ([]string, error) {
	p := &literalParser{input: raw}
	p.skipSpace()
	value, err := p.parseValue(0)
	if err != nil {
		return nil, &MalformedTopicsError{Reason: err.Error()}
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, &MalformedTopicsError{Reason: fmt.Sprintf("trailing content at offset %d", p.pos)}
	}

	seq, ok := value.([]interface{})
	if !ok {
		return nil, &MalformedTopicsError{Reason: "top-level value is not a list or tuple"}
	}

	topics := make([]string, 0, len(seq))
	for _, item := range seq {
		switch v := item.(type) {
		case string:
			topics = append(topics, v)
		case float64:
			topics = append(topics, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, &MalformedTopicsError{Reason: "nested sequences are not topic phrases"}
		}
	}
	return topics, nil
}

// maximum literal nesting, to bound recursion on hostile input
const maxLiteralDepth = 8

type literalParser struct {
	input string
	pos   int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) parseValue(depth int) (interface{}, error) {
	if depth > maxLiteralDepth {
		return nil, fmt.Errorf("literal nesting deeper than %d", maxLiteralDepth)
	}
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch c := p.input[p.pos]; {
	case c == '[':
		return p.parseSequence(']', depth)
	case c == '(':
		return p.parseSequence(')', depth)
	case c == '\'' || c == '"':
		return p.parseString()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *literalParser) parseSequence(closer byte, depth int) ([]interface{}, error) {
	p.pos++ // opener
	items := []interface{}{}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unterminated sequence")
		}
		if p.input[p.pos] == closer {
			p.pos++
			return items, nil
		}
		item, err := p.parseValue(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		p.skipSpace()
		if p.pos < len(p.input) && p.input[p.pos] == ',' {
			p.pos++
			continue
		}
		if p.pos < len(p.input) && p.input[p.pos] == closer {
			p.pos++
			return items, nil
		}
		return nil, fmt.Errorf("expected ',' or %q in sequence", string(closer))
	}
}

func (p *literalParser) parseString() (string, error) {
	quote := p.input[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.input) {
				return "", fmt.Errorf("unterminated escape")
			}
			switch e := p.input[p.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(e)
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string literal")
}

func (p *literalParser) parseNumber() (float64, error) {
	start := p.pos
	if c := p.input[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	n, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number literal %q", p.input[start:p.pos])
	}
	return n, nil
}
