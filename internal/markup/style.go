package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/css/scanner"
)

// ErrStyle is returned when an inline style declaration cannot be tokenized.
var ErrStyle = errors.New("malformed style")

// Style maps lower-cased style property names to their raw values.
type Style map[string]string

// Get returns the value for prop and whether it was declared.
func (s Style) Get(prop string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s[prop]
	return v, ok
}

// ParseStyle parses an inline declaration list such as
// "color: red; width: 50%". Later declarations override earlier ones.
func ParseStyle(raw string) (Style, error) {
	st := Style{}
	sc := scanner.New(raw)
	var (
		prop    string
		val     strings.Builder
		inValue bool
	)
	commit := func() {
		v := strings.TrimSpace(val.String())
		if prop != "" && v != "" {
			st[prop] = v
		}
		prop = ""
		val.Reset()
		inValue = false
	}
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			commit()
			return st, nil
		case scanner.TokenError:
			return nil, fmt.Errorf("%w: %q at column %d", ErrStyle, tok.Value, tok.Column)
		case scanner.TokenComment:
			continue
		case scanner.TokenS:
			if inValue && val.Len() > 0 {
				val.WriteByte(' ')
			}
		case scanner.TokenChar:
			switch tok.Value {
			case ":":
				if !inValue {
					if prop == "" {
						return nil, fmt.Errorf("%w: value without property at column %d", ErrStyle, tok.Column)
					}
					inValue = true
					continue
				}
				val.WriteString(tok.Value)
			case ";":
				commit()
			default:
				if inValue {
					val.WriteString(tok.Value)
				}
			}
		case scanner.TokenIdent:
			if inValue {
				val.WriteString(tok.Value)
			} else {
				prop = strings.ToLower(tok.Value)
			}
		default:
			if inValue {
				val.WriteString(tok.Value)
			}
		}
	}
}
