package generator

import (
	"fmt"
	"strings"

	"github.com/kendall-kelly/chatwidget-api/escape"
)

// Token is one of the closed set of placeholders a template may contain.
type Token int

const (
	TokenHeaderTitle Token = iota + 1
	TokenWelcomeMessage
	TokenPrimaryColor
	TokenSecondaryColor
	TokenTextColor
	TokenBackgroundColor
	TokenFontFamily
	TokenFontSize
	TokenBorderRadius
	TokenWidgetWidth
	TokenWidgetHeight
	TokenWidgetPosition
	TokenTheme
	TokenCompanyName
	TokenUniqueID
	// TokenConfigScript expands to a complete <script> element and is only
	// valid in the markup template.
	TokenConfigScript
)

var tokenNames = map[Token]string{
	TokenHeaderTitle:     "HEADER_TITLE",
	TokenWelcomeMessage:  "WELCOME_MESSAGE",
	TokenPrimaryColor:    "PRIMARY_COLOR",
	TokenSecondaryColor:  "SECONDARY_COLOR",
	TokenTextColor:       "TEXT_COLOR",
	TokenBackgroundColor: "BACKGROUND_COLOR",
	TokenFontFamily:      "FONT_FAMILY",
	TokenFontSize:        "FONT_SIZE",
	TokenBorderRadius:    "BORDER_RADIUS",
	TokenWidgetWidth:     "WIDGET_WIDTH",
	TokenWidgetHeight:    "WIDGET_HEIGHT",
	TokenWidgetPosition:  "WIDGET_POSITION",
	TokenTheme:           "THEME",
	TokenCompanyName:     "COMPANY_NAME",
	TokenUniqueID:        "UNIQUE_ID",
	TokenConfigScript:    "CONFIG_SCRIPT",
}

var tokensByName = func() map[string]Token {
	m := make(map[string]Token, len(tokenNames))
	for tok, name := range tokenNames {
		m[name] = tok
	}
	return m
}()

func (t Token) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Placeholder returns the literal template syntax for t, e.g. "{{UNIQUE_ID}}".
func (t Token) Placeholder() string {
	return placeholderOpen + t.String() + placeholderClose
}

// ParseToken looks a placeholder name up in the closed token set.
func ParseToken(name string) (Token, bool) {
	tok, ok := tokensByName[name]
	return tok, ok
}

// allowedIn reports whether t may appear in a template of the given kind.
func (t Token) allowedIn(kind Kind) bool {
	if t == TokenConfigScript {
		return kind == KindMarkup
	}
	return true
}

// Bindings maps tokens to raw, unescaped values. TokenConfigScript is the
// exception: its value is an already-safe script element.
type Bindings map[Token]string

const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
)

// escaperFor picks the escaper for the grammar of the template being filled.
func escaperFor(kind Kind) func(string) string {
	switch kind {
	case KindMarkup:
		return escape.Markup
	case KindScript:
		return escape.Script
	case KindStyle:
		return escape.Style
	default:
		return escape.Markup
	}
}

// Substitute replaces every placeholder in raw with its escaped binding in a
// single left-to-right pass. Replacement text is never scanned again, so a
// value that looks like a placeholder stays literal text.
//
// A "{{NAME}}" whose NAME is not a known token for this kind fails with
// CodeUnknownPlaceholder; a known token with no binding fails with
// CodeMissingBinding. A "{{" with no matching "}}", or with braces in
// between, is not placeholder syntax and is copied through.
func Substitute(kind Kind, raw string, bindings Bindings) (string, error) {
	esc := escaperFor(kind)

	var out strings.Builder
	out.Grow(len(raw))

	err := scanPlaceholders(kind, raw, out.WriteString, func(tok Token) error {
		value, bound := bindings[tok]
		if !bound {
			return missingBinding(kind, tok)
		}
		if tok == TokenConfigScript {
			out.WriteString(value)
		} else {
			out.WriteString(esc(value))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Placeholders lists the tokens referenced by raw, in order of first use.
func Placeholders(kind Kind, raw string) ([]Token, error) {
	var found []Token
	seen := map[Token]bool{}
	err := scanPlaceholders(kind, raw, func(string) (int, error) { return 0, nil }, func(tok Token) error {
		if !seen[tok] {
			seen[tok] = true
			found = append(found, tok)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// scanPlaceholders walks raw once, handing literal runs to text and each
// recognised token to placeholder.
func scanPlaceholders(kind Kind, raw string, text func(string) (int, error), placeholder func(Token) error) error {
	rest := raw
	for {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			text(rest)
			return nil
		}
		text(rest[:start])
		after := rest[start+len(placeholderOpen):]

		end := strings.Index(after, placeholderClose)
		if end < 0 || strings.ContainsAny(after[:end], "{}") {
			// not placeholder syntax; step one brace so "{{{NAME}}" still
			// finds the placeholder starting at the second brace.
			text(rest[start : start+1])
			rest = rest[start+1:]
			continue
		}

		name := strings.TrimSpace(after[:end])
		tok, ok := ParseToken(name)
		if !ok || !tok.allowedIn(kind) {
			return unknownPlaceholder(kind, name)
		}
		if err := placeholder(tok); err != nil {
			return err
		}
		rest = after[end+len(placeholderClose):]
	}
}
