// Package escape makes untrusted strings safe to splice into the three
// grammars a generated widget is made of: markup, script and stylesheet.
//
// Each function is total and pure. The output is meant for a single
// designated substitution point (a text node or quoted attribute for Markup,
// a quoted string literal for Script, a declaration value for Style).
package escape

import (
	"html"
	"regexp"
	"strings"
)

// Markup encodes & < > " ' as character references.
func Markup(s string) string {
	return html.EscapeString(s)
}

var scriptCloser = regexp.MustCompile(`(?i)</script`)

var scriptReplacer = strings.NewReplacer(
	`\`, `\\`,
	`&`, `\x26`,
	`<`, `\x3c`,
	`>`, `\x3e`,
	`"`, `\"`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// Script removes closing script-tag sequences and backslash-escapes the
// characters that terminate a quoted string literal.
func Script(s string) string {
	return scriptReplacer.Replace(stripAll(scriptCloser, s))
}

var styleDangerous = regexp.MustCompile(`(?i)@import|expression\s*\(|javascript\s*:|vbscript\s*:|behavior\s*:|-moz-binding|url\s*\(`)

var styleStructural = strings.NewReplacer(
	"/*", "",
	"*/", "",
	"{", "",
	"}", "",
	";", "",
	"<", "",
	">", "",
	`"`, "",
	"'", "",
	`\`, "",
)

// Style strips remote-loading at-rules, script-capable functions and the
// characters that could close the declaration or rule holding the value.
// Parentheses and brackets survive only as matched pairs, so a value can't
// open a block that swallows the rest of the stylesheet.
func Style(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	for {
		next := balanceBlocks(stripAll(styleDangerous, styleStructural.Replace(s)))
		if next == s {
			return s
		}
		s = next
	}
}

var blockClosers = map[rune]rune{')': '(', ']': '['}

// balanceBlocks drops every ( ) [ ] without a properly nested partner.
func balanceBlocks(s string) string {
	runes := []rune(s)
	drop := make([]bool, len(runes))
	var open []int
	for i, r := range runes {
		switch r {
		case '(', '[':
			open = append(open, i)
		case ')', ']':
			if n := len(open); n > 0 && runes[open[n-1]] == blockClosers[r] {
				open = open[:n-1]
			} else {
				drop[i] = true
			}
		}
	}
	for _, i := range open {
		drop[i] = true
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if !drop[i] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripAll deletes matches until none remain, so removal can't reassemble a
// match out of the surrounding fragments.
func stripAll(re *regexp.Regexp, s string) string {
	for re.MatchString(s) {
		s = re.ReplaceAllString(s, "")
	}
	return s
}
