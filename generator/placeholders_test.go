package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute_EscapesPerTemplateKind(t *testing.T) {
	bindings := Bindings{TokenHeaderTitle: `<b>"Hi"</b>`, TokenPrimaryColor: "red; } body {", TokenUniqueID: `x"y`}

	markup, err := Substitute(KindMarkup, "<h1>{{HEADER_TITLE}}</h1>", bindings)
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;b&gt;&#34;Hi&#34;&lt;/b&gt;</h1>", markup)

	style, err := Substitute(KindStyle, ":root { --c: {{PRIMARY_COLOR}}; }", bindings)
	require.NoError(t, err)
	assert.Equal(t, ":root { --c: red  body ; }", style)

	script, err := Substitute(KindScript, `const id = "{{UNIQUE_ID}}";`, bindings)
	require.NoError(t, err)
	assert.Equal(t, `const id = "x\"y";`, script)
}

func TestSubstitute_ReplacesEveryOccurrence(t *testing.T) {
	out, err := Substitute(KindMarkup, "{{COMPANY_NAME}} / {{COMPANY_NAME}} / {{ COMPANY_NAME }}", Bindings{TokenCompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Acme / Acme / Acme", out)
}

func TestSubstitute_IsSinglePass(t *testing.T) {
	bindings := Bindings{
		TokenHeaderTitle:  TokenPrimaryColor.Placeholder(),
		TokenPrimaryColor: "red",
		TokenCompanyName:  "{{CONFIG_SCRIPT}}",
	}

	out, err := Substitute(KindMarkup, "<h1>{{HEADER_TITLE}}</h1><p>{{COMPANY_NAME}}</p>", bindings)
	require.NoError(t, err)
	assert.Equal(t, "<h1>{{PRIMARY_COLOR}}</h1><p>{{CONFIG_SCRIPT}}</p>", out)
	assert.NotContains(t, out, "red")
}

func TestSubstitute_UnknownPlaceholder(t *testing.T) {
	_, err := Substitute(KindMarkup, "<p>{{NOT_A_TOKEN}}</p>", Bindings{})
	require.Error(t, err)
	assert.Equal(t, CodeUnknownPlaceholder, CodeOf(err))
	assert.Contains(t, err.Error(), "NOT_A_TOKEN")

	_, err = Substitute(KindMarkup, "<p>{{header_title}}</p>", Bindings{TokenHeaderTitle: "x"})
	require.Error(t, err)
	assert.Equal(t, CodeUnknownPlaceholder, CodeOf(err), "token names are case sensitive")
}

func TestSubstitute_ConfigScriptOnlyInMarkup(t *testing.T) {
	bindings := Bindings{TokenConfigScript: "<script></script>"}

	_, err := Substitute(KindScript, "{{CONFIG_SCRIPT}}", bindings)
	require.Error(t, err)
	assert.Equal(t, CodeUnknownPlaceholder, CodeOf(err))

	_, err = Substitute(KindStyle, "{{CONFIG_SCRIPT}}", bindings)
	require.Error(t, err)
	assert.Equal(t, CodeUnknownPlaceholder, CodeOf(err))

	out, err := Substitute(KindMarkup, "<body>{{CONFIG_SCRIPT}}</body>", bindings)
	require.NoError(t, err)
	assert.Equal(t, "<body><script></script></body>", out, "config script is inserted verbatim")
}

func TestSubstitute_MissingBinding(t *testing.T) {
	_, err := Substitute(KindMarkup, "<p>{{WELCOME_MESSAGE}}</p>", Bindings{TokenHeaderTitle: "x"})
	require.Error(t, err)
	assert.Equal(t, CodeMissingBinding, CodeOf(err))
	assert.Contains(t, err.Error(), "WELCOME_MESSAGE")
}

func TestSubstitute_EmptyValueIsABinding(t *testing.T) {
	out, err := Substitute(KindMarkup, "<p>{{WELCOME_MESSAGE}}</p>", Bindings{TokenWelcomeMessage: ""})
	require.NoError(t, err)
	assert.Equal(t, "<p></p>", out)
}

func TestSubstitute_NonPlaceholderBraces(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"unterminated", "a {{ b", "a {{ b"},
		{"single braces", "a { b } c", "a { b } c"},
		{"nested object literal", "x = {a: {b: 1}}", "x = {a: {b: 1}}"},
		{"extra leading brace", "{{{UNIQUE_ID}}", "{cw-1"},
		{"no placeholders", "plain", "plain"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Substitute(KindScript, tt.raw, Bindings{TokenUniqueID: "cw-1"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestSubstitute_NoPlaceholderSurvives(t *testing.T) {
	raw := "{{HEADER_TITLE}}{{PRIMARY_COLOR}}{{UNIQUE_ID}}"
	bindings := Bindings{TokenHeaderTitle: "a", TokenPrimaryColor: "b", TokenUniqueID: "c"}

	out, err := Substitute(KindScript, raw, bindings)
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "{{"))
}

func TestPlaceholders_ListsTokensInOrder(t *testing.T) {
	tokens, err := Placeholders(KindMarkup, "{{UNIQUE_ID}} {{HEADER_TITLE}} {{UNIQUE_ID}} {{CONFIG_SCRIPT}}")
	require.NoError(t, err)
	assert.Equal(t, []Token{TokenUniqueID, TokenHeaderTitle, TokenConfigScript}, tokens)

	_, err = Placeholders(KindStyle, "{{BOGUS}}")
	assert.Equal(t, CodeUnknownPlaceholder, CodeOf(err))
}

func TestToken_RoundTripsThroughName(t *testing.T) {
	for tok, name := range tokenNames {
		parsed, ok := ParseToken(name)
		require.True(t, ok, name)
		assert.Equal(t, tok, parsed)
		assert.Equal(t, "{{"+name+"}}", tok.Placeholder())
	}
	_, ok := ParseToken("CONFIG")
	assert.False(t, ok)
	assert.Equal(t, "Token(99)", Token(99).String())
}
