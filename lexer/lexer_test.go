package lexer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riicchhaarrd/rcc/lexer"
	"github.com/riicchhaarrd/rcc/token"
)

func kinds(t []token.Token) []token.Kind {
	out := make([]token.Kind, len(t))
	for i, tok := range t {
		out[i] = tok.Kind
	}
	return out
}

func TestLexKeywordsAndPunctuation(t *testing.T) {
	toks, err := lexer.Lex([]byte("if (x) { return 1; }"), 0)
	require.NoError(t, err)
	require.Equal(t, []token.Kind{
		token.KwIf, token.Kind('('), token.Ident, token.Kind(')'),
		token.Kind('{'), token.KwReturn, token.Integer, token.Kind(';'),
		token.Kind('}'), token.EOF,
	}, kinds(toks))
}

func TestLexMultiCharOperators(t *testing.T) {
	toks, err := lexer.Lex([]byte("a <= b >= c == d != e << f >> g += 1"), 0)
	require.NoError(t, err)
	got := kinds(toks)
	assert.Contains(t, got, token.Le)
	assert.Contains(t, got, token.Ge)
	assert.Contains(t, got, token.Eq)
	assert.Contains(t, got, token.Ne)
	assert.Contains(t, got, token.Shl)
	assert.Contains(t, got, token.Shr)
	assert.Contains(t, got, token.AddAssign)
}

func TestLexEllipsisVsDots(t *testing.T) {
	toks, err := lexer.Lex([]byte("f(...)"), 0)
	require.NoError(t, err)
	assert.Equal(t, token.Ellipsis, toks[2].Kind)
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := lexer.Lex([]byte(`"a\nb\\c"`), 0)
	require.NoError(t, err)
	require.Equal(t, token.String, toks[0].Kind)
	assert.Equal(t, "a\nb\\c", toks[0].Ident)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := lexer.Lex([]byte(`"abc`), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexer.ErrUnterminatedLiteral))
}

func TestLexEmptyCharConstant(t *testing.T) {
	_, err := lexer.Lex([]byte(`''`), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexer.ErrEmptyCharacterConstant))
}

func TestLexCharConstant(t *testing.T) {
	toks, err := lexer.Lex([]byte(`'A'`), 0)
	require.NoError(t, err)
	require.Equal(t, token.Integer, toks[0].Kind)
	assert.EqualValues(t, 'A', toks[0].Int)
}

func TestLexHexLiteral(t *testing.T) {
	toks, err := lexer.Lex([]byte("0xFF"), 0)
	require.NoError(t, err)
	require.Equal(t, token.Integer, toks[0].Kind)
	assert.EqualValues(t, 255, toks[0].Int)
}

func TestLexFloatLiteral(t *testing.T) {
	toks, err := lexer.Lex([]byte("3.14 2f"), 0)
	require.NoError(t, err)
	require.Equal(t, token.Float, toks[0].Kind)
	assert.InDelta(t, 3.14, toks[0].Float, 1e-9)
	require.Equal(t, token.Float, toks[1].Kind)
	assert.InDelta(t, 2.0, toks[1].Float, 1e-9)
}

func TestLexMalformedNumberDoubleDot(t *testing.T) {
	_, err := lexer.Lex([]byte("1.2.3"), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexer.ErrMalformedNumber))
}

func TestLexIdentifierTooLong(t *testing.T) {
	long := make([]byte, 32)
	for i := range long {
		long[i] = 'a'
	}
	_, err := lexer.Lex(long, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexer.ErrIdentifierTooLong))
}

func TestLexLineComment(t *testing.T) {
	toks, err := lexer.Lex([]byte("1 // comment\n2"), 0)
	require.NoError(t, err)
	require.Len(t, toks, 3) // 1, 2, eof
	assert.EqualValues(t, 1, toks[0].Int)
	assert.EqualValues(t, 2, toks[1].Int)
}

func TestLexBlockComment(t *testing.T) {
	toks, err := lexer.Lex([]byte("1 /* comment\nspanning lines */ 2"), 0)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 2, toks[1].Line)
}

func TestLexForceIdentDisablesKeywords(t *testing.T) {
	toks, err := lexer.Lex([]byte("if"), token.ForceIdent)
	require.NoError(t, err)
	assert.Equal(t, token.Ident, toks[0].Kind)
}

func TestLexNewlineTokenFlag(t *testing.T) {
	toks, err := lexer.Lex([]byte("1\n2"), token.NewlineToken)
	require.NoError(t, err)
	kk := kinds(toks)
	assert.Contains(t, kk, token.Kind('\n'))
}
