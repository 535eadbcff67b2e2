// Package lexer tokenizes the C-subset source language described in
// spec.md §4.1. It is a hand-written, single-pass scanner: no regular
// expressions, no backtracking beyond the bounded lookahead each rule
// documents.
package lexer

import (
	"strconv"

	"github.com/riicchhaarrd/rcc/token"
)

// Lexer holds scanning state for a single source buffer. It is not safe
// for concurrent use; spec.md §5 requires strictly single-pass, sequential
// scanning.
type Lexer struct {
	src    []byte
	pos    int
	lineno int
	flags  token.Flags
}

// New creates a Lexer over src with the given flags.
func New(src []byte, flags token.Flags) *Lexer {
	return &Lexer{src: src, lineno: 1, flags: flags}
}

// Lex tokenizes src in one pass and returns the ordered token sequence,
// terminated by an EOF token. On unterminated literals or malformed
// numbers it returns the tokens produced so far and a non-nil error, per
// spec.md §7's "lexer errors abort lexing" propagation policy.
func Lex(src []byte, flags token.Flags) ([]token.Token, error) {
	l := New(src, flags)
	var tokens []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

// tryConsume consumes the next byte if it equals want, reporting whether
// it matched. The cursor is restored on mismatch — the lexer's only
// backtracking, bounded to a single byte of lookahead.
func (l *Lexer) tryConsume(want byte) bool {
	if l.peekByte() == want {
		l.pos++
		return true
	}
	return false
}

// next scans and returns the next token, skipping whitespace and comments
// first.
func (l *Lexer) next() (token.Token, error) {
	start := l.pos
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	charStart := l.pos
	line := l.lineno

	mk := func(k token.Kind) token.Token {
		return token.Token{
			Kind: k,
			Line: line,
			Span: token.Span{Start: start, End: l.pos, CharStart: charStart},
		}
	}

	if l.eof() {
		return mk(token.EOF), nil
	}

	c := l.peekByte()

	// Multi-character operators, greedy with rollback.
	if tok, ok, err := l.scanOperator(mk); ok || err != nil {
		return tok, err
	}

	switch {
	case c == '\n':
		// Only reached when NewlineToken is set — skipWhitespaceAndComments
		// stops just short of consuming it in that mode.
		l.pos++
		l.lineno++
		return mk(token.Kind('\n')), nil
	case c == '"':
		return l.scanString(mk)
	case c == '\'':
		return l.scanChar(mk)
	case c == '0' && l.peekAt(1) == 'x':
		l.pos += 2
		return l.scanHex(mk)
	case c >= '0' && c <= '9':
		return l.scanNumber(mk)
	case isIdentStart(c):
		return l.scanIdent(mk)
	case isSinglePunct(c):
		l.pos++
		return mk(token.Kind(c)), nil
	}

	l.pos++
	return mk(token.Invalid), nil
}

// skipWhitespaceAndComments advances past spaces, tabs, carriage returns,
// newlines, // line comments, /* */ block comments (not nested) and, unless
// BackslashToken is set, backslash line continuations.
// Newlines bump lineno even inside comments. Returns early (without
// consuming the newline) when NewlineToken is set and a bare newline is
// next.
func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		c := l.peekByte()
		switch {
		case c == '\n':
			if l.flags&token.NewlineToken != 0 {
				return nil
			}
			l.pos++
			l.lineno++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '\\':
			if l.flags&token.BackslashToken != 0 {
				return nil
			}
			// Line continuation: the backslash and a newline directly
			// after it are skipped.
			l.pos++
			if l.peekByte() == '\n' {
				l.pos++
				l.lineno++
			}
		case c == '/' && l.peekAt(1) == '/':
			l.pos += 2
			for !l.eof() && l.peekByte() != '\n' {
				l.pos++
			}
		case c == '/' && l.peekAt(1) == '*':
			l.pos += 2
			closed := false
			for !l.eof() {
				if l.peekByte() == '\n' {
					l.lineno++
				}
				if l.peekByte() == '*' && l.peekAt(1) == '/' {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			_ = closed // an unterminated block comment simply runs to EOF
		default:
			return nil
		}
	}
	return nil
}

// scanOperator recognizes the multi-character operators in spec.md §4.1
// rule 2. It restores the cursor and reports ok=false on any mismatch so
// the caller falls through to single-byte punctuation.
func (l *Lexer) scanOperator(mk func(token.Kind) token.Token) (token.Token, bool, error) {
	save := l.pos
	c := l.peekByte()
	two := func(second byte, kind token.Kind) (token.Token, bool, error) {
		if l.peekAt(1) == second {
			l.pos += 2
			return mk(kind), true, nil
		}
		return token.Token{}, false, nil
	}
	switch c {
	case '<':
		if t, ok, err := two('<', token.Shl); ok {
			return t, ok, err
		}
		return two('=', token.Le)
	case '>':
		if t, ok, err := two('>', token.Shr); ok {
			return t, ok, err
		}
		return two('=', token.Ge)
	case '=':
		return two('=', token.Eq)
	case '!':
		return two('=', token.Ne)
	case '+':
		if t, ok, err := two('=', token.AddAssign); ok {
			return t, ok, err
		}
		return two('+', token.Inc)
	case '-':
		if t, ok, err := two('>', token.Arrow); ok {
			return t, ok, err
		}
		if t, ok, err := two('=', token.SubAssign); ok {
			return t, ok, err
		}
		return two('-', token.Dec)
	case '*':
		return two('=', token.MulAssign)
	case '/':
		return two('=', token.DivAssign)
	case '%':
		return two('=', token.ModAssign)
	case '^':
		return two('=', token.XorAssign)
	case '|':
		return two('=', token.OrAssign)
	case '&':
		return two('=', token.AndAssign)
	case '.':
		if l.peekAt(1) == '.' && l.peekAt(2) == '.' {
			l.pos += 3
			return mk(token.Ellipsis), true, nil
		}
		l.pos = save
		return token.Token{}, false, nil
	}
	return token.Token{}, false, nil
}

// scanString scans a "..."-delimited literal. Backslash escapes \n \r \t
// \\ resolve to control bytes; any other escaped byte passes through
// unchanged. The empty string is legal.
func (l *Lexer) scanString(mk func(token.Kind) token.Token) (token.Token, error) {
	line := l.lineno
	l.pos++ // opening quote
	var out []byte
	for {
		if l.eof() {
			return token.Token{}, &Error{Line: line, Err: ErrUnterminatedLiteral}
		}
		c := l.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if l.eof() {
				return token.Token{}, &Error{Line: line, Err: ErrUnterminatedLiteral}
			}
			e := l.advance()
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, e)
			}
			continue
		}
		out = append(out, c)
	}
	if len(out) > token.MaxIdentLen {
		return token.Token{}, &Error{Line: line, Err: ErrIdentifierTooLong}
	}
	t := mk(token.String)
	t.Ident = string(out)
	return t, nil
}

// scanChar scans a 'c' character constant, producing an Integer token
// holding the byte's value. Empty character constants ('') are an error.
func (l *Lexer) scanChar(mk func(token.Kind) token.Token) (token.Token, error) {
	line := l.lineno
	l.pos++ // opening quote
	if l.peekByte() == '\'' {
		return token.Token{}, &Error{Line: line, Err: ErrEmptyCharacterConstant}
	}
	if l.eof() {
		return token.Token{}, &Error{Line: line, Err: ErrUnterminatedLiteral}
	}
	value := l.advance()
	if l.eof() || l.peekByte() != '\'' {
		return token.Token{}, &Error{Line: line, Err: ErrUnterminatedLiteral}
	}
	l.pos++ // closing quote
	t := mk(token.Integer)
	t.Int = int64(value)
	return t, nil
}

// scanHex scans hex digits after an already-consumed "0x" prefix.
func (l *Lexer) scanHex(mk func(token.Kind) token.Token) (token.Token, error) {
	start := l.pos
	for !l.eof() && isHexDigit(l.peekByte()) {
		l.pos++
	}
	digits := string(l.src[start:l.pos])
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return token.Token{}, &Error{Line: l.lineno, Err: ErrMalformedNumber}
	}
	t := mk(token.Integer)
	t.Int = int64(v)
	return t, nil
}

// scanNumber scans a decimal integer or float literal. A second '.' is a
// MalformedNumber error; a trailing 'f' terminates the literal and forces
// float type.
func (l *Lexer) scanNumber(mk func(token.Kind) token.Token) (token.Token, error) {
	line := l.lineno
	start := l.pos
	sawDot := false
	isFloat := false
	for !l.eof() {
		c := l.peekByte()
		if c >= '0' && c <= '9' {
			l.pos++
			continue
		}
		if c == '.' {
			if sawDot {
				return token.Token{}, &Error{Line: line, Err: ErrMalformedNumber}
			}
			sawDot = true
			isFloat = true
			l.pos++
			continue
		}
		if c == 'f' {
			isFloat = true
			l.pos++
			break
		}
		break
	}
	text := string(l.src[start:l.pos])
	if isFloat {
		text = trimTrailingF(text)
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token.Token{}, &Error{Line: line, Err: ErrMalformedNumber}
		}
		t := mk(token.Float)
		t.Float = v
		return t, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token.Token{}, &Error{Line: line, Err: ErrMalformedNumber}
	}
	t := mk(token.Integer)
	t.Int = v
	return t, nil
}

func trimTrailingF(s string) string {
	if len(s) > 0 && s[len(s)-1] == 'f' {
		return s[:len(s)-1]
	}
	return s
}

// scanIdent scans [A-Za-z_$][A-Za-z0-9_$]* and, unless ForceIdent is set,
// retypes it to a keyword/type-name Kind.
func (l *Lexer) scanIdent(mk func(token.Kind) token.Token) (token.Token, error) {
	line := l.lineno
	start := l.pos
	l.pos++ // first char already validated by caller
	for !l.eof() && isIdentCont(l.peekByte()) {
		l.pos++
	}
	name := string(l.src[start:l.pos])
	if len(name) > token.MaxIdentLen {
		return token.Token{}, &Error{Line: line, Err: ErrIdentifierTooLong}
	}
	kind := token.Ident
	if l.flags&token.ForceIdent == 0 {
		if k, ok := token.LookupKeyword(name); ok {
			kind = k
		}
	}
	t := mk(kind)
	t.Ident = name
	return t, nil
}

func isIdentStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' || c == '$'
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isSinglePunct reports whether c is one of the single-byte punctuation
// characters spec.md §4.1 rule 7 passes through with type = byte value.
// Printable ASCII not otherwise claimed by an operator or literal rule
// falls through here too (e.g. ',', ';', ':', '(', ')').
func isSinglePunct(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}
