// Package token defines the lexical token model shared by the lexer and
// the (out-of-scope) parser that builds the AST.
package token

// Kind identifies the lexical class of a token. Printable ASCII punctuation
// (0x20..0x7e) reuses its own byte value as the discriminant, exactly like
// the C original's `tk->type = ch`; everything else lives above 0xff so it
// can never collide with a byte value.
type Kind int32

const asciiBase = 0x100

const (
	// Literals and identifiers.
	Ident Kind = asciiBase + iota
	Integer
	Float
	String

	// Multi-character operators.
	Shl     // <<
	Shr     // >>
	Le      // <=
	Ge      // >=
	Eq      // ==
	Ne      // !=
	AddAssign
	SubAssign
	MulAssign
	DivAssign
	ModAssign
	XorAssign
	OrAssign
	AndAssign
	Arrow // ->
	Inc   // ++
	Dec   // --
	Ellipsis

	// Keywords.
	KwIf
	KwElse
	KwFor
	KwWhile
	KwDo
	KwReturn
	KwBreak
	KwSizeof
	KwConst
	KwStruct
	KwUnion
	KwTypedef
	KwEnum

	// Primitive type names.
	KwChar
	KwShort
	KwInt
	KwLong
	KwFloat
	KwDouble
	KwVoid
	KwUnsigned

	// The escape-hatch literal.
	KwEmit

	// Sentinels.
	EOF
	Invalid
)

// Flags control lexer behavior that callers opt into (see Lexer docs).
type Flags uint32

const (
	// NewlineToken causes '\n' to be emitted as a token instead of being
	// discarded as whitespace.
	NewlineToken Flags = 1 << iota
	// BackslashToken causes '\' to be emitted as a token instead of being
	// treated as a line-continuation marker.
	BackslashToken
	// ForceIdent disables keyword/type-name re-typing: every alphabetic
	// word lexes as a plain identifier.
	ForceIdent
)

// Span records both the raw and character-level extent of a token in the
// source buffer. Start includes any leading whitespace consumed while
// scanning toward this token; CharStart marks the first non-whitespace
// byte. End is exclusive of trailing whitespace.
type Span struct {
	Start      int
	End        int
	CharStart  int
}

// Token is a single lexical unit: a kind tag, a position span, and a
// payload. Only the payload field relevant to Kind is meaningful; the rest
// are zero values, mirroring the C original's tagged union without the
// memory-layout trick.
type Token struct {
	Kind Kind
	Span Span
	Line int

	// Ident holds identifier text (bounded to 31 bytes by the lexer) when
	// Kind == Ident, or an unescaped string's content when Kind == String.
	Ident string
	// Int holds the literal value for Integer tokens (including character
	// constants, which lex as Integer).
	Int int64
	// Float holds the literal value for Float tokens.
	Float float64
}

// String returns a human-readable form, used by token-dump tooling and
// tests; it never needs to round-trip.
func (t Token) String() string {
	switch t.Kind {
	case Ident:
		return "ident(" + t.Ident + ")"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string(" + t.Ident + ")"
	case EOF:
		return "eof"
	case Invalid:
		return "invalid"
	default:
		if t.Kind >= 0x20 && t.Kind <= 0x7e {
			return string(rune(t.Kind))
		}
		return "kind"
	}
}

// keywords maps identifier spellings to their keyword/type-name Kind.
// Populated once; FORCE_IDENT bypasses this lookup entirely.
var keywords = map[string]Kind{
	"if":       KwIf,
	"else":     KwElse,
	"for":      KwFor,
	"while":    KwWhile,
	"do":       KwDo,
	"return":   KwReturn,
	"break":    KwBreak,
	"sizeof":   KwSizeof,
	"const":    KwConst,
	"struct":   KwStruct,
	"union":    KwUnion,
	"typedef":  KwTypedef,
	"enum":     KwEnum,
	"char":     KwChar,
	"short":    KwShort,
	"int":      KwInt,
	"long":     KwLong,
	"float":    KwFloat,
	"double":   KwDouble,
	"void":     KwVoid,
	"unsigned": KwUnsigned,
	"__emit":   KwEmit,
}

// LookupKeyword returns the keyword/type-name Kind for s, if any.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}

// IsPrimitiveType reports whether k names a primitive type keyword.
func IsPrimitiveType(k Kind) bool {
	switch k {
	case KwChar, KwShort, KwInt, KwLong, KwFloat, KwDouble, KwVoid, KwUnsigned:
		return true
	default:
		return false
	}
}

// MaxIdentLen is the maximum byte length of an identifier or string
// payload; longer spellings are a lexer error (IdentifierTooLong).
const MaxIdentLen = 31
