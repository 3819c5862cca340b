package expr

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENT  // variable names
	NUMBER // integer or floating point literals
	STRING // string literals (single or double quoted)

	// Keywords
	TRUE
	FALSE
	NULL

	// Operators
	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	EQ       // ==
	NOT_EQ   // !=
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	AND      // &&
	OR       // ||
	NOT      // !
	QUESTION // ?
	COLON    // :

	// Delimiters
	LPAREN // (
	RPAREN // )
)

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // byte offset in the input
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// lookupIdent distinguishes keywords from plain identifiers.
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
