package expr

// Lexer tokenizes a single expression. The grammar is line-free, so the
// lexer tracks byte offsets only.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

// NewLexer creates a lexer over the given expression source.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken scans and returns the next token.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Pos = l.position

	switch l.ch {
	case '+':
		tok = l.newToken(PLUS)
	case '-':
		tok = l.newToken(MINUS)
	case '*':
		tok = l.newToken(ASTERISK)
	case '/':
		tok = l.newToken(SLASH)
	case '%':
		tok = l.newToken(PERCENT)
	case '?':
		tok = l.newToken(QUESTION)
	case ':':
		tok = l.newToken(COLON)
	case '(':
		tok = l.newToken(LPAREN)
	case ')':
		tok = l.newToken(RPAREN)
	case '=':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(EQ)
		} else {
			tok = l.newToken(ILLEGAL)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(NOT_EQ)
		} else {
			tok = l.newToken(NOT)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(LTE)
		} else {
			tok = l.newToken(LT)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(GTE)
		} else {
			tok = l.newToken(GT)
		}
	case '&':
		if l.peekChar() == '&' {
			tok = l.twoCharToken(AND)
		} else {
			tok = l.newToken(ILLEGAL)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.twoCharToken(OR)
		} else {
			tok = l.newToken(ILLEGAL)
		}
	case '\'', '"':
		literal, ok := l.readString(l.ch)
		tok.Literal = literal
		if ok {
			tok.Type = STRING
		} else {
			tok.Type = ILLEGAL
		}
		return tok
	case 0:
		tok.Literal = ""
		tok.Type = EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = lookupIdent(tok.Literal)
			return tok
		}
		if isDigit(l.ch) {
			tok.Literal = l.readNumber()
			tok.Type = NUMBER
			return tok
		}
		tok = l.newToken(ILLEGAL)
	}

	l.readChar()
	return tok
}

func (l *Lexer) newToken(t TokenType) Token {
	return Token{Type: t, Literal: string(l.ch), Pos: l.position}
}

func (l *Lexer) twoCharToken(t TokenType) Token {
	pos := l.position
	ch := l.ch
	l.readChar()
	return Token{Type: t, Literal: string(ch) + string(l.ch), Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	// Fractional part
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// readString consumes a quoted string. Returns the unquoted content and
// whether the closing quote was found. Backslash escapes the quote
// character and backslash itself.
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar() // consume opening quote
	var out []byte
	for {
		switch l.ch {
		case 0:
			return string(out), false
		case '\\':
			next := l.peekChar()
			if next == quote || next == '\\' {
				l.readChar()
				out = append(out, l.ch)
				l.readChar()
				continue
			}
			out = append(out, l.ch)
			l.readChar()
		case quote:
			l.readChar() // consume closing quote
			return string(out), true
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
