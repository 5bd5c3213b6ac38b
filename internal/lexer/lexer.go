package lexer

import (
	"iter"
	"strconv"
	"unicode/utf8"
)

// Lexer converts source text into tokens on demand.
//
// The first token is scanned by New and is available through First. Each
// call to Next scans one more token. Lexing never fails: input that cannot
// be classified becomes a TokenError token, and every token consumes at
// least one character, so repeated calls always reach TokenEOF.
type Lexer struct {
	source   string
	filename string

	// start is the byte offset of the token being scanned, current the
	// offset of the next unread byte.
	start   int
	current int

	line      int
	lineStart int
	startPos  Position

	first     Token
	lookahead Token

	// headerMode is armed by #include and consumed by the very next scan.
	headerMode bool
}

// New creates a lexer over source and scans its first token. filename is
// only used in positions.
func New(source, filename string) *Lexer {
	l := &Lexer{
		source:   source,
		filename: filename,
		line:     1,
	}
	l.first = l.scan()
	l.lookahead = l.first
	return l
}

// First returns the token scanned when the lexer was created.
func (l *Lexer) First() Token {
	return l.first
}

// Next scans and returns the next token. Once TokenEOF has been produced
// it keeps returning it.
func (l *Lexer) Next() Token {
	if l.lookahead.Type == TokenEOF {
		return l.lookahead
	}
	l.lookahead = l.scan()
	return l.lookahead
}

// Done reports whether the most recently produced token is TokenEOF.
func (l *Lexer) Done() bool {
	return l.lookahead.Type == TokenEOF
}

// Tokens returns the token stream of a freshly created lexer, starting with
// First and ending with the TokenEOF token. The sequence is not restartable.
func (l *Lexer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		tok := l.first
		for {
			if !yield(tok) || tok.Type == TokenEOF {
				return
			}
			tok = l.Next()
		}
	}
}

// Tokenize lexes all of source, including the trailing TokenEOF.
func Tokenize(source, filename string) []Token {
	var tokens []Token
	for tok := range New(source, filename).Tokens() {
		tokens = append(tokens, tok)
	}
	return tokens
}

func (l *Lexer) scan() Token {
	header := l.headerMode
	l.headerMode = false

	l.skipWhitespace()
	l.start = l.current
	l.startPos = l.position()

	if l.isAtEnd() {
		return l.makeToken(TokenEOF)
	}

	ch := l.advance()

	if isLetter(ch) {
		return l.scanIdentifier()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}

	switch ch {
	case '(':
		return l.makeToken(TokenLeftParen)
	case ')':
		return l.makeToken(TokenRightParen)
	case '{':
		return l.makeToken(TokenLeftBrace)
	case '}':
		return l.makeToken(TokenRightBrace)
	case ';':
		return l.makeToken(TokenSemicolon)
	case '+':
		return l.makeToken(TokenPlus)
	case '-':
		return l.makeToken(TokenMinus)
	case '*':
		return l.makeToken(TokenStar)
	case '/':
		// "//" never gets here: skipWhitespace eats comments.
		return l.makeToken(TokenSlash)
	case '~':
		return l.makeToken(TokenTilde)

	case '!':
		if l.match('=') {
			return l.makeToken(TokenNotEqual)
		}
		return l.makeToken(TokenNot)

	case '=':
		if l.match('=') {
			return l.makeToken(TokenEqual)
		}
		return l.makeToken(TokenAssign)

	case '<':
		if header {
			return l.scanHeaderName('>')
		}
		if l.match('=') {
			return l.makeToken(TokenLessEqual)
		}
		return l.makeToken(TokenLess)

	case '>':
		if l.match('=') {
			return l.makeToken(TokenGreaterEqual)
		}
		return l.makeToken(TokenGreater)

	case '&':
		if l.match('&') {
			return l.makeToken(TokenAnd)
		}
		return l.makeToken(TokenBitAnd)

	case '|':
		if l.match('|') {
			return l.makeToken(TokenOr)
		}
		return l.makeToken(TokenBitOr)

	case '"':
		if header {
			return l.scanHeaderName('"')
		}
		return l.errorToken("string literals are not supported")

	case '#':
		return l.scanDirective()

	default:
		return l.errorToken("unexpected character " + strconv.QuoteRune(ch))
	}
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	if ch == '\n' {
		l.line++
		l.lineStart = l.current
	}
	return ch
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current:])
	return ch
}

func (l *Lexer) peekNext() rune {
	if l.isAtEnd() {
		return 0
	}
	_, size := utf8.DecodeRuneInString(l.source[l.current:])
	if l.current+size >= len(l.source) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.source[l.current+size:])
	return ch
}

// match consumes the next character if it is expected.
func (l *Lexer) match(expected rune) bool {
	if l.peek() != expected || l.isAtEnd() {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

// skipWhitespace skips blanks, newlines and // comments.
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.advance()
		case '/':
			if l.peekNext() != '/' {
				return
			}
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanIdentifier() Token {
	for isLetter(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	tt := LookupKeyword(text)
	tok := l.makeToken(tt)
	if tt == TokenIdentifier {
		tok.Value = StringValue(text)
	}
	return tok
}

func (l *Lexer) scanNumber() Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	n, err := strconv.ParseInt(l.source[l.start:l.current], 10, 64)
	if err != nil {
		return l.errorToken("integer literal out of range")
	}
	tok := l.makeToken(TokenNumber)
	tok.Value = IntValue(n)
	return tok
}

// scanDirective scans a preprocessor keyword. The '#' is already consumed
// and must be followed directly by the keyword.
func (l *Lexer) scanDirective() Token {
	for isAlpha(l.peek()) {
		l.advance()
	}
	tt, ok := LookupDirective(l.source[l.start+1 : l.current])
	if !ok {
		return l.errorToken("unknown preprocessor directive")
	}
	if tt == TokenInclude {
		l.headerMode = true
	}
	return l.makeToken(tt)
}

// scanHeaderName scans the rest of <name> or "name" up to the closing
// delimiter. A header name may not cross a line.
func (l *Lexer) scanHeaderName(closing rune) Token {
	for {
		if l.isAtEnd() || l.peek() == '\n' {
			return l.errorToken("unterminated header name")
		}
		if l.advance() == closing {
			break
		}
	}
	name := l.source[l.start+1 : l.current-1]
	if name == "" {
		return l.errorToken("empty header name")
	}
	tok := l.makeToken(TokenHeaderName)
	tok.Value = StringValue(name)
	return tok
}

func (l *Lexer) makeToken(tt TokenType) Token {
	return Token{
		Type:     tt,
		Lexeme:   l.source[l.start:l.current],
		Position: l.startPos,
	}
}

func (l *Lexer) errorToken(reason string) Token {
	tok := l.makeToken(TokenError)
	tok.Err = reason
	return tok
}

func (l *Lexer) position() Position {
	return Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   utf8.RuneCountInString(l.source[l.lineStart:l.current]) + 1,
		Offset:   l.current,
	}
}

func isAlpha(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

func isLetter(ch rune) bool {
	return isAlpha(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
