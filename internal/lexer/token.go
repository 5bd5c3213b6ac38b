package lexer

import "strconv"

// TokenType identifies the kind of a token.
type TokenType int

const (
	// TokenEOF marks the end of input. Its lexeme is empty.
	TokenEOF TokenType = iota

	// TokenError is produced for input the lexer cannot classify. The
	// offending text is in Lexeme and a short reason in Err.
	TokenError

	TokenIdentifier
	TokenNumber
	TokenHeaderName // <stdio.h> or "local.h" after #include

	// Keywords
	TokenInt
	TokenReturn

	// Preprocessor keywords
	TokenInclude
	TokenDefine
	TokenUndef
	TokenPragma

	// Delimiters
	TokenLeftParen
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenSemicolon

	// Operators
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // *
	TokenSlash        // /
	TokenTilde        // ~
	TokenNot          // !
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenAssign       // =
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenBitAnd       // &
	TokenAnd          // &&
	TokenBitOr        // |
	TokenOr           // ||

	tokenTypeCount
)

var tokenNames = [...]string{
	TokenEOF:          "EOF",
	TokenError:        "ERROR",
	TokenIdentifier:   "IDENTIFIER",
	TokenNumber:       "NUMBER",
	TokenHeaderName:   "HEADER_NAME",
	TokenInt:          "INT",
	TokenReturn:       "RETURN",
	TokenInclude:      "PP_INCLUDE",
	TokenDefine:       "PP_DEFINE",
	TokenUndef:        "PP_UNDEF",
	TokenPragma:       "PP_PRAGMA",
	TokenLeftParen:    "LPAREN",
	TokenRightParen:   "RPAREN",
	TokenLeftBrace:    "LBRACE",
	TokenRightBrace:   "RBRACE",
	TokenSemicolon:    "SEMICOLON",
	TokenPlus:         "PLUS",
	TokenMinus:        "MINUS",
	TokenStar:         "STAR",
	TokenSlash:        "SLASH",
	TokenTilde:        "TILDE",
	TokenNot:          "NOT",
	TokenLess:         "LESS",
	TokenLessEqual:    "LESS_EQUAL",
	TokenGreater:      "GREATER",
	TokenGreaterEqual: "GREATER_EQUAL",
	TokenAssign:       "ASSIGN",
	TokenEqual:        "EQUAL",
	TokenNotEqual:     "NOT_EQUAL",
	TokenBitAnd:       "BIT_AND",
	TokenAnd:          "AND",
	TokenBitOr:        "BIT_OR",
	TokenOr:           "OR",
}

// String returns the upper-case name used in diagnostics and token dumps.
func (tt TokenType) String() string {
	if tt >= 0 && tt < tokenTypeCount {
		return tokenNames[tt]
	}
	return "TokenType(" + strconv.Itoa(int(tt)) + ")"
}

// IsKeyword reports whether tt is a C keyword.
func (tt TokenType) IsKeyword() bool {
	return tt == TokenInt || tt == TokenReturn
}

// IsDirective reports whether tt is a preprocessor keyword.
func (tt TokenType) IsDirective() bool {
	return tt >= TokenInclude && tt <= TokenPragma
}

// IsOperator reports whether tt is an operator.
func (tt TokenType) IsOperator() bool {
	return tt >= TokenPlus && tt <= TokenOr
}

// ValueKind tags the payload carried in a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueInt
)

// Value is the decoded payload of a token: the name of an identifier or
// header, or the value of a numeric literal.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
}

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }

// IntValue returns a Value holding n.
func IntValue(n int64) Value { return Value{Kind: ValueInt, Int: n} }

// Token is a single lexical token. Lexeme is always the exact source
// substring the token was scanned from.
type Token struct {
	Type     TokenType
	Lexeme   string
	Position Position
	Value    Value

	// Err explains why a TokenError token was produced.
	Err string
}

// String renders the token for debugging, e.g. "NUMBER(42) at main.c:1:21".
func (t Token) String() string {
	return t.Type.String() + "(" + t.Lexeme + ") at " + t.Position.String()
}

// End returns the position just past the token. Tokens never span lines.
func (t Token) End() Position {
	end := t.Position
	end.Offset += len(t.Lexeme)
	end.Column += len([]rune(t.Lexeme))
	return end
}

var keywords = map[string]TokenType{
	"int":    TokenInt,
	"return": TokenReturn,
}

var directives = map[string]TokenType{
	"include": TokenInclude,
	"define":  TokenDefine,
	"undef":   TokenUndef,
	"pragma":  TokenPragma,
}

// LookupKeyword returns the keyword type for identifier, or TokenIdentifier.
func LookupKeyword(identifier string) TokenType {
	if tt, ok := keywords[identifier]; ok {
		return tt
	}
	return TokenIdentifier
}

// LookupDirective returns the preprocessor keyword type for name, which
// excludes the leading '#'.
func LookupDirective(name string) (TokenType, bool) {
	tt, ok := directives[name]
	return tt, ok
}
