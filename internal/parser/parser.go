// Package parser builds an ast.Program from a token stream by recursive
// descent, one function per precedence level.
package parser

import (
	"strings"

	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/parser/ast"
)

// Parser pulls tokens from a lexer on demand. Tokens that have been looked
// at but not consumed wait in pending, so peek can see arbitrarily far
// ahead without re-lexing.
type Parser struct {
	lexer   *lexer.Lexer
	pending []lexer.Token

	pulled    bool // First has been taken from the lexer
	exhausted bool // TokenEOF has been taken from the lexer
}

// New creates a parser reading from l, which must not have been advanced.
func New(l *lexer.Lexer) *Parser {
	return &Parser{lexer: l}
}

// ParseString lexes and parses source in one step.
func ParseString(source, filename string) (*ast.Program, error) {
	return New(lexer.New(source, filename)).Parse()
}

// Parse parses a whole translation unit:
//
//	program   := include* function EOF
//	include   := "#include" HEADER_NAME
//	function  := "int" IDENT "(" ")" "{" statement "}"
//	statement := "return" expression ";"
//
// The first error aborts the parse and no partial tree is returned.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}

	for {
		tok, ok := p.peek(0)
		if !ok || tok.Type != lexer.TokenInclude {
			break
		}
		inc, err := p.parseInclude()
		if err != nil {
			return nil, err
		}
		prog.Includes = append(prog.Includes, inc)
	}

	fn, err := p.parseFunction()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEOF); err != nil {
		return nil, err
	}
	prog.Function = fn
	return prog, nil
}

func (p *Parser) parseInclude() (*ast.Include, error) {
	hash, err := p.expect(lexer.TokenInclude)
	if err != nil {
		return nil, err
	}
	header, err := p.expect(lexer.TokenHeaderName)
	if err != nil {
		return nil, err
	}
	return &ast.Include{
		HashPos: hash.Position,
		Header:  header.Value.Str,
		System:  strings.HasPrefix(header.Lexeme, "<"),
	}, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	intTok, err := p.expect(lexer.TokenInt)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdentifier)
	if err != nil {
		return nil, err
	}
	for _, tt := range []lexer.TokenType{lexer.TokenLeftParen, lexer.TokenRightParen, lexer.TokenLeftBrace} {
		if _, err := p.expect(tt); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	rbrace, err := p.expect(lexer.TokenRightBrace)
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Name:    name.Value.Str,
		NamePos: name.Position,
		IntPos:  intTok.Position,
		Body:    body,
		RBrace:  rbrace.Position,
	}, nil
}

func (p *Parser) parseStatement() (*ast.Statement, error) {
	ret, err := p.expect(lexer.TokenReturn)
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	semi, err := p.expect(lexer.TokenSemicolon)
	if err != nil {
		return nil, err
	}
	return &ast.Statement{ReturnPos: ret.Position, Expr: expr, Semicolon: semi.Position}, nil
}

func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseBinary(PrecOr)
}

// parseBinary parses one left-associative level and delegates operands to
// the next tighter level.
func (p *Parser) parseBinary(prec Precedence) (ast.Expr, error) {
	if prec >= PrecUnary {
		return p.parseUnary()
	}

	left, err := p.parseBinary(prec + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peek(0)
		if !ok || getPrecedence(op.Type) != prec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		kind, _ := binaryKind(op.Type)
		left = &ast.BinaryOp{Kind: kind, OpPos: op.Position, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	op, ok := p.match(unaryOperators...)
	if !ok {
		return p.parsePrimary()
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	kind, _ := unaryKind(op.Type)
	return &ast.UnaryOp{Kind: kind, OpPos: op.Position, Operand: operand}, nil
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	if tok, ok := p.match(lexer.TokenNumber); ok {
		return &ast.Constant{Value: tok.Value.Int, ValuePos: tok.Position, Literal: tok.Lexeme}, nil
	}
	if _, ok := p.match(lexer.TokenLeftParen); ok {
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRightParen); err != nil {
			return nil, err
		}
		return inner, nil
	}

	tok, ok := p.advance()
	if !ok {
		tok = lexer.Token{Type: lexer.TokenEOF}
	}
	return nil, unexpected(tok, "NUMBER or LPAREN")
}

// pull moves one token from the lexer into pending.
func (p *Parser) pull() {
	var tok lexer.Token
	if !p.pulled {
		tok = p.lexer.First()
		p.pulled = true
	} else {
		tok = p.lexer.Next()
	}
	if tok.Type == lexer.TokenEOF {
		p.exhausted = true
	}
	p.pending = append(p.pending, tok)
}

// peek returns the token n positions ahead without consuming anything. It
// reports false when the stream ends before that token.
func (p *Parser) peek(n int) (lexer.Token, bool) {
	for len(p.pending) <= n && !p.exhausted {
		p.pull()
	}
	if n < len(p.pending) {
		return p.pending[n], true
	}
	return lexer.Token{}, false
}

// advance consumes and returns the next token.
func (p *Parser) advance() (lexer.Token, bool) {
	if _, ok := p.peek(0); !ok {
		return lexer.Token{}, false
	}
	tok := p.pending[0]
	p.pending = p.pending[1:]
	return tok, true
}

// expect consumes the next token and fails unless it has type tt.
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	tok, ok := p.advance()
	if !ok {
		return tok, unexpected(lexer.Token{Type: lexer.TokenEOF}, tt.String())
	}
	if tok.Type != tt {
		return tok, unexpected(tok, tt.String())
	}
	return tok, nil
}

// match consumes the next token if its type is one of types.
func (p *Parser) match(types ...lexer.TokenType) (lexer.Token, bool) {
	tok, ok := p.peek(0)
	if !ok {
		return tok, false
	}
	for _, tt := range types {
		if tok.Type == tt {
			p.advance()
			return tok, true
		}
	}
	return lexer.Token{}, false
}
