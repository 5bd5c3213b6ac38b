package parser

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/hassan/stagecc/internal/lexer"
	"github.com/hassan/stagecc/internal/parser/ast"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, err := ParseString(source, "test.c")
	assert.NoError(t, err)
	return prog
}

func parseReturn(t *testing.T, expr string) string {
	t.Helper()
	prog := mustParse(t, "int main() { return "+expr+"; }")
	return ast.ExprString(prog.Function.Body.Expr)
}

func TestParse_ReturnConstant(t *testing.T) {
	prog := mustParse(t, "int main() { return 2; }")
	assert.Equal(t, "FUN INT main\n    RETURN INT 2\n", ast.Print(prog))
	assert.Equal(t, "main", prog.Function.Name)
	assert.Zero(t, len(prog.Includes))

	c, ok := prog.Function.Body.Expr.(*ast.Constant)
	assert.True(t, ok)
	assert.Equal(t, int64(2), c.Value)
	assert.Equal(t, lexer.Position{Filename: "test.c", Line: 1, Column: 21, Offset: 20}, c.Pos())
}

func TestParse_Whitespace(t *testing.T) {
	sources := []string{
		"int main(){return 2;}",
		"int\nmain\n(\n)\n{\nreturn\n2\n;\n}\n",
		"   int   main    (  )  {   return  2 ; }  ",
		"// comment\nint main() { // more\n  return 2; // done\n}",
	}
	for _, source := range sources {
		assert.Equal(t, "FUN INT main\n    RETURN INT 2\n", ast.Print(mustParse(t, source)))
	}
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"-5", "-5"},
		{"~12", "~12"},
		{"!0", "!0"},
		{"!-3", "!-3"},
		{"-~0", "-~0"},
		{"1 + 2 * 3", "ADD(1, MUL(2, 3))"},
		{"-1 + 2", "ADD(-1, 2)"},
		{"(1 + 2) * 3", "MUL(ADD(1, 2), 3)"},
		{"1 - 2 - 3", "SUB(SUB(1, 2), 3)"},
		{"6 / 3 / 2", "DIV(DIV(6, 3), 2)"},
		{"2- -1", "SUB(2, -1)"},
		{"~2 + 3", "ADD(~2, 3)"},
		{"~(1 + 1)", "~ADD(1, 1)"},
		{"((((7))))", "7"},
		{"1 || 0 && 2", "OR(1, AND(0, 2))"},
		{"(1 || 0) && 0", "AND(OR(1, 0), 0)"},
		{"2 == 2 > 0", "EQ(2, GT(2, 0))"},
		{"2 == 2 || 0", "OR(EQ(2, 2), 0)"},
		{"1 < 2 <= 3 > 4 >= 5", "GE(GT(LE(LT(1, 2), 3), 4), 5)"},
		{"1 != 2 == 3", "EQ(NE(1, 2), 3)"},
		{"1 + 2 < 3 * 4 && 5 != 6 || !7", "OR(AND(LT(ADD(1, 2), MUL(3, 4)), NE(5, 6)), !7)"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, parseReturn(t, tt.expr))
		})
	}
}

func TestParse_PrecedenceFixture(t *testing.T) {
	prog := mustParse(t, "int main() { return 1 + 2 * 3; }")
	add, ok := prog.Function.Body.Expr.(*ast.BinaryOp)
	assert.True(t, ok)
	assert.Equal(t, ast.Add, add.Kind)
	mul, ok := add.Right.(*ast.BinaryOp)
	assert.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Kind)

	prog = mustParse(t, "int main() { return -1 + 2; }")
	add, ok = prog.Function.Body.Expr.(*ast.BinaryOp)
	assert.True(t, ok)
	neg, ok := add.Left.(*ast.UnaryOp)
	assert.True(t, ok)
	assert.Equal(t, ast.ArithmeticNegation, neg.Kind)
}

func TestParse_Includes(t *testing.T) {
	prog := mustParse(t, "#include <stdio.h>\n#include \"local.h\"\nint main() { return 0; }")
	assert.Equal(t, 2, len(prog.Includes))
	assert.Equal(t, "stdio.h", prog.Includes[0].Header)
	assert.True(t, prog.Includes[0].System)
	assert.Equal(t, "local.h", prog.Includes[1].Header)
	assert.False(t, prog.Includes[1].System)
	assert.Equal(t, "INCLUDE <stdio.h>\nINCLUDE \"local.h\"\nFUN INT main\n    RETURN INT 0\n", ast.Print(prog))
}

func TestParse_IncludeDumpMatchesSource(t *testing.T) {
	prog := mustParse(t, "#include \"a\\b.h\"\nint main() { return 0; }")
	assert.Equal(t, `a\b.h`, prog.Includes[0].Header)
	assert.Equal(t, "INCLUDE \"a\\b.h\"\nFUN INT main\n    RETURN INT 0\n", ast.Print(prog))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
		kind   error
	}{
		{
			name:   "missing expression",
			source: "int main() { return ; }",
			msg:    "test.c:1:21: unexpected token SEMICOLON ';' (expected NUMBER or LPAREN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "missing semicolon at eof",
			source: "int main() { return 2",
			msg:    "test.c:1:22: unexpected end of file (expected SEMICOLON)",
			kind:   ErrUnexpectedEOF,
		},
		{
			name:   "missing semicolon",
			source: "int main() { return 2 }",
			msg:    "test.c:1:23: unexpected token RBRACE '}' (expected SEMICOLON)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "unclosed paren",
			source: "int main() { return (1 + 2; }",
			msg:    "test.c:1:27: unexpected token SEMICOLON ';' (expected RPAREN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "wrong case keyword",
			source: "int main() { RETURN 0; }",
			msg:    "test.c:1:14: unexpected token IDENTIFIER 'RETURN' (expected RETURN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "no space after return",
			source: "int main() { return0; }",
			msg:    "test.c:1:14: unexpected token IDENTIFIER 'return0' (expected RETURN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "missing close brace",
			source: "int main() { return 0;",
			msg:    "test.c:1:23: unexpected end of file (expected RBRACE)",
			kind:   ErrUnexpectedEOF,
		},
		{
			name:   "missing operand",
			source: "int main() { return 1 + ; }",
			msg:    "test.c:1:25: unexpected token SEMICOLON ';' (expected NUMBER or LPAREN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "missing first operand",
			source: "int main() { return <= 2; }",
			msg:    "test.c:1:21: unexpected token LESS_EQUAL '<=' (expected NUMBER or LPAREN)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "operand at eof",
			source: "int main() { return 2 &&",
			msg:    "test.c:1:25: unexpected end of file (expected NUMBER or LPAREN)",
			kind:   ErrUnexpectedEOF,
		},
		{
			name:   "unrecognized character",
			source: "int main() { return $; }",
			msg:    "test.c:1:21: unrecognized token '$' (unexpected character '$')",
			kind:   ErrLexical,
		},
		{
			name:   "literal out of range",
			source: "int main() { return 99999999999999999999; }",
			msg:    "test.c:1:21: unrecognized token '99999999999999999999' (integer literal out of range)",
			kind:   ErrLexical,
		},
		{
			name:   "trailing tokens",
			source: "int main() { return 0; } int",
			msg:    "test.c:1:26: unexpected token INT 'int' (expected EOF)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "empty input",
			source: "",
			msg:    "test.c:1:1: unexpected end of file (expected INT)",
			kind:   ErrUnexpectedEOF,
		},
		{
			name:   "include without header",
			source: "#include int main() { return 0; }",
			msg:    "test.c:1:10: unexpected token INT 'int' (expected HEADER_NAME)",
			kind:   ErrUnexpectedToken,
		},
		{
			name:   "single ampersand",
			source: "int main() { return 1 & 2; }",
			msg:    "test.c:1:23: unexpected token BIT_AND '&' (expected SEMICOLON)",
			kind:   ErrUnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := ParseString(tt.source, "test.c")
			assert.Error(t, err)
			assert.Zero(t, prog)
			assert.EqualError(t, err, tt.msg)
			assert.True(t, errors.Is(err, tt.kind), "error %v is not %v", err, tt.kind)

			var perr *Error
			assert.True(t, errors.As(err, &perr))
			assert.True(t, perr.Pos.IsValid())
		})
	}
}

func TestParse_IsDeterministic(t *testing.T) {
	source := "int main() { return !(1 + 2 * -3 <= 4) || ~5 / 6 != 7 && 8; }"
	first := ast.Print(mustParse(t, source))
	for range 5 {
		assert.Equal(t, first, ast.Print(mustParse(t, source)))
	}
}

func TestParser_PeekBuffersTokens(t *testing.T) {
	p := New(lexer.New("int main ( )", "test.c"))

	tok, ok := p.peek(3)
	assert.True(t, ok)
	assert.Equal(t, lexer.TokenRightParen, tok.Type)
	assert.Equal(t, 4, len(p.pending))

	tok, ok = p.peek(4)
	assert.True(t, ok)
	assert.Equal(t, lexer.TokenEOF, tok.Type)

	_, ok = p.peek(5)
	assert.False(t, ok)

	want := []lexer.TokenType{
		lexer.TokenInt, lexer.TokenIdentifier, lexer.TokenLeftParen,
		lexer.TokenRightParen, lexer.TokenEOF,
	}
	for _, tt := range want {
		tok, ok := p.advance()
		assert.True(t, ok)
		assert.Equal(t, tt, tok.Type)
	}
	_, ok = p.advance()
	assert.False(t, ok)
}

func TestParser_Match(t *testing.T) {
	p := New(lexer.New("+ -", "test.c"))

	_, ok := p.match(lexer.TokenStar, lexer.TokenSlash)
	assert.False(t, ok)
	assert.Equal(t, 1, len(p.pending))

	tok, ok := p.match(lexer.TokenMinus, lexer.TokenPlus)
	assert.True(t, ok)
	assert.Equal(t, "+", tok.Lexeme)

	_, err := p.expect(lexer.TokenMinus)
	assert.NoError(t, err)
	_, err = p.expect(lexer.TokenEOF)
	assert.NoError(t, err)
	_, err = p.expect(lexer.TokenEOF)
	assert.IsError(t, err, ErrUnexpectedEOF)
}

func TestParse_ErrorSpan(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		start, end int // byte offsets
	}{
		{"operator token", "int main() { return <= 2; }", 20, 22},
		{"identifier", "int main() { return0; }", 13, 20},
		{"lexical error", "int main() { return 1 $ 2; }", 22, 23},
		{"end of file", "int main() { return 2", 21, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.source, "test.c")
			var perr *Error
			assert.True(t, errors.As(err, &perr))
			start, end := perr.Span()
			assert.Equal(t, tt.start, start.Offset)
			assert.Equal(t, tt.end, end.Offset)
			assert.Equal(t, start.Line, end.Line)
		})
	}
}

func TestParseBinary_StopsAtLooserOperator(t *testing.T) {
	p := New(lexer.New("1 * 2 + 3", "test.c"))

	e, err := p.parseBinary(PrecFactor)
	assert.NoError(t, err)
	assert.Equal(t, "MUL(1, 2)", ast.ExprString(e))

	tok, ok := p.peek(0)
	assert.True(t, ok)
	assert.Equal(t, lexer.TokenPlus, tok.Type)
}
