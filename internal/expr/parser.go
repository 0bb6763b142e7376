// Package expr implements the small arithmetic expression language used for
// provider bodies and computed field projections.
//
// Grammar: identifiers (accessor references), zero-argument calls like
// "inner()" (composed provider references), decimal literals, the four infix
// operators with usual precedence, unary minus, and parentheses.
package expr

import (
	"fmt"
	"strconv"
)

const (
	lowestPrec = iota
	precSum
	precProduct
	precPrefix
)

var precedences = map[TokenType]int{
	tokenPlus:     precSum,
	tokenMinus:    precSum,
	tokenSlash:    precProduct,
	tokenAsterisk: precProduct,
}

type parser struct {
	lex  *lexer
	cur  Token
	peek Token
}

// Parse parses the input string into an expression tree.
func Parse(input string) (Node, error) {
	p := &parser{lex: newLexer(input)}
	p.advance()
	p.advance()

	node, err := p.parseExpression(lowestPrec)
	if err != nil {
		return nil, err
	}

	if p.cur.Type != tokenEOF {
		return nil, fmt.Errorf("unexpected %s at offset %d", p.cur.Type, p.cur.Pos)
	}

	return node, nil
}

func (p *parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.nextToken()
}

func (p *parser) parseExpression(prec int) (Node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for prec < precedences[p.cur.Type] {
		op := p.cur.Literal
		opPrec := precedences[p.cur.Type]
		p.advance()

		right, err := p.parseExpression(opPrec)
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parsePrefix() (Node, error) {
	switch p.cur.Type {
	case tokenNumber:
		lit := p.cur.Literal

		val, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at offset %d", lit, p.cur.Pos)
		}

		p.advance()

		return &NumberLit{Value: val, Literal: lit}, nil

	case tokenIdent:
		name := p.cur.Literal
		p.advance()

		if p.cur.Type == tokenLParen {
			p.advance()

			if p.cur.Type != tokenRParen {
				return nil, fmt.Errorf("call %q takes no arguments (offset %d)", name, p.cur.Pos)
			}

			p.advance()

			return &CallExpr{Name: name}, nil
		}

		return &Ident{Name: name}, nil

	case tokenMinus:
		p.advance()

		operand, err := p.parseExpression(precPrefix)
		if err != nil {
			return nil, err
		}

		return &BinaryExpr{Op: "-", Left: &NumberLit{Value: 0, Literal: "0"}, Right: operand}, nil

	case tokenLParen:
		p.advance()

		node, err := p.parseExpression(lowestPrec)
		if err != nil {
			return nil, err
		}

		if p.cur.Type != tokenRParen {
			return nil, fmt.Errorf("expected ) at offset %d, got %s", p.cur.Pos, p.cur.Type)
		}

		p.advance()

		return node, nil

	case tokenIllegal:
		return nil, fmt.Errorf("illegal character %q at offset %d", p.cur.Literal, p.cur.Pos)

	default:
		return nil, fmt.Errorf("unexpected %s at offset %d", p.cur.Type, p.cur.Pos)
	}
}
