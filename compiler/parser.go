package compiler

import (
	"fmt"

	"github.com/njchilds90/gonewton/symbolic"
)

// Grammar, lowest precedence first:
//
//	expr    := term (("+" | "-") term)*
//	term    := unary (("*" | "/") unary | power)*      implicit product
//	unary   := ("+" | "-") unary | power
//	power   := primary ("**" unary)?                   right associative
//	primary := number | name | "(" expr ")" | call
//	call    := func ("**" unary)? ("(" expr ")" | unary power*)
type parser struct {
	input  string
	toks   []token
	pos    int
	idents map[string]int
}

func newParser(input string, toks []token) *parser {
	return &parser{input: input, toks: toks, idents: map[string]int{}}
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(at token, sentinel error, format string, args ...interface{}) error {
	return &Error{Input: p.input, Pos: at.pos, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func (p *parser) parse() (symbolic.Expr, error) {
	if p.peek().kind == tokEOF {
		return nil, p.fail(p.peek(), ErrSyntax, "empty expression")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, p.fail(tok, ErrSyntax, "unmatched ')'")
		}
		return nil, p.fail(tok, ErrSyntax, "unexpected %s", tok.describe())
	}
	return e, nil
}

func (p *parser) parseExpr() (symbolic.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if !tok.is(tokOp, "+") && !tok.is(tokOp, "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			right = symbolic.Neg(right)
		}
		left = symbolic.AddOf(left, right)
	}
}

func (p *parser) parseTerm() (symbolic.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch {
		case tok.is(tokOp, "*"), tok.is(tokOp, "/"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if tok.text == "*" {
				left = symbolic.MulOf(left, right)
			} else {
				left = symbolic.Quo(left, right)
			}
		case startsOperand(tok):
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (symbolic.Expr, error) {
	tok := p.peek()
	switch {
	case tok.is(tokOp, "-"):
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symbolic.Neg(operand), nil
	case tok.is(tokOp, "+"):
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (symbolic.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !p.peek().is(tokOp, "**") {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return symbolic.PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (symbolic.Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNum:
		p.next()
		n, err := symbolic.ParseNum(tok.text)
		if err != nil {
			return nil, p.fail(tok, ErrSyntax, "malformed number %q", tok.text)
		}
		return n, nil
	case tokLParen:
		return p.parseGroup()
	case tokIdent:
		if apply, ok := functions[tok.text]; ok {
			return p.parseCall(apply)
		}
		p.next()
		return p.identifier(tok)
	case tokRParen:
		return nil, p.fail(tok, ErrSyntax, "unmatched ')'")
	case tokEOF:
		return nil, p.fail(tok, ErrSyntax, "unexpected end of expression")
	}
	return nil, p.fail(tok, ErrSyntax, "unexpected %s", tok.describe())
}

func (p *parser) parseGroup() (symbolic.Expr, error) {
	open := p.next()
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRParen {
		if p.peek().kind == tokEOF {
			return nil, p.fail(open, ErrSyntax, "missing closing parenthesis")
		}
		return nil, p.fail(p.peek(), ErrSyntax, "unexpected %s", p.peek().describe())
	}
	p.next()
	return inner, nil
}

func (p *parser) identifier(tok token) (symbolic.Expr, error) {
	switch tok.text {
	case "pi":
		return symbolic.Pi, nil
	case "E":
		return symbolic.E, nil
	}
	if len(tok.text) > 1 {
		return nil, p.fail(tok, ErrUnknownIdentifier, "unknown identifier %q", tok.text)
	}
	if _, seen := p.idents[tok.text]; !seen {
		p.idents[tok.text] = tok.pos
	}
	return symbolic.S(tok.text), nil
}

// parseCall reads a function application. Without parentheses the argument
// is a signed power followed by any implicit factors up to the next function
// name or explicit operator: "sin 2x" is sin(2*x), "sin x cos x" is
// sin(x)*cos(x).
func (p *parser) parseCall(apply func(symbolic.Expr) symbolic.Expr) (symbolic.Expr, error) {
	name := p.next()

	var power symbolic.Expr
	if p.peek().is(tokOp, "**") {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		power = e
	}

	var arg symbolic.Expr
	tok := p.peek()
	switch {
	case tok.kind == tokLParen:
		e, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		arg = e
	case startsOperand(tok) || tok.is(tokOp, "-") || tok.is(tokOp, "+"):
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		for {
			t := p.peek()
			if !startsOperand(t) || (t.kind == tokIdent && isFunction(t.text)) {
				break
			}
			f, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			e = symbolic.MulOf(e, f)
		}
		arg = e
	default:
		return nil, p.fail(name, ErrSyntax, "function %s requires an argument", name.text)
	}

	result := apply(arg)
	if power != nil {
		result = symbolic.PowOf(result, power)
	}
	return result, nil
}
