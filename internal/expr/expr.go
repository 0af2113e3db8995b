// Package expr parses and evaluates the boolean condition expressions used by
// iterating and conditional containers, for example "i gt 5" or "k gt= 5 and done = 'no'".
package expr

import (
	"strconv"
	"strings"

	citrineerrors "github.com/alexisbeaulieu97/citrine/pkg/errors"
)

// Lookup resolves a bare identifier to its current value.
type Lookup func(name string) (string, bool)

type node interface {
	eval(lookup Lookup) (value, error)
}

type value struct {
	text    string
	boolean bool
	isBool  bool
}

// Expression is a parsed condition ready for repeated evaluation.
type Expression struct {
	source string
	root   node
}

// Parse compiles a condition expression. Malformed input yields an *errors.ExpressionError.
func Parse(input string) (*Expression, error) {
	if strings.TrimSpace(input) == "" {
		return nil, citrineerrors.NewExpressionError(input, 0, "empty expression")
	}
	tokens, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, citrineerrors.NewExpressionError(input, tok.pos, "unexpected "+describe(tok))
	}
	return &Expression{source: input, root: root}, nil
}

// Evaluate parses and evaluates input in one step.
func Evaluate(input string, lookup Lookup) (bool, error) {
	e, err := Parse(input)
	if err != nil {
		return false, err
	}
	return e.Eval(lookup)
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

// Eval evaluates the expression. Identifiers unknown to lookup are treated as literals.
func (e *Expression) Eval(lookup Lookup) (bool, error) {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	v, err := e.root.eval(lookup)
	if err != nil {
		return false, err
	}
	b, ok := v.asBool()
	if !ok {
		return false, citrineerrors.NewExpressionError(e.source, 0, "expression does not evaluate to a boolean")
	}
	return b, nil
}

func (v value) asBool() (bool, bool) {
	if v.isBool {
		return v.boolean, true
	}
	switch strings.ToLower(v.text) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logical{source: p.input, and: false, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &logical{source: p.input, and: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokOp {
		return left, nil
	}
	op := p.next()
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &comparison{source: p.input, op: op.text, pos: op.pos, left: left, right: right}, nil
}

func (p *parser) parseOperand() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, citrineerrors.NewExpressionError(p.input, closing.pos, "expected ')' but found "+describe(closing))
		}
		return inner, nil
	case tokNumber, tokString:
		return literal{text: tok.text}, nil
	case tokIdent:
		return identifier{name: tok.text}, nil
	default:
		return nil, citrineerrors.NewExpressionError(p.input, tok.pos, "expected operand but found "+describe(tok))
	}
}

func describe(tok token) string {
	if tok.kind == tokEOF {
		return "end of expression"
	}
	return "'" + tok.text + "'"
}

type literal struct {
	text string
}

func (l literal) eval(Lookup) (value, error) {
	return value{text: l.text}, nil
}

type identifier struct {
	name string
}

func (id identifier) eval(lookup Lookup) (value, error) {
	if v, ok := lookup(id.name); ok {
		return value{text: v}, nil
	}
	return value{text: id.name}, nil
}

type logical struct {
	source string
	and    bool
	left   node
	right  node
}

func (l *logical) eval(lookup Lookup) (value, error) {
	left, err := l.operand(l.left, lookup)
	if err != nil {
		return value{}, err
	}
	if l.and && !left {
		return value{isBool: true}, nil
	}
	if !l.and && left {
		return value{isBool: true, boolean: true}, nil
	}
	right, err := l.operand(l.right, lookup)
	if err != nil {
		return value{}, err
	}
	return value{isBool: true, boolean: right}, nil
}

func (l *logical) operand(n node, lookup Lookup) (bool, error) {
	v, err := n.eval(lookup)
	if err != nil {
		return false, err
	}
	b, ok := v.asBool()
	if !ok {
		return false, citrineerrors.NewExpressionError(l.source, 0, "operand '"+v.text+"' is not a boolean")
	}
	return b, nil
}

type comparison struct {
	source string
	op     string
	pos    int
	left   node
	right  node
}

func (c *comparison) eval(lookup Lookup) (value, error) {
	lv, err := c.left.eval(lookup)
	if err != nil {
		return value{}, err
	}
	rv, err := c.right.eval(lookup)
	if err != nil {
		return value{}, err
	}

	ln, lerr := strconv.ParseFloat(lv.text, 64)
	rn, rerr := strconv.ParseFloat(rv.text, 64)
	numeric := lerr == nil && rerr == nil

	var result bool
	switch c.op {
	case "=":
		if numeric {
			result = ln == rn
		} else {
			result = lv.text == rv.text
		}
	case "!=":
		if numeric {
			result = ln != rn
		} else {
			result = lv.text != rv.text
		}
	default:
		if !numeric {
			return value{}, citrineerrors.NewExpressionError(c.source, c.pos,
				"operator "+c.op+" requires numeric operands, got '"+lv.text+"' and '"+rv.text+"'")
		}
		switch c.op {
		case ">":
			result = ln > rn
		case ">=":
			result = ln >= rn
		case "<":
			result = ln < rn
		case "<=":
			result = ln <= rn
		}
	}
	return value{isBool: true, boolean: result}, nil
}
