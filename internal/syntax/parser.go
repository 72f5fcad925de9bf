package syntax

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/mth/yeti-sub001/yetierr"
)

var keywords = map[string]bool{"case": true, "of": true, "esac": true}

type parser struct {
	toks []token
	i    int
}

// ParseExpr parses a single expression covering the whole input.
func ParseExpr(src string) (Node, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s after expression", t)
	}
	return n, nil
}

func (p *parser) peek() token {
	return p.toks[p.i]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) is(text string) bool {
	t := p.peek()
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expect(text string) (token, error) {
	t := p.peek()
	if !p.is(text) {
		return t, p.errorf(t, "expected '%s', found %s", text, t)
	}
	return p.next(), nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return yetierr.NewSyntaxError(t.pos.Line, t.pos.Column, fmt.Sprintf(format, args...))
}

// expr := additive ('::' expr)?
func (p *parser) expr() (Node, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); p.accept("::") {
		right, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &BinOp{Pos: t.pos, Op: "::", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) additive() (Node, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.is("+") || p.is("-") {
		t := p.next()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: t.pos, Op: t.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Node, error) {
	left, err := p.application()
	if err != nil {
		return nil, err
	}
	for p.is("*") {
		t := p.next()
		right, err := p.application()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: t.pos, Op: "*", Left: left, Right: right}
	}
	return left, nil
}

// application := postfix postfix?  where the head is a name
func (p *parser) application() (Node, error) {
	head, err := p.postfix()
	if err != nil {
		return nil, err
	}
	if sym, ok := head.(*Sym); ok && sym.Name != "..." && p.startsAtom() {
		arg, err := p.postfix()
		if err != nil {
			return nil, err
		}
		return &BinOp{Pos: sym.Pos, Left: sym, Right: arg}, nil
	}
	return head, nil
}

func (p *parser) postfix() (Node, error) {
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.is(".") {
		dot := p.next()
		name := p.next()
		if name.kind != tokIdent {
			return nil, p.errorf(name, "expected field name, found %s", name)
		}
		n = &Select{Pos: dot.pos, Expr: n, Name: name.text}
	}
	return n, nil
}

func (p *parser) startsAtom() bool {
	t := p.peek()
	switch t.kind {
	case tokIdent:
		return !keywords[t.text] || t.text == "case"
	case tokNumber, tokString:
		return true
	case tokPunct:
		return t.text == "(" || t.text == "[" || t.text == "{"
	}
	return false
}

func (p *parser) atom() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "bad number %s", t.text)
		}
		return &NumLit{Pos: t.pos, Text: t.text, Value: v}, nil
	case tokString:
		v, err := strconv.Unquote(t.text)
		if err != nil {
			return nil, p.errorf(t, "bad string %s", t.text)
		}
		return &StrLit{Pos: t.pos, Value: v}, nil
	case tokIdent:
		if t.text == "case" {
			return p.caseExpr(t)
		}
		if keywords[t.text] {
			return nil, p.errorf(t, "unexpected %s", t)
		}
		if p.accept("#") {
			f := p.next()
			if f.kind != tokIdent {
				return nil, p.errorf(f, "expected field name after '#', found %s", f)
			}
			return &ObjectRef{Pos: t.pos, Class: t.text, Field: f.text}, nil
		}
		return &Sym{Pos: t.pos, Name: t.text}, nil
	case tokPunct:
		switch t.text {
		case "...":
			return &Sym{Pos: t.pos, Name: "..."}, nil
		case "(":
			if p.accept(")") {
				return &UnitLit{Pos: t.pos}, nil
			}
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")"); err != nil {
				return nil, err
			}
			return n, nil
		case "[":
			return p.list(t)
		case "{":
			return p.structLit(t)
		}
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func (p *parser) list(open token) (Node, error) {
	l := &ListLit{Pos: open.pos}
	if p.accept("]") {
		return l, nil
	}
	for {
		item, err := p.expr()
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, item)
		if p.accept("]") {
			return l, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// structLit := '{' field (',' field)* '}'  with field := name ('=' expr)?
func (p *parser) structLit(open token) (Node, error) {
	s := &StructLit{Pos: open.pos}
	if p.accept("}") {
		return s, nil
	}
	for {
		name := p.next()
		if name.kind != tokIdent {
			return nil, p.errorf(name, "expected field name, found %s", name)
		}
		f := Field{Pos: name.pos, Name: name.text}
		if p.accept("=") {
			v, err := p.expr()
			if err != nil {
				return nil, err
			}
			f.Expr = v
		} else {
			f.Expr = &Sym{Pos: name.pos, Name: name.text}
		}
		s.Fields = append(s.Fields, f)
		if p.accept("}") {
			return s, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

// caseExpr := 'case' expr 'of' (choice ';')* choice? 'esac'
func (p *parser) caseExpr(kw token) (Node, error) {
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("of"); err != nil {
		return nil, err
	}
	c := &Case{Pos: kw.pos, Value: value}
	for !p.accept("esac") {
		choice, err := p.choice()
		if err != nil {
			return nil, err
		}
		c.Choices = append(c.Choices, choice)
		if !p.accept(";") && !p.is("esac") {
			t := p.peek()
			return nil, p.errorf(t, "expected ';' or 'esac', found %s", t)
		}
	}
	return c, nil
}

func (p *parser) choice() (Choice, error) {
	t := p.peek()
	if p.is("...") && p.toks[p.i+1].text != ":" {
		p.next()
		return Choice{Pos: t.pos, Pattern: &Sym{Pos: t.pos, Name: "..."}}, nil
	}
	pat, err := p.expr()
	if err != nil {
		return Choice{}, err
	}
	if _, err := p.expect(":"); err != nil {
		return Choice{}, err
	}
	body, err := p.expr()
	if err != nil {
		return Choice{}, err
	}
	return Choice{Pos: t.pos, Pattern: pat, Body: body}, nil
}

// IsConstructor reports whether name can name a variant tag.
func IsConstructor(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
