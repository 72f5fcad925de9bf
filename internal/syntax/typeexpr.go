package syntax

import (
	"github.com/mth/yeti-sub001/internal/types"
)

// ParseType builds the type written in src inside a. Grammar:
//
//	type    := alt ('->' type)?
//	alt     := Tag atom ('|' Tag atom)* ('|' '...')? | atom
//	atom    := number | string | boolean | () | 'a | list<type> | {f is type, ...} | (type)
//
// A variant ending in `| ...` stays open, otherwise it is sealed. A struct whose
// fields are written `.f is type` only requires those fields.
func ParseType(src string, a *types.Arena) (types.Ref, error) {
	toks, err := tokenize(src)
	if err != nil {
		return types.Nil, err
	}
	p := &typeParser{parser: parser{toks: toks}, a: a, vars: make(map[string]types.Ref)}
	t, err := p.typ()
	if err != nil {
		return types.Nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return types.Nil, p.errorf(tok, "unexpected %s after type", tok)
	}
	return t, nil
}

type typeParser struct {
	parser
	a    *types.Arena
	vars map[string]types.Ref
}

func (p *typeParser) typ() (types.Ref, error) {
	arg, err := p.alt()
	if err != nil {
		return types.Nil, err
	}
	if p.accept("->") {
		res, err := p.typ()
		if err != nil {
			return types.Nil, err
		}
		return p.a.NewFun(arg, res), nil
	}
	return arg, nil
}

func (p *typeParser) alt() (types.Ref, error) {
	t := p.peek()
	if t.kind != tokIdent || !IsConstructor(t.text) {
		return p.atom()
	}
	var tags []types.Field
	open := false
	for {
		tag := p.next()
		if tag.kind != tokIdent || !IsConstructor(tag.text) {
			return types.Nil, p.errorf(tag, "expected variant tag, found %s", tag)
		}
		payload, err := p.atom()
		if err != nil {
			return types.Nil, err
		}
		tags = append(tags, types.Field{Name: tag.text, Type: payload})
		if !p.accept("|") {
			break
		}
		if p.accept("...") {
			open = true
			break
		}
	}
	if open {
		return p.a.NewVariant(tags...), nil
	}
	return p.a.NewSealedVariant(tags...), nil
}

func (p *typeParser) atom() (types.Ref, error) {
	t := p.next()
	switch {
	case t.kind == tokIdent:
		switch t.text {
		case "number":
			return p.a.NewPrim(types.Num), nil
		case "string":
			return p.a.NewPrim(types.Str), nil
		case "boolean", "bool":
			return p.a.NewPrim(types.Bool), nil
		case "list":
			if _, err := p.expect("<"); err != nil {
				return types.Nil, err
			}
			elem, err := p.typ()
			if err != nil {
				return types.Nil, err
			}
			if _, err := p.expect(">"); err != nil {
				return types.Nil, err
			}
			return p.a.NewList(elem), nil
		}
	case t.text == "'":
		name := p.next()
		if name.kind != tokIdent {
			return types.Nil, p.errorf(name, "expected type variable name, found %s", name)
		}
		if v, ok := p.vars[name.text]; ok {
			return v, nil
		}
		v := p.a.NewVar()
		p.vars[name.text] = v
		return v, nil
	case t.text == "(":
		if p.accept(")") {
			return p.a.NewPrim(types.Unit), nil
		}
		inner, err := p.typ()
		if err != nil {
			return types.Nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return types.Nil, err
		}
		return inner, nil
	case t.text == "{":
		return p.structType()
	}
	return types.Nil, p.errorf(t, "unexpected %s in type", t)
}

func (p *typeParser) structType() (types.Ref, error) {
	var fields []types.Field
	required := false
	for !p.accept("}") {
		if len(fields) > 0 {
			if _, err := p.expect(","); err != nil {
				return types.Nil, err
			}
		}
		if p.accept(".") {
			required = true
		}
		name := p.next()
		if name.kind != tokIdent {
			return types.Nil, p.errorf(name, "expected field name, found %s", name)
		}
		if _, err := p.expect("is"); err != nil {
			return types.Nil, err
		}
		ft, err := p.typ()
		if err != nil {
			return types.Nil, err
		}
		fields = append(fields, types.Field{Name: name.text, Type: ft})
	}
	if required {
		return p.a.NewStruct(fields...), nil
	}
	return p.a.NewRecord(fields...), nil
}
