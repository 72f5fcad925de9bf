package types

import (
	"strconv"
	"strings"
)

// String renders r the way diagnostics show types. Variables print as 'a, 'b, ...
// and a node reached again while it is being printed becomes an alias.
func (a *Arena) String(r Ref) string {
	p := &printer{a: a, names: make(map[Ref]string), active: make(map[Ref]bool), recursive: make(map[Ref]bool)}
	return p.typ(r, false)
}

type printer struct {
	a         *Arena
	names     map[Ref]string
	active    map[Ref]bool
	recursive map[Ref]bool
}

func (p *printer) name(r Ref) string {
	if n, ok := p.names[r]; ok {
		return n
	}
	i := len(p.names)
	n := "'" + string(rune('a'+i%26))
	if i >= 26 {
		n += strconv.Itoa(i / 26)
	}
	p.names[r] = n
	return n
}

func (p *printer) typ(r Ref, nested bool) string {
	r = p.a.Deref(r)
	n := p.a.at(r)
	if n.origin != Nil {
		return p.typ(n.origin, nested)
	}
	switch n.kind {
	case Var:
		return p.name(r)
	case Unit, Str, Num, Bool:
		return n.kind.String()
	}
	if p.active[r] {
		p.recursive[r] = true
		return p.name(r)
	}
	p.active[r] = true
	var s string
	parens := false
	switch n.kind {
	case Fun:
		s = p.typ(n.params[0], true) + " -> " + p.typ(n.params[1], false)
		parens = nested
	case List:
		s = "list<" + p.typ(n.params[0], false) + ">"
	case Struct:
		fields, prefix := n.allowed, ""
		if fields == nil {
			fields, prefix = n.members, "."
		}
		var parts []string
		for _, f := range fieldsOf(fields) {
			parts = append(parts, prefix+f.Name+" is "+p.typ(f.Type, false))
		}
		s = "{" + strings.Join(parts, ", ") + "}"
	case Variant:
		tags := n.allowed
		if tags == nil {
			tags = n.members
		}
		var parts []string
		for _, f := range fieldsOf(tags) {
			parts = append(parts, f.Name+" "+p.typ(f.Type, true))
		}
		s = strings.Join(parts, " | ")
		parens = nested
	}
	delete(p.active, r)
	if p.recursive[r] {
		return "(" + p.name(r) + " is " + s + ")"
	}
	if parens {
		return "(" + s + ")"
	}
	return s
}
