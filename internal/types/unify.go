package types

import (
	"fmt"
)

// Mismatch reports that two types cannot be unified.
type Mismatch struct {
	Left   string
	Right  string
	Reason string
}

func (m *Mismatch) Error() string {
	if m.Reason != "" {
		return fmt.Sprintf("Type mismatch: %s is not %s (%s)", m.Left, m.Right, m.Reason)
	}
	return fmt.Sprintf("Type mismatch: %s is not %s", m.Left, m.Right)
}

func (a *Arena) mismatch(x, y Ref, reason string) error {
	return &Mismatch{Left: a.String(x), Right: a.String(y), Reason: reason}
}

// Unify makes x and y the same type. Variables are bound without an occurs
// check, so unification may create cycles. A structural node is forwarded to its
// peer before its children are unified, which keeps recursion on cycles finite.
// Unexpanded positions of an Unfolding are expanded first.
func (a *Arena) Unify(x, y Ref) error {
	a.Expand(x)
	a.Expand(y)
	x, y = a.Deref(x), a.Deref(y)
	if x == y {
		return nil
	}
	nx, ny := a.at(x), a.at(y)
	switch {
	case nx.kind == Var:
		nx.ref = y
		return nil
	case ny.kind == Var:
		ny.ref = x
		return nil
	case nx.kind != ny.kind:
		return a.mismatch(x, y, "")
	case nx.kind == Struct || nx.kind == Variant:
		return a.unifyMembers(x, y)
	}
	px, py := nx.params, ny.params
	a.forward(y, x)
	for i := range px {
		if err := a.Unify(px[i], py[i]); err != nil {
			return err
		}
	}
	return nil
}

// forward links from to its peer, moving pattern markers onto the surviving root.
func (a *Arena) forward(from, to Ref) {
	f, t := a.at(from), a.at(to)
	moved := f.flags & (PartialPattern | OrderedRequired | listForms)
	t.flags |= moved
	f.flags &^= PartialPattern | listForms
	f.ref = to
	if t.kind == List {
		a.updateListPartial(to)
	}
}

// unifyMembers merges two structs or two variants. Required members are united,
// upper bounds are intersected, and every member must stay within the bound.
func (a *Arena) unifyMembers(x, y Ref) error {
	nx, ny := a.at(x), a.at(y)

	var bound []string
	if nx.allowed != nil || ny.allowed != nil {
		switch {
		case nx.allowed == nil:
			bound = keysOf(ny.allowed.Keys())
		case ny.allowed == nil:
			bound = keysOf(nx.allowed.Keys())
		default:
			for _, k := range keysOf(nx.allowed.Keys()) {
				if _, ok := ny.allowed.Get(k); ok {
					bound = append(bound, k)
				}
			}
			if len(bound) == 0 {
				return a.mismatch(x, y, "")
			}
		}
		inBound := make(map[string]bool, len(bound))
		for _, k := range bound {
			inBound[k] = true
		}
		for _, m := range [...]*node{nx, ny} {
			for _, k := range keysOf(m.members.Keys()) {
				if inBound[k] {
					continue
				}
				if nx.kind == Variant {
					return a.mismatch(x, y, fmt.Sprintf("tag %s is not allowed", k))
				}
				return a.mismatch(x, y, fmt.Sprintf("field %s is missing", k))
			}
		}
	}

	var pending [][2]Ref
	for _, f := range fieldsOf(ny.members) {
		if t, ok := nx.members.Get(f.Name); ok {
			pending = append(pending, [2]Ref{t.(Ref), f.Type})
		} else {
			nx.members.Put(f.Name, f.Type)
		}
	}
	if bound != nil {
		merged := copyMap(nx.allowed)
		if merged == nil {
			merged = copyMap(ny.allowed)
		} else if ny.allowed != nil {
			for _, k := range keysOf(merged.Keys()) {
				yt, ok := ny.allowed.Get(k)
				if !ok {
					merged.Remove(k)
					continue
				}
				xt, _ := merged.Get(k)
				pending = append(pending, [2]Ref{xt.(Ref), yt.(Ref)})
			}
		}
		for _, f := range fieldsOf(nx.members) {
			if t, ok := merged.Get(f.Name); ok && t.(Ref) != f.Type {
				pending = append(pending, [2]Ref{f.Type, t.(Ref)})
			}
		}
		nx.allowed = merged
	}
	if ny.matched != nil {
		if nx.matched == nil {
			nx.matched = ny.matched.Copy()
		} else {
			nx.matched.InsertSet(ny.matched)
		}
	}
	a.forward(y, x)
	for _, p := range pending {
		if err := a.Unify(p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func keysOf(keys []interface{}) []string {
	res := make([]string, len(keys))
	for i, k := range keys {
		res[i] = k.(string)
	}
	return res
}
