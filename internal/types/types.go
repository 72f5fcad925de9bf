// Package types implements the mutable type graph shared by the case compiler and
// the surrounding inference engine. Nodes live in an Arena and are addressed by Ref;
// type variables are bound by links, so recursive types are plain back-edges.
package types

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/hashicorp/go-set/v3"
)

// Kind is the shape of a type node.
type Kind uint8

const (
	Var Kind = iota
	Unit
	Str
	Num
	Bool
	Fun
	List
	Struct
	Variant
)

var kindNames = [...]string{"var", "()", "string", "number", "boolean", "function", "list", "struct", "variant"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Flags are per-node markers written by pattern elaboration.
type Flags uint16

const (
	// AnyPattern marks a node already matched by an irrefutable pattern.
	AnyPattern Flags = 1 << iota
	// PartialPattern marks a node matched by refutable patterns only.
	PartialPattern
	// OrderedRequired marks a variant whose tag set is still accumulating.
	OrderedRequired
	// EmptyForm, ConsForm and FixedForm record which list forms were matched.
	EmptyForm
	ConsForm
	FixedForm
)

const listForms = EmptyForm | ConsForm | FixedForm

// Ref addresses a node in an Arena. The zero Ref is never a valid node.
type Ref int32

// Nil is the invalid reference.
const Nil Ref = 0

// Field is a named member of a struct or variant node.
type Field struct {
	Name string
	Type Ref
}

type node struct {
	kind   Kind
	ref    Ref
	params []Ref
	// members are required fields of a struct, or the tags a variant value may carry.
	members *linkedhashmap.Map
	// allowed is nil while unbounded: the fields a record has, or the tags a sealed variant accepts.
	allowed *linkedhashmap.Map
	matched *set.Set[string]
	flags   Flags
	seen    bool
	// origin is set on an unexpanded variable of an Unfolding: the node it copies.
	origin Ref
	unfold *Unfolding
}

// Arena owns every type node of one compilation.
type Arena struct {
	nodes []node
}

func NewArena() *Arena {
	return &Arena{nodes: make([]node, 1, 64)}
}

func (a *Arena) alloc(n node) Ref {
	a.nodes = append(a.nodes, n)
	return Ref(len(a.nodes) - 1)
}

func (a *Arena) at(r Ref) *node {
	if r <= Nil || int(r) >= len(a.nodes) {
		panic(fmt.Sprintf("types: invalid ref %d", r))
	}
	return &a.nodes[r]
}

// Len reports how many nodes were allocated.
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

func (a *Arena) NewVar() Ref {
	return a.alloc(node{kind: Var})
}

// NewPrim allocates a fresh primitive node, so flags set on it stay local.
func (a *Arena) NewPrim(k Kind) Ref {
	switch k {
	case Unit, Str, Num, Bool:
		return a.alloc(node{kind: k})
	}
	panic(fmt.Sprintf("types: %s is not a primitive", k))
}

func (a *Arena) NewFun(arg, res Ref) Ref {
	return a.alloc(node{kind: Fun, params: []Ref{arg, res}})
}

func (a *Arena) NewList(elem Ref) Ref {
	return a.alloc(node{kind: List, params: []Ref{elem}})
}

// NewStruct allocates a struct requiring the given fields, open to others.
func (a *Arena) NewStruct(fields ...Field) Ref {
	return a.alloc(node{kind: Struct, members: fieldMap(fields)})
}

// NewRecord allocates a struct with exactly the given fields.
func (a *Arena) NewRecord(fields ...Field) Ref {
	return a.alloc(node{kind: Struct, members: fieldMap(fields), allowed: fieldMap(fields)})
}

// NewVariant allocates an open variant whose values may carry the given tags.
func (a *Arena) NewVariant(tags ...Field) Ref {
	return a.alloc(node{kind: Variant, members: fieldMap(tags), matched: set.New[string](0)})
}

// NewSealedVariant allocates a variant accepting exactly the given tags.
func (a *Arena) NewSealedVariant(tags ...Field) Ref {
	return a.alloc(node{kind: Variant, members: fieldMap(tags), allowed: fieldMap(tags), matched: set.New[string](0)})
}

func fieldMap(fields []Field) *linkedhashmap.Map {
	m := linkedhashmap.New()
	for _, f := range fields {
		m.Put(f.Name, f.Type)
	}
	return m
}

func fieldsOf(m *linkedhashmap.Map) []Field {
	if m == nil {
		return nil
	}
	res := make([]Field, 0, m.Size())
	it := m.Iterator()
	for it.Next() {
		res = append(res, Field{Name: it.Key().(string), Type: it.Value().(Ref)})
	}
	return res
}

func copyMap(m *linkedhashmap.Map) *linkedhashmap.Map {
	if m == nil {
		return nil
	}
	res := linkedhashmap.New()
	it := m.Iterator()
	for it.Next() {
		res.Put(it.Key(), it.Value())
	}
	return res
}

// Deref follows links to the representative node. Links are never compressed:
// flags left on intermediate nodes stay visible to the coverage walker.
func (a *Arena) Deref(r Ref) Ref {
	for {
		next := a.at(r).ref
		if next == Nil {
			return r
		}
		r = next
	}
}

// Link returns the node r is bound or forwarded to, or Nil.
func (a *Arena) Link(r Ref) Ref {
	return a.at(r).ref
}

// Kind reports the kind of the representative of r.
func (a *Arena) Kind(r Ref) Kind {
	return a.at(a.Deref(r)).kind
}

// Unbound reports whether r is a type variable with no binding.
func (a *Arena) Unbound(r Ref) bool {
	n := a.at(r)
	return n.kind == Var && n.ref == Nil
}

func (a *Arena) Params(r Ref) []Ref {
	p := a.at(a.Deref(r)).params
	res := make([]Ref, len(p))
	copy(res, p)
	return res
}

// Bind links the unbound variable v to t.
func (a *Arena) Bind(v, t Ref) {
	n := a.at(v)
	if n.kind != Var || n.ref != Nil {
		panic(fmt.Sprintf("types: bind of non-variable ref %d", v))
	}
	n.ref = t
}

// Flags returns the flags stored on r itself.
func (a *Arena) Flags(r Ref) Flags {
	return a.at(r).flags
}

func (a *Arena) Has(r Ref, f Flags) bool {
	return a.at(r).flags&f == f
}

func (a *Arena) SetFlags(r Ref, f Flags) {
	a.at(r).flags |= f
}

func (a *Arena) ClearFlags(r Ref, f Flags) {
	a.at(r).flags &^= f
}

// ReplaceFlags overwrites the flags stored on r.
func (a *Arena) ReplaceFlags(r Ref, f Flags) {
	a.at(r).flags = f
}

// Member looks up a field or tag on the representative of r.
func (a *Arena) Member(r Ref, name string) (Ref, bool) {
	n := a.at(a.Deref(r))
	if n.members == nil {
		return Nil, false
	}
	v, ok := n.members.Get(name)
	if !ok {
		return Nil, false
	}
	return v.(Ref), true
}

// Members lists fields or tags in order of first appearance.
func (a *Arena) Members(r Ref) []Field {
	return fieldsOf(a.at(a.Deref(r)).members)
}

// PutMember adds a field or tag to the representative of r.
func (a *Arena) PutMember(r Ref, name string, t Ref) {
	n := a.at(a.Deref(r))
	if n.members == nil {
		panic(fmt.Sprintf("types: %s has no members", n.kind))
	}
	n.members.Put(name, t)
}

// Allowed lists the upper bound of a struct or variant; ok is false while unbounded.
func (a *Arena) Allowed(r Ref) (fields []Field, ok bool) {
	n := a.at(a.Deref(r))
	if n.allowed == nil {
		return nil, false
	}
	return fieldsOf(n.allowed), true
}

// Allows reports whether name fits the upper bound of r.
func (a *Arena) Allows(r Ref, name string) bool {
	n := a.at(a.Deref(r))
	if n.allowed == nil {
		return true
	}
	_, ok := n.allowed.Get(name)
	return ok
}

// Sealed reports whether the variant's tag set is fixed.
func (a *Arena) Sealed(r Ref) bool {
	n := a.at(a.Deref(r))
	return n.kind == Variant && n.allowed != nil
}

// Seal fixes an open variant's accepted tags to its current members.
func (a *Arena) Seal(r Ref) bool {
	n := a.at(a.Deref(r))
	if n.kind != Variant || n.allowed != nil {
		return false
	}
	n.allowed = copyMap(n.members)
	n.flags &^= OrderedRequired
	return true
}

// MarkMatched records that a case pattern tested tag on the variant r.
func (a *Arena) MarkMatched(r Ref, tag string) {
	n := a.at(a.Deref(r))
	if n.matched == nil {
		n.matched = set.New[string](1)
	}
	n.matched.Insert(tag)
}

func (a *Arena) Matched(r Ref, tag string) bool {
	n := a.at(a.Deref(r))
	return n.matched != nil && n.matched.Contains(tag)
}

func (a *Arena) MatchedCount(r Ref) int {
	n := a.at(a.Deref(r))
	if n.matched == nil {
		return 0
	}
	return n.matched.Size()
}

// MarkListForm records a matched list form on the list r and updates PartialPattern.
func (a *Arena) MarkListForm(r Ref, form Flags) {
	r = a.Deref(r)
	a.at(r).flags |= form & listForms
	a.updateListPartial(r)
}

// ListForms returns the list forms recorded on the representative of r.
func (a *Arena) ListForms(r Ref) Flags {
	return a.at(a.Deref(r)).flags & listForms
}

// RestoreListForms replaces the recorded list forms of r.
func (a *Arena) RestoreListForms(r Ref, forms Flags) {
	r = a.Deref(r)
	n := a.at(r)
	n.flags = n.flags&^listForms | forms&listForms
	a.updateListPartial(r)
}

func (a *Arena) updateListPartial(r Ref) {
	n := a.at(r)
	forms := n.flags & listForms
	if forms != 0 && forms&(EmptyForm|ConsForm) != EmptyForm|ConsForm {
		n.flags |= PartialPattern
	} else {
		n.flags &^= PartialPattern
	}
}

// Acquire marks r as being walked. The returned release must be deferred;
// ok is false when r is already being walked.
func (a *Arena) Acquire(r Ref) (release func(), ok bool) {
	n := a.at(r)
	if n.seen {
		return func() {}, false
	}
	n.seen = true
	return func() { a.at(r).seen = false }, true
}

func (a *Arena) Seen(r Ref) bool {
	return a.at(r).seen
}

// Unfolding is a copy of a type graph made one level at a time. Every position
// reached through it gets nodes of its own, so markers written on one position
// never show through another, even where the original graph shares nodes or
// loops back on itself.
type Unfolding struct {
	Root Ref

	lazy   []Ref
	shared map[Ref][]Ref
	vars   []Ref
}

// Unfold starts an unfolded copy of r. Positions are materialized by Expand,
// which Unify calls on demand; Fold ends the unfolding.
func (a *Arena) Unfold(r Ref) *Unfolding {
	u := &Unfolding{shared: make(map[Ref][]Ref)}
	u.Root = a.lazy(r, u)
	return u
}

func (a *Arena) lazy(origin Ref, u *Unfolding) Ref {
	origin = a.Deref(origin)
	v := a.alloc(node{kind: Var, origin: origin, unfold: u})
	u.lazy = append(u.lazy, v)
	if a.nodes[origin].kind == Var {
		if _, ok := u.shared[origin]; !ok {
			u.vars = append(u.vars, origin)
		}
		u.shared[origin] = append(u.shared[origin], v)
	}
	return v
}

// Shared groups the positions copied from one type variable of the original,
// for every variable reached more than once.
func (u *Unfolding) Shared() [][]Ref {
	var res [][]Ref
	for _, v := range u.vars {
		if ps := u.shared[v]; len(ps) > 1 {
			res = append(res, ps)
		}
	}
	return res
}

// Expand materializes the node r stands for when r is an unexpanded position of
// an Unfolding. Children of the new node are unexpanded positions themselves.
func (a *Arena) Expand(r Ref) {
	r = a.Deref(r)
	n := a.at(r)
	if n.kind != Var || n.origin == Nil {
		return
	}
	origin, u := n.origin, n.unfold
	a.Expand(origin)
	origin = a.Deref(origin)
	o := a.nodes[origin]
	var c Ref
	switch o.kind {
	case Var:
		return
	case Unit, Str, Num, Bool:
		c = a.NewPrim(o.kind)
	default:
		c = a.alloc(node{kind: o.kind})
		var params []Ref
		for _, p := range o.params {
			params = append(params, a.lazy(p, u))
		}
		byName := make(map[string]Ref)
		members := a.lazyFields(o.members, byName, u)
		allowed := a.lazyFields(o.allowed, byName, u)
		cn := a.at(c)
		cn.params = params
		cn.members = members
		cn.allowed = allowed
		if o.kind == Variant {
			cn.matched = set.New[string](0)
		}
	}
	n = a.at(r)
	n.origin, n.unfold = Nil, nil
	n.ref = c
}

func (a *Arena) lazyFields(m *linkedhashmap.Map, byName map[string]Ref, u *Unfolding) *linkedhashmap.Map {
	if m == nil {
		return nil
	}
	res := linkedhashmap.New()
	for _, f := range fieldsOf(m) {
		c, ok := byName[f.Name]
		if !ok {
			c = a.lazy(f.Type, u)
			byName[f.Name] = c
		}
		res.Put(f.Name, c)
	}
	return res
}

// Fold ends an unfolding: positions never expanded are linked back to the
// nodes they copy, so later unification stays finite on recursive types.
func (a *Arena) Fold(u *Unfolding) {
	for _, r := range u.lazy {
		n := a.at(r)
		if n.origin == Nil {
			continue
		}
		if n.kind == Var && n.ref == Nil {
			n.ref = n.origin
		}
		n.origin, n.unfold = Nil, nil
	}
	u.lazy = nil
}
