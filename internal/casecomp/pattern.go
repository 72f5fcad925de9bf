// Package casecomp compiles case expressions: it elaborates patterns against the
// scrutinee type, checks exhaustiveness, seals variants and emits matching code.
package casecomp

import (
	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
)

// Pattern is one of Wildcard, Bind, Literal, Cons, EmptyList, FixedList, Record
// and VariantTag. Patterns are immutable once elaborated.
type Pattern interface {
	shape() shape
}

type shape uint8

const (
	shapeWildcard shape = iota
	shapeBind
	shapeLiteral
	shapeCons
	shapeEmptyList
	shapeFixedList
	shapeRecord
	shapeVariant
)

// Wildcard matches anything and binds nothing.
type Wildcard struct{}

// Bind matches anything and stores it in the binding's slot.
type Bind struct {
	Binding *Binding
}

// Literal matches values equal to a constant.
type Literal struct {
	Value expr.Code
}

// Cons matches a non-empty list.
type Cons struct {
	Head Pattern
	Tail Pattern
}

// EmptyList matches the empty list.
type EmptyList struct{}

// FixedList matches lists of exactly len(Items) elements.
type FixedList struct {
	Items []Pattern
}

type RecordField struct {
	Name    string
	Pattern Pattern
}

// Record matches a struct field by field. Fields it does not name are never read.
type Record struct {
	Fields []RecordField
}

// VariantTag matches a tagged value carrying Tag and matches its payload with Arg.
type VariantTag struct {
	Tag string
	Arg Pattern
}

func (*Wildcard) shape() shape   { return shapeWildcard }
func (*Bind) shape() shape       { return shapeBind }
func (*Literal) shape() shape    { return shapeLiteral }
func (*Cons) shape() shape       { return shapeCons }
func (*EmptyList) shape() shape  { return shapeEmptyList }
func (*FixedList) shape() shape  { return shapeFixedList }
func (*Record) shape() shape     { return shapeRecord }
func (*VariantTag) shape() shape { return shapeVariant }

// Irrefutable reports whether p matches every value.
func Irrefutable(p Pattern) bool {
	switch p.(type) {
	case *Wildcard, *Bind:
		return true
	}
	return false
}

func isWildcard(p Pattern) bool {
	_, ok := p.(*Wildcard)
	return ok
}

// slotBase is the first local slot of an aggregate, known once emission starts.
type slotBase struct {
	start int
}

// Binding is a name bound by a pattern. Index counts from zero within its choice.
type Binding struct {
	Name  string
	Index int
	Type  types.Ref
	base  *slotBase
}

// Slot is the local slot the bound value lives in.
func (b *Binding) Slot() int {
	return b.base.start + b.Index
}

func (b *Binding) Ref(syntax.Pos) expr.Code {
	return &bindRef{b}
}

type bindRef struct {
	b *Binding
}

func (r *bindRef) Type() types.Ref       { return r.b.Type }
func (r *bindRef) Flags() expr.Flags     { return 0 }
func (r *bindRef) Gen(e codegen.Emitter) { e.Load(r.b.Slot()) }
