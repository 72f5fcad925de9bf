package expr

import (
	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
)

// Literal pushes a constant: nil for unit, float64, string or bool.
type Literal struct {
	Value any
	T     types.Ref
}

func (c *Literal) Type() types.Ref       { return c.T }
func (c *Literal) Flags() Flags          { return Const }
func (c *Literal) Gen(e codegen.Emitter) { e.Const(c.Value) }

// Static reads an interop field. Fields declared constant are folded into Literal instead.
type Static struct {
	Owner string
	Name  string
	T     types.Ref
}

func (c *Static) Type() types.Ref       { return c.T }
func (c *Static) Flags() Flags          { return 0 }
func (c *Static) Gen(e codegen.Emitter) { e.LoadStatic(c.Owner, c.Name) }

// Arg is a value bound in the enclosing environment, held in a local slot.
type Arg struct {
	Name string
	Slot int
	T    types.Ref
}

func (c *Arg) Type() types.Ref       { return c.T }
func (c *Arg) Flags() Flags          { return 0 }
func (c *Arg) Gen(e codegen.Emitter) { e.Load(c.Slot) }

// Ref makes an Arg its own Binder.
func (c *Arg) Ref(syntax.Pos) Code { return c }

// Tag constructs a variant value.
type Tag struct {
	Name string
	Arg  Code
	T    types.Ref
}

func (c *Tag) Type() types.Ref { return c.T }
func (c *Tag) Flags() Flags    { return 0 }

func (c *Tag) Gen(e codegen.Emitter) {
	c.Arg.Gen(e)
	e.NewTag(c.Name)
}

// Call invokes a runtime capability on its operands, left to right.
type Call struct {
	Cap  codegen.Capability
	Args []Code
	T    types.Ref
}

func (c *Call) Type() types.Ref { return c.T }
func (c *Call) Flags() Flags    { return 0 }

func (c *Call) Gen(e codegen.Emitter) {
	for _, a := range c.Args {
		a.Gen(e)
	}
	e.Invoke(c.Cap, len(c.Args), true)
}

// List builds a list literal from its items.
type List struct {
	Items []Code
	T     types.Ref
}

func (c *List) Type() types.Ref { return c.T }
func (c *List) Flags() Flags    { return 0 }

func (c *List) Gen(e codegen.Emitter) {
	for _, it := range c.Items {
		it.Gen(e)
	}
	e.Const(nil)
	for range c.Items {
		e.Invoke(codegen.CapCons, 2, true)
	}
}

// Select reads a struct field.
type Select struct {
	Struct Code
	Name   string
	T      types.Ref
}

func (c *Select) Type() types.Ref { return c.T }
func (c *Select) Flags() Flags    { return 0 }

func (c *Select) Gen(e codegen.Emitter) {
	c.Struct.Gen(e)
	e.CheckCast(codegen.ShapeStruct)
	e.Field(c.Name)
}
