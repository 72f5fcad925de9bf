package casecomp

import (
	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/types"
)

// Choice is one arm of a case expression.
type Choice struct {
	Pattern Pattern
	Body    expr.Code
}

// Aggregate is a compiled case expression. It is filled in by Compile and
// emitted once through Gen.
type Aggregate struct {
	Value   expr.Code
	Choices []Choice
	// SlotCount is the largest number of bindings any single choice makes.
	SlotCount int
	// Sealed lists the variant types this case closed.
	Sealed []types.Ref

	t    types.Ref
	base *slotBase
}

func (c *Aggregate) Type() types.Ref   { return c.t }
func (c *Aggregate) Flags() expr.Flags { return 0 }

// SlotBase is the first slot of the bindings, valid after Gen.
func (c *Aggregate) SlotBase() int {
	return c.base.start
}

// Gen emits the scrutinee, then each choice in order. Consecutive choices of the
// same pattern shape share one preparation; the values it leaves stay on the
// stack until the shape changes. A catch-all without a body emits nothing and
// leaves its values to the no-match call, which closes every case even when the
// last choice is irrefutable.
func (c *Aggregate) Gen(e codegen.Emitter) {
	c.Value.Gen(e)
	c.base.start = e.Locals(c.SlotCount)
	end := e.NewLabel()
	stack := 1
	var prev Pattern
	for _, ch := range c.Choices {
		if ch.Body == nil {
			continue
		}
		if prev == nil || ch.Pattern.shape() != prev.shape() {
			codegen.PopN(e, stack-1)
			stack = prepare(e, ch.Pattern)
		}
		next := e.NewLabel()
		tryMatch(e, ch.Pattern, next, true)
		codegen.PopN(e, stack)
		ch.Body.Gen(e)
		e.Goto(end)
		e.Mark(next)
		prev = ch.Pattern
	}
	codegen.PopN(e, stack-1)
	e.Invoke(codegen.CapNoMatch, 1, true)
	e.Mark(end)
}
