package casecomp

import (
	"fmt"

	"github.com/mth/yeti-sub001/internal/codegen"
)

// prepare emits the decoding shared by consecutive choices of p's shape and
// returns how many values it leaves on the stack, the scrutinee included.
func prepare(e codegen.Emitter, p Pattern) int {
	switch p.(type) {
	case *VariantTag:
		e.CheckCast(codegen.ShapeTag)
		e.Dup()
		e.TagName()
		return 2
	case *Record:
		e.CheckCast(codegen.ShapeStruct)
	case *Cons, *FixedList, *EmptyList:
		e.CheckCast(codegen.ShapeList)
	}
	return 1
}

// tryMatch tests the prepared value on top of the stack. Both the fallthrough and
// the onFail path keep the prepared values when preserve is set and drop them otherwise.
func tryMatch(e codegen.Emitter, p Pattern, onFail codegen.Label, preserve bool) {
	switch p := p.(type) {
	case *Wildcard:
		if !preserve {
			e.Pop()
		}
		return
	case *Bind:
		if preserve {
			e.Dup()
		}
		e.Store(p.Binding.Slot())
		return
	case *Literal:
		if preserve {
			e.Dup()
		}
		p.Value.Gen(e)
		e.Equals()
		e.Branch(codegen.IfFalse, onFail)
		return
	case *VariantTag:
		matchVariant(e, p, onFail, preserve)
		return
	}
	if preserve {
		e.Dup()
	}
	switch p := p.(type) {
	case *EmptyList:
		matchEmpty(e, onFail)
	case *Cons:
		matchCons(e, p, onFail)
	case *FixedList:
		matchFixed(e, p, onFail)
	case *Record:
		matchRecord(e, p, onFail)
	default:
		panic(fmt.Sprintf("casecomp: unknown pattern %T", p))
	}
}

// matchNested prepares and consumes a sub-value.
func matchNested(e codegen.Emitter, p Pattern, onFail codegen.Label) {
	prepare(e, p)
	tryMatch(e, p, onFail, false)
}

// tagged, name -> (preserve) tagged, name | (consume) nothing
func matchVariant(e codegen.Emitter, p *VariantTag, onFail codegen.Label, preserve bool) {
	if preserve {
		e.Dup()
		e.Const(p.Tag)
		e.Branch(codegen.IfNotSame, onFail)
		e.Swap()
		e.DupX1()
	} else {
		cont := e.NewLabel()
		e.Const(p.Tag)
		e.Branch(codegen.IfSame, cont)
		e.Pop()
		e.Goto(onFail)
		e.Mark(cont)
	}
	e.TagPayload()
	matchNested(e, p.Arg, onFail)
}

func matchEmpty(e codegen.Emitter, onFail codegen.Label) {
	isNull, done := e.NewLabel(), e.NewLabel()
	e.Dup()
	e.Branch(codegen.IfNull, isNull)
	e.Invoke(codegen.CapIsEmpty, 1, true)
	e.Branch(codegen.IfFalse, onFail)
	e.Goto(done)
	e.Mark(isNull)
	e.Pop()
	e.Mark(done)
}

// checkNonEmpty jumps to fail with the list still on the stack when it has no head.
func checkNonEmpty(e codegen.Emitter, fail codegen.Label) {
	e.Dup()
	e.Branch(codegen.IfNull, fail)
	e.Dup()
	e.Invoke(codegen.CapIsEmpty, 1, true)
	e.Branch(codegen.IfTrue, fail)
}

func matchHead(e codegen.Emitter, p Pattern, fail codegen.Label) {
	if isWildcard(p) {
		return
	}
	e.Dup()
	e.Invoke(codegen.CapFirst, 1, true)
	matchNested(e, p, fail)
}

func matchCons(e codegen.Emitter, p *Cons, onFail codegen.Label) {
	fail, done := e.NewLabel(), e.NewLabel()
	checkNonEmpty(e, fail)
	matchHead(e, p.Head, fail)
	if isWildcard(p.Tail) {
		e.Pop()
	} else {
		e.Invoke(codegen.CapRest, 1, true)
		matchNested(e, p.Tail, onFail)
	}
	e.Goto(done)
	e.Mark(fail)
	e.Pop()
	e.Goto(onFail)
	e.Mark(done)
}

func matchFixed(e codegen.Emitter, p *FixedList, onFail codegen.Label) {
	fail, end, done := e.NewLabel(), e.NewLabel(), e.NewLabel()
	for _, item := range p.Items {
		checkNonEmpty(e, fail)
		matchHead(e, item, fail)
		e.Invoke(codegen.CapRest, 1, true)
	}
	e.Dup()
	e.Branch(codegen.IfNull, end)
	e.Invoke(codegen.CapIsEmpty, 1, true)
	e.Branch(codegen.IfFalse, onFail)
	e.Goto(done)
	e.Mark(end)
	e.Pop()
	e.Goto(done)
	e.Mark(fail)
	e.Pop()
	e.Goto(onFail)
	e.Mark(done)
}

func matchRecord(e codegen.Emitter, p *Record, onFail codegen.Label) {
	var fields []RecordField
	for _, f := range p.Fields {
		if !isWildcard(f.Pattern) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		e.Pop()
		return
	}
	last := len(fields) - 1
	var failPop codegen.Label
	if last > 0 {
		failPop = e.NewLabel()
	}
	for i, f := range fields {
		if i == last {
			e.Field(f.Name)
			matchNested(e, f.Pattern, onFail)
			break
		}
		e.Dup()
		e.Field(f.Name)
		matchNested(e, f.Pattern, failPop)
	}
	if last > 0 {
		done := e.NewLabel()
		e.Goto(done)
		e.Mark(failPop)
		e.Pop()
		e.Goto(onFail)
		e.Mark(done)
	}
}
