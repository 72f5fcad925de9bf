// Package codegen defines the stack-machine instruction sink used by case compilation
// and a recording implementation that verifies operand-stack depths.
package codegen

// Label is a jump target created by Emitter.NewLabel.
type Label int

// Cond selects a conditional branch.
type Cond uint8

const (
	IfSame    Cond = iota // pops two values, jumps when they are the same object
	IfNotSame             // pops two values, jumps when they differ
	IfTrue
	IfFalse
	IfNull
	IfNotNull
)

var condNames = [...]string{"ifsame", "ifnotsame", "iftrue", "iffalse", "ifnull", "ifnonnull"}

func (c Cond) String() string {
	return condNames[c]
}

// Pops reports how many operands the branch consumes.
func (c Cond) Pops() int {
	if c == IfSame || c == IfNotSame {
		return 2
	}
	return 1
}

// Shape is a runtime representation a value can be downcast to.
type Shape uint8

const (
	ShapeList Shape = iota
	ShapeStruct
	ShapeTag
)

// Capability is a runtime helper invoked by generated code.
type Capability uint8

const (
	CapIsEmpty Capability = iota
	CapFirst
	CapRest
	CapCons
	CapNoMatch
	CapAdd
	CapSub
	CapMul
)

// Emitter is the instruction sink. Operands are implicit on a value stack.
type Emitter interface {
	NewLabel() Label
	Mark(l Label)

	Dup()
	// DupX1 copies the top value below the second one: a b -> b a b.
	DupX1()
	Swap()
	Pop()

	Store(slot int)
	Load(slot int)
	// Locals reserves n consecutive slots and returns the first one.
	Locals(n int) int

	// Const pushes nil (unit), a float64, a string or a bool.
	Const(v any)
	CheckCast(s Shape)
	// Equals replaces the two top values with their value equality.
	Equals()
	Branch(c Cond, l Label)
	Goto(l Label)

	// Field replaces a struct with the named field.
	Field(name string)
	// TagName replaces a tagged value with its tag.
	TagName()
	// TagPayload replaces a tagged value with its payload.
	TagPayload()
	// NewTag replaces the top value with a value tagged with tag.
	NewTag(tag string)

	Invoke(c Capability, args int, result bool)
	LoadStatic(owner, name string)
}

// PopN discards n values.
func PopN(e Emitter, n int) {
	for ; n > 0; n-- {
		e.Pop()
	}
}
