package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Instr is one recorded instruction. An empty Op marks a label definition.
type Instr struct {
	Op  string
	Arg string
}

func (i Instr) String() string {
	switch {
	case i.Op == "":
		return i.Arg + ":"
	case i.Arg == "":
		return "\t" + i.Op
	}
	return "\t" + i.Op + " " + i.Arg
}

type labelInfo struct {
	depth  int
	known  bool
	marked bool
}

// Recorder is an Emitter that keeps a printable listing and checks that every
// path reaching a label arrives with the same stack depth.
type Recorder struct {
	rt       Runtime
	code     []Instr
	labels   []labelInfo
	depth    int
	maxDepth int
	dead     bool
	locals   int
	err      error
}

func NewRecorder(rt Runtime) *Recorder {
	return &Recorder{rt: rt}
}

func (r *Recorder) fail(format string, args ...any) {
	if r.err == nil {
		r.err = errors.Errorf("instruction %d: "+format, append([]any{len(r.code)}, args...)...)
	}
}

func (r *Recorder) emit(op, arg string, pop, push int) {
	r.code = append(r.code, Instr{Op: op, Arg: arg})
	if r.dead {
		return
	}
	if r.depth < pop {
		r.fail("%s needs %d operands, stack has %d", op, pop, r.depth)
		r.depth = pop
	}
	r.depth += push - pop
	if r.depth > r.maxDepth {
		r.maxDepth = r.depth
	}
}

func (r *Recorder) reach(l Label) {
	info := &r.labels[l]
	if info.known && info.depth != r.depth {
		r.fail("L%d reached with depth %d, expected %d", int(l), r.depth, info.depth)
		return
	}
	info.depth, info.known = r.depth, true
}

func (r *Recorder) NewLabel() Label {
	r.labels = append(r.labels, labelInfo{})
	return Label(len(r.labels) - 1)
}

func (r *Recorder) Mark(l Label) {
	r.code = append(r.code, Instr{Arg: "L" + strconv.Itoa(int(l))})
	info := &r.labels[l]
	if info.marked {
		r.fail("L%d marked twice", int(l))
	}
	info.marked = true
	switch {
	case !r.dead:
		r.reach(l)
	case info.known:
		r.depth, r.dead = info.depth, false
	}
}

func (r *Recorder) Dup()   { r.emit("dup", "", 1, 2) }
func (r *Recorder) DupX1() { r.emit("dup_x1", "", 2, 3) }
func (r *Recorder) Swap()  { r.emit("swap", "", 2, 2) }
func (r *Recorder) Pop()   { r.emit("pop", "", 1, 0) }

func (r *Recorder) Store(slot int) { r.emit("store", strconv.Itoa(slot), 1, 0) }
func (r *Recorder) Load(slot int)  { r.emit("load", strconv.Itoa(slot), 0, 1) }

func (r *Recorder) Locals(n int) int {
	start := r.locals
	r.locals += n
	return start
}

func (r *Recorder) Const(v any) {
	var arg string
	switch v := v.(type) {
	case nil:
		arg = "()"
	case string:
		arg = strconv.Quote(v)
	case float64:
		arg = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		arg = fmt.Sprint(v)
	}
	r.emit("const", arg, 0, 1)
}

func (r *Recorder) CheckCast(s Shape) { r.emit("checkcast", r.rt.ShapeName(s), 1, 1) }
func (r *Recorder) Equals()           { r.emit("equals", "", 2, 1) }

func (r *Recorder) Branch(c Cond, l Label) {
	r.emit(c.String(), "L"+strconv.Itoa(int(l)), c.Pops(), 0)
	if !r.dead {
		r.reach(l)
	}
}

func (r *Recorder) Goto(l Label) {
	r.emit("goto", "L"+strconv.Itoa(int(l)), 0, 0)
	if !r.dead {
		r.reach(l)
	}
	r.dead = true
}

func (r *Recorder) Field(name string) { r.emit("field", name, 1, 1) }
func (r *Recorder) TagName()          { r.emit("tagname", "", 1, 1) }
func (r *Recorder) TagPayload()       { r.emit("tagpayload", "", 1, 1) }
func (r *Recorder) NewTag(tag string) { r.emit("newtag", tag, 1, 1) }

func (r *Recorder) Invoke(c Capability, args int, result bool) {
	push := 0
	if result {
		push = 1
	}
	r.emit("invoke", r.rt.Name(c)+"/"+strconv.Itoa(args), args, push)
}

func (r *Recorder) LoadStatic(owner, name string) {
	r.emit("getstatic", owner+"."+name, 0, 1)
}

// Depth is the stack depth at the current position.
func (r *Recorder) Depth() int {
	return r.depth
}

func (r *Recorder) MaxDepth() int {
	return r.maxDepth
}

// Reachable reports whether the current position can be reached.
func (r *Recorder) Reachable() bool {
	return !r.dead
}

// LabelDepth reports the stack depth recorded for l, if any jump or fallthrough reached it.
func (r *Recorder) LabelDepth(l Label) (int, bool) {
	info := r.labels[l]
	return info.depth, info.known
}

// Err returns the first depth inconsistency, or an unmarked label that was jumped to.
func (r *Recorder) Err() error {
	if r.err != nil {
		return r.err
	}
	for i, info := range r.labels {
		if info.known && !info.marked {
			return errors.Errorf("L%d is a jump target but never marked", i)
		}
	}
	return nil
}

func (r *Recorder) Code() []Instr {
	return append([]Instr(nil), r.code...)
}

// Lines renders the listing one instruction per line.
func (r *Recorder) Lines() []string {
	res := make([]string, len(r.code))
	for i, in := range r.code {
		res[i] = in.String()
	}
	return res
}

func (r *Recorder) String() string {
	return strings.Join(r.Lines(), "\n")
}
