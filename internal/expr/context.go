// Package expr is the expression compiler the case compiler builds on. It turns
// syntax nodes into typed Code values that know how to emit themselves.
package expr

import (
	"log/slog"

	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
)

// Flags describe properties of compiled code.
type Flags uint8

const (
	// Const marks code whose value is known at compile time.
	Const Flags = 1 << iota
)

// Code is a compiled expression.
type Code interface {
	Type() types.Ref
	Flags() Flags
	Gen(e codegen.Emitter)
}

// Binder produces the code reading a bound name.
type Binder interface {
	Ref(pos syntax.Pos) Code
}

// Scope is an immutable linked list of bindings; inner bindings shadow outer ones.
type Scope struct {
	Name   string
	Binder Binder
	Outer  *Scope
}

func (s *Scope) Bind(name string, b Binder) *Scope {
	return &Scope{Name: name, Binder: b, Outer: s}
}

func (s *Scope) Lookup(name string) (Binder, bool) {
	for ; s != nil; s = s.Outer {
		if s.Name == name {
			return s.Binder, true
		}
	}
	return nil, false
}

// InteropField describes a static field reachable as `Class#FIELD`.
type InteropField struct {
	Kind  types.Kind
	Value any
	Const bool
}

// CaseCompiler compiles a nested case expression.
type CaseCompiler func(ctx *Context, n *syntax.Case, scope *Scope) (Code, error)

// Context carries everything elaboration and emission share for one compilation.
type Context struct {
	Types   *types.Arena
	Interop map[string]InteropField
	Log     *slog.Logger
	Case    CaseCompiler
}

func NewContext(log *slog.Logger) *Context {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Context{
		Types:   types.NewArena(),
		Interop: make(map[string]InteropField),
		Log:     log,
	}
}

// Logger never returns nil.
func (ctx *Context) Logger() *slog.Logger {
	if ctx.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ctx.Log
}
