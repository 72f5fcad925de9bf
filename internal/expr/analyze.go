package expr

import (
	"fmt"

	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
	"github.com/mth/yeti-sub001/yetierr"
)

// ErrorAt builds a positioned compile error.
func ErrorAt(n syntax.Node, typ yetierr.ErrorType, format string, args ...any) error {
	pos := n.Position()
	return yetierr.NewCompileErrorAt(typ, pos.Line, pos.Column, fmt.Sprintf(format, args...))
}

// Unify unifies a and b, reporting a failure as a type mismatch at n.
func (ctx *Context) Unify(n syntax.Node, a, b types.Ref) error {
	if err := ctx.Types.Unify(a, b); err != nil {
		return ErrorAt(n, yetierr.TypeTypeMismatch, "%s", err.Error())
	}
	return nil
}

// Analyze compiles n in scope.
func Analyze(ctx *Context, n syntax.Node, scope *Scope) (Code, error) {
	a := ctx.Types
	switch n := n.(type) {
	case *syntax.NumLit:
		return &Literal{Value: n.Value, T: a.NewPrim(types.Num)}, nil
	case *syntax.StrLit:
		return &Literal{Value: n.Value, T: a.NewPrim(types.Str)}, nil
	case *syntax.UnitLit:
		return &Literal{T: a.NewPrim(types.Unit)}, nil
	case *syntax.ObjectRef:
		return analyzeInterop(ctx, n)
	case *syntax.Sym:
		if n.Name == "_" || n.Name == "..." {
			return nil, ErrorAt(n, yetierr.TypeBadPattern, "%s is not an expression", n.Name)
		}
		b, ok := scope.Lookup(n.Name)
		if !ok {
			return nil, ErrorAt(n, yetierr.TypeUnknownName, "Unknown identifier: %s", n.Name)
		}
		return b.Ref(n.Pos), nil
	case *syntax.BinOp:
		return analyzeBinOp(ctx, n, scope)
	case *syntax.ListLit:
		elem := a.NewVar()
		res := &List{T: a.NewList(elem)}
		for _, it := range n.Items {
			c, err := Analyze(ctx, it, scope)
			if err != nil {
				return nil, err
			}
			if err := ctx.Unify(it, elem, c.Type()); err != nil {
				return nil, err
			}
			res.Items = append(res.Items, c)
		}
		return res, nil
	case *syntax.Select:
		s, err := Analyze(ctx, n.Expr, scope)
		if err != nil {
			return nil, err
		}
		ft := a.NewVar()
		if err := ctx.Unify(n, s.Type(), a.NewStruct(types.Field{Name: n.Name, Type: ft})); err != nil {
			return nil, err
		}
		return &Select{Struct: s, Name: n.Name, T: ft}, nil
	case *syntax.Case:
		if ctx.Case == nil {
			return nil, ErrorAt(n, yetierr.TypeUnsupported, "case expressions are not available here")
		}
		return ctx.Case(ctx, n, scope)
	}
	return nil, ErrorAt(n, yetierr.TypeUnsupported, "Unsupported expression: %s", n)
}

func analyzeInterop(ctx *Context, n *syntax.ObjectRef) (Code, error) {
	f, ok := ctx.Interop[n.String()]
	if !ok {
		return nil, ErrorAt(n, yetierr.TypeUnknownName, "Unknown field %s", n)
	}
	t := ctx.Types.NewPrim(f.Kind)
	if f.Const {
		return &Literal{Value: f.Value, T: t}, nil
	}
	return &Static{Owner: n.Class, Name: n.Field, T: t}, nil
}

var arith = map[string]codegen.Capability{
	"+": codegen.CapAdd,
	"-": codegen.CapSub,
	"*": codegen.CapMul,
}

func analyzeBinOp(ctx *Context, n *syntax.BinOp, scope *Scope) (Code, error) {
	a := ctx.Types
	if n.Op == "" {
		sym, ok := n.Left.(*syntax.Sym)
		if !ok || !syntax.IsConstructor(sym.Name) {
			return nil, ErrorAt(n, yetierr.TypeUnsupported, "Unsupported application: %s", n)
		}
		arg, err := Analyze(ctx, n.Right, scope)
		if err != nil {
			return nil, err
		}
		t := a.NewVariant(types.Field{Name: sym.Name, Type: arg.Type()})
		return &Tag{Name: sym.Name, Arg: arg, T: t}, nil
	}
	l, err := Analyze(ctx, n.Left, scope)
	if err != nil {
		return nil, err
	}
	r, err := Analyze(ctx, n.Right, scope)
	if err != nil {
		return nil, err
	}
	if n.Op == "::" {
		t := a.NewList(l.Type())
		if err := ctx.Unify(n, t, r.Type()); err != nil {
			return nil, err
		}
		return &Call{Cap: codegen.CapCons, Args: []Code{l, r}, T: t}, nil
	}
	capability, ok := arith[n.Op]
	if !ok {
		return nil, ErrorAt(n, yetierr.TypeUnsupported, "Unsupported operator %s", n.Op)
	}
	for _, side := range []struct {
		node syntax.Node
		code Code
	}{{n.Left, l}, {n.Right, r}} {
		if err := ctx.Unify(side.node, side.code.Type(), a.NewPrim(types.Num)); err != nil {
			return nil, err
		}
	}
	return &Call{Cap: capability, Args: []Code{l, r}, T: a.NewPrim(types.Num)}, nil
}
