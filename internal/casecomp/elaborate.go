package casecomp

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
	"github.com/mth/yeti-sub001/yetierr"
)

// elaborator builds the patterns of one case expression.
type elaborator struct {
	ctx   *expr.Context
	a     *types.Arena
	scope *expr.Scope
	base  *slotBase
	slots slotAllocator

	// variants registered for sealing, touched every variant node seen so far
	variants *set.Set[types.Ref]
	touched  *set.Set[types.Ref]
	// listVars collects unbound variables met while elaborating one list item
	listVars *set.Set[types.Ref]
	// submatch > 0 inside list and cons sub-patterns, whose variants are not sealed
	submatch int
}

func newElaborator(ctx *expr.Context, base *slotBase) *elaborator {
	return &elaborator{
		ctx:      ctx,
		a:        ctx.Types,
		base:     base,
		variants: set.New[types.Ref](4),
		touched:  set.New[types.Ref](4),
	}
}

func (el *elaborator) unify(n syntax.Node, x, y types.Ref) error {
	return el.ctx.Unify(n, x, y)
}

// pattern elaborates n against t, the type of the value it will be matched with.
func (el *elaborator) pattern(n syntax.Node, t types.Ref) (Pattern, error) {
	a := el.a
	if a.Has(t, types.AnyPattern) {
		return nil, expr.ErrorAt(n, yetierr.TypeUnreachablePattern, "Useless case %s (any value already matched)", n)
	}
	a.Expand(t)
	if el.listVars != nil && a.Unbound(t) {
		el.listVars.Insert(t)
	}

	switch n := n.(type) {
	case *syntax.Sym:
		a.SetFlags(t, types.AnyPattern)
		if root := a.Deref(t); a.Kind(root) == types.Variant {
			a.SetFlags(root, types.AnyPattern)
		}
		if n.Name == "_" || n.Name == "..." {
			return &Wildcard{}, nil
		}
		b := &Binding{Name: n.Name, Index: el.slots.alloc(), Type: t, base: el.base}
		el.scope = el.scope.Bind(n.Name, b)
		return &Bind{Binding: b}, nil

	case *syntax.UnitLit:
		if err := el.unify(n, t, a.NewPrim(types.Unit)); err != nil {
			return nil, err
		}
		a.SetFlags(t, types.AnyPattern)
		return &Wildcard{}, nil

	case *syntax.NumLit, *syntax.StrLit, *syntax.ObjectRef:
		return el.literal(n, t)

	case *syntax.ListLit:
		if len(n.Items) == 0 {
			if err := el.unify(n, t, a.NewList(a.NewVar())); err != nil {
				return nil, err
			}
			a.MarkListForm(t, types.EmptyForm)
			return &EmptyList{}, nil
		}
		return el.fixedList(n, t)

	case *syntax.BinOp:
		switch n.Op {
		case "":
			return el.variant(n, t)
		case "::":
			return el.cons(n, t)
		}

	case *syntax.StructLit:
		return el.record(n, t)
	}
	return nil, expr.ErrorAt(n, yetierr.TypeBadPattern, "Bad case pattern: %s", n)
}

func (el *elaborator) literal(n syntax.Node, t types.Ref) (Pattern, error) {
	a := el.a
	c, err := expr.Analyze(el.ctx, n, el.scope)
	if err != nil {
		return nil, err
	}
	if c.Flags()&expr.Const == 0 {
		return nil, expr.ErrorAt(n, yetierr.TypeBadPattern, "Bad case pattern: %s", n)
	}
	root := a.Deref(t)
	switch kind := a.Kind(c.Type()); {
	case a.Kind(root) == types.Var:
		p := a.NewPrim(kind)
		a.Bind(root, p)
		root = p
	case a.Kind(root) != kind:
		return nil, expr.ErrorAt(n, yetierr.TypeTypeMismatch, "Pattern type mismatch: %s is not %s",
			a.String(c.Type()), a.String(root))
	}
	a.SetFlags(root, types.PartialPattern)
	return &Literal{Value: c}, nil
}

// fixedList elaborates every item against one element type. Coverage flags are
// cleared between items so an earlier item cannot make a later one useless; on
// exit a variable stays covered only when every item covered it.
func (el *elaborator) fixedList(n *syntax.ListLit, t types.Ref) (Pattern, error) {
	a := el.a
	itemt := a.NewVar()
	items := make([]Pattern, len(n.Items))
	outer := el.listVars
	seen := set.New[types.Ref](4)
	covered := make(map[types.Ref]int)
	anyItem := true

	el.submatch++
	for i, item := range n.Items {
		a.ClearFlags(itemt, types.AnyPattern)
		for _, v := range seen.Slice() {
			a.ClearFlags(v, types.AnyPattern)
		}
		el.listVars = set.New[types.Ref](4)
		p, err := el.pattern(item, itemt)
		if err != nil {
			el.listVars = outer
			el.submatch--
			return nil, err
		}
		items[i] = p
		seen.InsertSet(el.listVars)
		for _, v := range seen.Slice() {
			if a.Has(v, types.AnyPattern) {
				covered[v]++
			}
		}
		anyItem = anyItem && a.Has(itemt, types.AnyPattern)
	}
	el.submatch--
	el.listVars = outer
	if outer != nil {
		outer.InsertSet(seen)
	}
	for _, v := range seen.Slice() {
		if covered[v] == len(items) {
			a.SetFlags(v, types.AnyPattern)
		} else {
			a.ClearFlags(v, types.AnyPattern)
		}
	}
	if anyItem {
		a.SetFlags(itemt, types.AnyPattern)
	} else {
		a.ClearFlags(itemt, types.AnyPattern)
	}

	if err := el.unify(n, t, a.NewList(itemt)); err != nil {
		return nil, err
	}
	a.MarkListForm(t, types.FixedForm)
	return &FixedList{Items: items}, nil
}

// cons elaborates the head against a fresh element type and the tail against the
// list itself. The list's flags are restored after the tail, and the list counts
// as covered for every non-empty value only when the tail is irrefutable.
func (el *elaborator) cons(n *syntax.BinOp, t types.Ref) (Pattern, error) {
	a := el.a
	if err := el.unify(n, t, a.NewList(a.NewVar())); err != nil {
		return nil, err
	}
	elem := a.Params(t)[0]
	headt := a.NewVar()

	el.submatch++
	hd, err := el.pattern(n.Left, headt)
	if err == nil {
		err = el.unify(n.Left, elem, headt)
	}
	if err != nil {
		el.submatch--
		return nil, err
	}
	if a.Has(headt, types.AnyPattern) {
		a.SetFlags(elem, types.AnyPattern)
	}

	flags, forms := a.Flags(t), a.ListForms(t)
	tl, err := el.pattern(n.Right, t)
	el.submatch--
	if err != nil {
		return nil, err
	}
	a.ReplaceFlags(t, flags)
	a.RestoreListForms(t, forms)

	if Irrefutable(tl) {
		a.MarkListForm(t, types.ConsForm)
	} else {
		a.MarkListForm(t, types.FixedForm)
	}
	return &Cons{Head: hd, Tail: tl}, nil
}

func (el *elaborator) variant(n *syntax.BinOp, t types.Ref) (Pattern, error) {
	a := el.a
	sym, ok := n.Left.(*syntax.Sym)
	if !ok {
		return nil, expr.ErrorAt(n, yetierr.TypeBadPattern, "Bad case pattern: %s", n)
	}
	tag := sym.Name
	if !syntax.IsConstructor(tag) {
		return nil, expr.ErrorAt(sym, yetierr.TypeBadPattern, "%s: Variant constructor must start with upper case", tag)
	}
	root := a.Deref(t)
	switch a.Kind(root) {
	case types.Var:
		v := a.NewVariant()
		a.Bind(root, v)
		root = v
	case types.Variant:
	default:
		return nil, expr.ErrorAt(n, yetierr.TypeTypeMismatch, "Variant %s ... is not %s", tag, a.String(root))
	}
	if !a.Allows(root, tag) {
		return nil, expr.ErrorAt(n, yetierr.TypeTypeMismatch, "Variant %s ... is not %s", tag, a.String(root))
	}
	if !el.touched.Contains(root) {
		el.touched.Insert(root)
		a.SetFlags(root, types.OrderedRequired)
		if el.submatch == 0 {
			el.variants.Insert(root)
		}
	}

	argt, ok := a.Member(root, tag)
	if !ok {
		argt = allowedPayload(a, root, tag)
		a.PutMember(root, tag, argt)
	}
	a.MarkMatched(root, tag)
	arg, err := el.pattern(n.Right, argt)
	if err != nil {
		return nil, err
	}
	return &VariantTag{Tag: tag, Arg: arg}, nil
}

func allowedPayload(a *types.Arena, v types.Ref, tag string) types.Ref {
	if allowed, ok := a.Allowed(v); ok {
		for _, f := range allowed {
			if f.Name == tag {
				return f.Type
			}
		}
	}
	return a.NewVar()
}

func (el *elaborator) record(n *syntax.StructLit, t types.Ref) (Pattern, error) {
	a := el.a
	if len(n.Fields) == 0 {
		return nil, expr.ErrorAt(n, yetierr.TypeBadPattern, "No sense in empty struct")
	}
	names := set.New[string](len(n.Fields))
	fields := make([]RecordField, len(n.Fields))
	allAny := true
	for i, f := range n.Fields {
		if !names.Insert(f.Name) {
			return nil, expr.ErrorAt(f.Expr, yetierr.TypeDuplicateField, "Duplicate field %s in the structure", f.Name)
		}
		ft := a.NewVar()
		if err := el.unify(f.Expr, t, a.NewStruct(types.Field{Name: f.Name, Type: ft})); err != nil {
			return nil, err
		}
		p, err := el.pattern(f.Expr, ft)
		if err != nil {
			return nil, err
		}
		fields[i] = RecordField{Name: f.Name, Pattern: p}
		allAny = allAny && a.Has(ft, types.AnyPattern)
	}
	// Field patterns only see fresh variables, so coverage is decided here for all members.
	for _, m := range a.Members(t) {
		if root := a.Deref(m.Type); allAny {
			a.SetFlags(root, types.AnyPattern)
		} else {
			a.ClearFlags(root, types.AnyPattern)
		}
	}
	return &Record{Fields: fields}, nil
}

// shareTags gives every variant position copied from one type variable the tags
// matched at its sibling positions. They will be one type, so a tag matched
// anywhere must be matched everywhere.
func shareTags(a *types.Arena, u *types.Unfolding) {
	for _, ps := range u.Shared() {
		var roots []types.Ref
		seen := set.New[types.Ref](len(ps))
		for _, p := range ps {
			if r := a.Deref(p); a.Kind(r) == types.Variant && seen.Insert(r) {
				roots = append(roots, r)
			}
		}
		for _, r := range roots {
			for _, o := range roots {
				for _, f := range a.Members(o) {
					if _, ok := a.Member(r, f.Name); !ok && a.Allows(r, f.Name) {
						a.PutMember(r, f.Name, f.Type)
					}
				}
			}
		}
	}
}

// finalizeVariants seals every registered variant no irrefutable pattern covered.
// Sealing an already sealed variant is a no-op.
func (el *elaborator) finalizeVariants() []types.Ref {
	var sealed []types.Ref
	for _, v := range el.variants.Slice() {
		root := el.a.Deref(v)
		if el.a.Kind(root) != types.Variant || el.a.Has(v, types.AnyPattern) || el.a.Has(root, types.AnyPattern) {
			continue
		}
		if el.a.Seal(root) {
			sealed = append(sealed, root)
		}
	}
	return sealed
}
