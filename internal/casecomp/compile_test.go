package casecomp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
	"github.com/mth/yeti-sub001/yetierr"
)

type binding struct {
	name, typ string
}

// compileCase builds a context whose environment holds the given typed
// arguments in slots 0..n-1 and compiles src, which must be a case.
func compileCase(t *testing.T, src string, env ...binding) (*expr.Context, *Aggregate, error) {
	t.Helper()
	ctx := expr.NewContext(nil)
	ctx.Case = Hook
	ctx.Interop["Math#PI"] = expr.InteropField{Kind: types.Num, Value: 3.14, Const: true}
	ctx.Interop["System#out"] = expr.InteropField{Kind: types.Str}
	var scope *expr.Scope
	for i, b := range env {
		ty, err := syntax.ParseType(b.typ, ctx.Types)
		require.NoError(t, err)
		scope = scope.Bind(b.name, &expr.Arg{Name: b.name, Slot: i, T: ty})
	}
	n, err := syntax.ParseExpr(src)
	require.NoError(t, err)
	c, ok := n.(*syntax.Case)
	require.True(t, ok, "%s is not a case", src)
	agg, err := Compile(ctx, c, scope)
	return ctx, agg, err
}

func emit(t *testing.T, agg *Aggregate, envSlots int) *codegen.Recorder {
	t.Helper()
	r := codegen.NewRecorder(codegen.DefaultRuntime())
	r.Locals(envSlots)
	agg.Gen(r)
	require.NoError(t, r.Err())
	assert.Equal(t, 1, r.Depth(), "case leaves exactly its result")
	return r
}

func TestCompileLiteralListing(t *testing.T) {
	ctx, agg, err := compileCase(t, `case n of 1: "one"; _: "other" esac`, binding{"n", "number"})
	require.NoError(t, err)
	assert.Equal(t, "string", ctx.Types.String(agg.Type()))
	assert.Equal(t, 0, agg.SlotCount)

	r := emit(t, agg, 1)
	want := []string{
		"\tload 0",
		"\tdup",
		"\tconst 1",
		"\tequals",
		"\tiffalse L1",
		"\tpop",
		"\tconst \"one\"",
		"\tgoto L0",
		"L1:",
		"\tpop",
		"\tconst \"other\"",
		"\tgoto L0",
		"L2:",
		"\tinvoke yeti/lang/Core.badMatch/1",
		"L0:",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileVariantListing(t *testing.T) {
	ctx, agg, err := compileCase(t, `case m of Some x: x; None (): 0 esac`,
		binding{"m", "Some number | None ()"})
	require.NoError(t, err)
	assert.Equal(t, "number", ctx.Types.String(agg.Type()))
	assert.Equal(t, 1, agg.SlotCount)

	r := emit(t, agg, 1)
	want := []string{
		"\tload 0",
		"\tcheckcast yeti/lang/Tag",
		"\tdup",
		"\ttagname",
		"\tdup",
		"\tconst \"Some\"",
		"\tifnotsame L1",
		"\tswap",
		"\tdup_x1",
		"\ttagpayload",
		"\tstore 1",
		"\tpop",
		"\tpop",
		"\tload 1",
		"\tgoto L0",
		"L1:",
		"\tdup",
		"\tconst \"None\"",
		"\tifnotsame L2",
		"\tswap",
		"\tdup_x1",
		"\ttagpayload",
		"\tpop",
		"\tpop",
		"\tpop",
		"\tconst 0",
		"\tgoto L0",
		"L2:",
		"\tpop",
		"\tinvoke yeti/lang/Core.badMatch/1",
		"L0:",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, agg.SlotBase())
}

func TestCompileListListing(t *testing.T) {
	_, agg, err := compileCase(t, `case l of []: 0; h :: _: h esac`, binding{"l", "list<number>"})
	require.NoError(t, err)

	r := emit(t, agg, 1)
	want := []string{
		"\tload 0",
		"\tcheckcast yeti/lang/AList",
		"\tdup",
		"\tdup",
		"\tifnull L2",
		"\tinvoke yeti/lang/AList.isEmpty/1",
		"\tiffalse L1",
		"\tgoto L3",
		"L2:",
		"\tpop",
		"L3:",
		"\tpop",
		"\tconst 0",
		"\tgoto L0",
		"L1:",
		"\tcheckcast yeti/lang/AList",
		"\tdup",
		"\tdup",
		"\tifnull L5",
		"\tdup",
		"\tinvoke yeti/lang/AList.isEmpty/1",
		"\tiftrue L5",
		"\tdup",
		"\tinvoke yeti/lang/AList.first/1",
		"\tstore 1",
		"\tpop",
		"\tgoto L6",
		"L5:",
		"\tpop",
		"\tgoto L4",
		"L6:",
		"\tpop",
		"\tload 1",
		"\tgoto L0",
		"L4:",
		"\tinvoke yeti/lang/Core.badMatch/1",
		"L0:",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileRecordReadsOnlyNamedFields(t *testing.T) {
	_, agg, err := compileCase(t, `case r of {a = 1, b}: b; {a = _, b = _}: "" esac`,
		binding{"r", "{a is number, b is string, c is boolean}"})
	require.NoError(t, err)

	r := emit(t, agg, 1)
	var fields []string
	for _, in := range r.Code() {
		if in.Op == "field" {
			fields = append(fields, in.Arg)
		}
	}
	assert.Equal(t, []string{"a", "b"}, fields)
}

func TestCompileCoverage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		env  []binding
	}{
		{"empty and cons", `case l of []: 0; _ :: _: 1 esac`, []binding{{"l", "list<number>"}}},
		{"literal then wildcard", `case n of 1: 1; _: 0 esac`, []binding{{"n", "number"}}},
		{"both tags", `case m of Some _: 1; None _: 0 esac`, []binding{{"m", "Some number | None ()"}}},
		{"open scrutinee", `case v of Some x: x; None (): 0 esac`, []binding{{"v", "'a"}}},
		{"nested tags", `case l of []: 0; Some x :: _: x; None () :: _: 0 esac`,
			[]binding{{"l", "list<Some number | None ()>"}}},
		{"record wildcard after literal", `case r of {a = 1}: 1; {a = _}: 0 esac`,
			[]binding{{"r", "{a is number, b is string}"}}},
		{"unit", `case u of (): 0 esac`, []binding{{"u", "()"}}},
		{"catch-all", `case n of 1: 1; ... esac`, []binding{{"n", "number"}}},
		{"fixed list then wildcard", `case l of [a, b]: a + b; _: 0 esac`, []binding{{"l", "list<number>"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, agg, err := compileCase(t, tt.src, tt.env...)
			require.NoError(t, err)
			emit(t, agg, len(tt.env))
		})
	}
}

func TestCompilePartialMatch(t *testing.T) {
	tests := []struct {
		src  string
		env  binding
		path string
	}{
		{`case l of []: 0 esac`, binding{"l", "list<number>"}, "_::_"},
		{`case l of h :: _: h esac`, binding{"l", "list<number>"}, "[]"},
		{`case l of [x]: x esac`, binding{"l", "list<number>"}, "[]"},
		{`case n of 1: 0 esac`, binding{"n", "number"}, "number"},
		{`case m of Some x: x esac`, binding{"m", "Some number | None ()"}, "None ()"},
		{`case m of None (): 0 esac`, binding{"m", "Some number | None ()"}, "Some (number)"},
		{`case l of []: 0; Some x :: _: x esac`, binding{"l", "list<Some number | None ()>"}, "(None ())::_"},
		{`case r of {a = 1}: 1 esac`, binding{"r", "{a is number, b is string}"}, ".a (number)"},
		{`case m of Some 1: 1; None _: 0 esac`, binding{"m", "Some number | None ()"}, "Some (number)"},
		{`case r of {a = Some _, b = None ()}: 1 esac`, binding{"r", "{a is 'a, b is 'a}"}, ".a (None ())"},
		{`case r of {a = Some _, b = None ()}: 1 esac`,
			binding{"r", "{a is Some number | None (), b is Some number | None ()}"}, ".a (None ())"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := compileCase(t, tt.src, tt.env)
			require.Error(t, err)
			assert.Equal(t, yetierr.TypePartialMatch, yetierr.TypeOf(err))
			assert.Equal(t, "[PartialMatch] line 1:1 Partial match: "+tt.path, err.Error())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src string
		env binding
		typ yetierr.ErrorType
		msg string
	}{
		{`case n of esac`, binding{"n", "number"}, yetierr.TypeBadPattern,
			"[BadPattern] line 1:1 case expects some option!"},
		{`case n of x: 1; 0: 2 esac`, binding{"n", "number"}, yetierr.TypeUnreachablePattern,
			"[UnreachablePattern] line 1:17 Useless case 0 (any value already matched)"},
		{`case n of _: 1; _: 2 esac`, binding{"n", "number"}, yetierr.TypeUnreachablePattern,
			"[UnreachablePattern] line 1:17 Useless case _ (any value already matched)"},
		{`case n of 1: "a"; _: 2 esac`, binding{"n", "number"}, yetierr.TypeBodyTypeMismatch,
			"[BodyTypeMismatch] line 1:22 This choice has a number type, while another was a string"},
		{`case n of "a": 1 esac`, binding{"n", "number"}, yetierr.TypeTypeMismatch,
			"[TypeMismatch] line 1:11 Pattern type mismatch: string is not number"},
		{`case m of Maybe x: 1; _: 2 esac`, binding{"m", "Some number | None ()"}, yetierr.TypeTypeMismatch,
			"[TypeMismatch] line 1:11 Variant Maybe ... is not Some number | None ()"},
		{`case n of Some x: 1 esac`, binding{"n", "number"}, yetierr.TypeTypeMismatch,
			"[TypeMismatch] line 1:11 Variant Some ... is not number"},
		{`case m of some x: 1 esac`, binding{"m", "Some number | None ()"}, yetierr.TypeBadPattern,
			"[BadPattern] line 1:11 some: Variant constructor must start with upper case"},
		{`case r of {a = 1, a = 2}: 1 esac`, binding{"r", "{a is number}"}, yetierr.TypeDuplicateField,
			"[DuplicateField] line 1:23 Duplicate field a in the structure"},
		{`case r of {}: 1 esac`, binding{"r", "{a is number}"}, yetierr.TypeBadPattern,
			"[BadPattern] line 1:11 No sense in empty struct"},
		{`case n of n + 1: 1 esac`, binding{"n", "number"}, yetierr.TypeBadPattern,
			"[BadPattern] line 1:13 Bad case pattern: n + 1"},
		{`case s of System#out: 1; _: 2 esac`, binding{"s", "string"}, yetierr.TypeBadPattern,
			"[BadPattern] line 1:11 Bad case pattern: System#out"},
		{`case r of {z = 1}: 1; _: 0 esac`, binding{"r", "{a is number}"}, yetierr.TypeTypeMismatch,
			"[TypeMismatch] line 1:16 Type mismatch: {a is number} is not {.z is 'a} (field z is missing)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, _, err := compileCase(t, tt.src, tt.env)
			require.Error(t, err)
			assert.Equal(t, tt.typ, yetierr.TypeOf(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestCompileSharedVariableCoveredPerPosition(t *testing.T) {
	ctx, agg, err := compileCase(t,
		`case r of {a = Some _, b = None ()}: 1; {a = None (), b = Some _}: 2 esac`,
		binding{"r", "{a is 'a, b is 'a}"})
	require.NoError(t, err)
	a := ctx.Types
	fa, ok := a.Member(agg.Value.Type(), "a")
	require.True(t, ok)
	assert.True(t, a.Sealed(fa))
	assert.False(t, a.Allows(fa, "Maybe"))
	emit(t, agg, 1)
}

// compileRecursive compiles src with l bound to  Nil () | Cons {head is number, tail is <itself>}.
func compileRecursive(t *testing.T, src string) (*expr.Context, *Aggregate, error) {
	t.Helper()
	ctx := expr.NewContext(nil)
	ctx.Case = Hook
	v, _ := recursive(ctx.Types)
	var scope *expr.Scope
	scope = scope.Bind("l", &expr.Arg{Name: "l", Slot: 0, T: v})
	n, err := syntax.ParseExpr(src)
	require.NoError(t, err)
	agg, err := Compile(ctx, n.(*syntax.Case), scope)
	return ctx, agg, err
}

func TestCompileRecursiveScrutinee(t *testing.T) {
	tests := []string{
		`case l of Cons {head = h, tail = _}: h; Nil (): 0 esac`,
		`case l of Cons {head = h, tail = rest}: h; Nil (): 0 esac`,
		`case l of Nil (): 0; Cons {head = h, tail = _}: h esac`,
		`case l of Cons {head = h, tail = Nil ()}: h; Cons {head = h, tail = Cons _}: h; Nil (): 0 esac`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			ctx, agg, err := compileRecursive(t, src)
			require.NoError(t, err)
			assert.Equal(t, "number", ctx.Types.String(agg.Type()))
			assert.Empty(t, agg.Sealed)
			emit(t, agg, 1)
		})
	}
}

func TestCompileRecursiveScrutineePartial(t *testing.T) {
	_, _, err := compileRecursive(t, `case l of Cons {head = 1, tail = Nil ()}: 1; Nil (): 0 esac`)
	require.Error(t, err)
	assert.Equal(t, "[PartialMatch] line 1:1 Partial match: Cons (.head (number))", err.Error())

	_, _, err = compileRecursive(t, `case l of Cons {head = h, tail = Nil ()}: h; Nil (): 0 esac`)
	require.Error(t, err)
	assert.Equal(t, yetierr.TypePartialMatch, yetierr.TypeOf(err))
	assert.Contains(t, err.Error(), "Partial match: Cons (.tail (Cons ")

	_, _, err = compileRecursive(t, `case l of Cons _: 1; Cons {head = h, tail = _}: h; Nil (): 0 esac`)
	require.Error(t, err)
	assert.Equal(t, "[UnreachablePattern] line 1:27 Useless case {head = h, tail = _} (any value already matched)", err.Error())
}

func TestCompileLiteralInterop(t *testing.T) {
	_, agg, err := compileCase(t, `case n of Math#PI: 1; _: 0 esac`, binding{"n", "number"})
	require.NoError(t, err)
	r := emit(t, agg, 1)
	assert.Contains(t, r.Lines(), "\tconst 3.14")
}

func TestCompileSealsEnumeratedVariant(t *testing.T) {
	ctx, agg, err := compileCase(t, `case v of Some x: x; None (): 0 esac`, binding{"v", "'a"})
	require.NoError(t, err)
	a := ctx.Types
	require.Len(t, agg.Sealed, 1)
	assert.True(t, a.Sealed(agg.Sealed[0]))
	assert.Equal(t, "Some number | None ()", a.String(agg.Sealed[0]))
	// the scrutinee learns the sealed type
	assert.Equal(t, "Some number | None ()", a.String(agg.Value.Type()))
	assert.False(t, a.Allows(agg.Value.Type(), "Maybe"))
}

func TestCompileWildcardKeepsVariantOpen(t *testing.T) {
	ctx, agg, err := compileCase(t, `case v of Some x: x; _: 0 esac`, binding{"v", "'a"})
	require.NoError(t, err)
	assert.Empty(t, agg.Sealed)
	assert.False(t, ctx.Types.Sealed(agg.Value.Type()))
	assert.True(t, ctx.Types.Allows(agg.Value.Type(), "Maybe"))
}

func TestCompileNestedVariantStaysOpen(t *testing.T) {
	ctx, agg, err := compileCase(t, `case l of []: 0; Some x :: _: x; _ :: _: 0 esac`, binding{"l", "list<'a>"})
	require.NoError(t, err)
	assert.Empty(t, agg.Sealed)
	elem := ctx.Types.Params(agg.Value.Type())[0]
	assert.False(t, ctx.Types.Sealed(elem))
}

func TestFinalizeVariantsIsIdempotent(t *testing.T) {
	ctx := expr.NewContext(nil)
	a := ctx.Types
	el := newElaborator(ctx, &slotBase{})
	v := a.NewVar()
	n, err := syntax.ParseExpr("Some x")
	require.NoError(t, err)
	el.scope = nil
	_, err = el.pattern(n, v)
	require.NoError(t, err)

	first := el.finalizeVariants()
	require.Len(t, first, 1)
	assert.True(t, a.Sealed(v))
	assert.Empty(t, el.finalizeVariants())
	assert.Equal(t, "Some 'a", a.String(v))
}

func TestSlotsRestartPerChoice(t *testing.T) {
	_, agg, err := compileCase(t, `case l of [a, b]: a + b; [c]: c; _: 0 esac`, binding{"l", "list<number>"})
	require.NoError(t, err)
	assert.Equal(t, 2, agg.SlotCount)

	first := agg.Choices[0].Pattern.(*FixedList)
	second := agg.Choices[1].Pattern.(*FixedList)
	assert.Equal(t, 0, first.Items[0].(*Bind).Binding.Index)
	assert.Equal(t, 1, first.Items[1].(*Bind).Binding.Index)
	assert.Equal(t, 0, second.Items[0].(*Bind).Binding.Index)

	emit(t, agg, 3)
	assert.Equal(t, 3, first.Items[0].(*Bind).Binding.Slot())
	assert.Equal(t, 3, second.Items[0].(*Bind).Binding.Slot())
}

func TestCompileNestedCase(t *testing.T) {
	ctx, agg, err := compileCase(t,
		`case m of Some x: case x of 0: 1; y: y esac; None (): 0 esac`,
		binding{"m", "Some number | None ()"})
	require.NoError(t, err)
	assert.Equal(t, "number", ctx.Types.String(agg.Type()))
	emit(t, agg, 1)
}

func TestCompileCatchAllEmitsNoMatch(t *testing.T) {
	_, agg, err := compileCase(t, `case n of 1: 1; ... esac`, binding{"n", "number"})
	require.NoError(t, err)
	r := emit(t, agg, 1)
	lines := r.Lines()
	assert.Equal(t, "\tinvoke yeti/lang/Core.badMatch/1", lines[len(lines)-2])
}

func TestPatterns(t *testing.T) {
	_, agg, err := compileCase(t, `case m of Some [x]: x; Some _: 0; None (): 0 esac`,
		binding{"m", "Some list<number> | None ()"})
	require.NoError(t, err)
	ps := agg.Patterns()
	require.Len(t, ps, 3)
	assert.IsType(t, &VariantTag{}, ps[0])
	assert.IsType(t, &FixedList{}, ps[0].(*VariantTag).Arg)
	assert.IsType(t, &Wildcard{}, ps[1].(*VariantTag).Arg)
	assert.IsType(t, &Wildcard{}, ps[2].(*VariantTag).Arg)
}
