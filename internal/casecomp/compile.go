package casecomp

import (
	"log/slog"

	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
	"github.com/mth/yeti-sub001/yetierr"
)

// Compile elaborates every choice of n, checks that the patterns are exhaustive,
// seals the variants they enumerate and types the bodies. The returned aggregate
// emits the whole expression.
func Compile(ctx *expr.Context, n *syntax.Case, scope *expr.Scope) (*Aggregate, error) {
	if len(n.Choices) == 0 {
		return nil, expr.ErrorAt(n, yetierr.TypeBadPattern, "case expects some option!")
	}
	a := ctx.Types
	log := ctx.Logger()

	val, err := expr.Analyze(ctx, n.Value, scope)
	if err != nil {
		return nil, err
	}
	unfolded := a.Unfold(val.Type())
	argType := unfolded.Root

	agg := &Aggregate{Value: val, base: &slotBase{}}
	el := newElaborator(ctx, agg.base)
	scopes := make([]*expr.Scope, len(n.Choices))
	for i, ch := range n.Choices {
		el.scope = scope
		p, err := el.pattern(ch.Pattern, argType)
		if err != nil {
			return nil, err
		}
		agg.Choices = append(agg.Choices, Choice{Pattern: p})
		scopes[i] = el.scope
		el.slots.reset()
	}
	log.Debug("case elaborated", "pos", n.Position().String(), "choices", len(n.Choices), "type", a.String(argType))

	shareTags(a, unfolded)
	if path := CheckPartialMatch(a, argType); path != "" {
		return nil, expr.ErrorAt(n, yetierr.TypePartialMatch, "Partial match: %s", path)
	}
	agg.Sealed = el.finalizeVariants()
	for _, v := range agg.Sealed {
		log.Debug("variant sealed", "type", a.String(v))
	}
	a.Fold(unfolded)

	var result types.Ref
	for i, ch := range n.Choices {
		if ch.Body == nil {
			continue
		}
		body, err := expr.Analyze(ctx, ch.Body, scopes[i])
		if err != nil {
			return nil, err
		}
		agg.Choices[i].Body = body
		if result == types.Nil {
			result = body.Type()
			continue
		}
		have, prev := a.String(body.Type()), a.String(result)
		if a.Unify(result, body.Type()) != nil {
			return nil, expr.ErrorAt(ch.Body, yetierr.TypeBodyTypeMismatch,
				"This choice has a %s type, while another was a %s", have, prev)
		}
	}
	if result == types.Nil {
		result = a.NewVar()
	}
	agg.t = result

	have, want := a.String(val.Type()), a.String(argType)
	if a.Unify(val.Type(), argType) != nil {
		return nil, expr.ErrorAt(n.Value, yetierr.TypeTypeMismatch,
			"Inferred type for case argument is %s, but a %s is given", want, have)
	}
	agg.SlotCount = el.slots.max
	return agg, nil
}

// Hook adapts Compile to the expression compiler, so case expressions can nest.
func Hook(ctx *expr.Context, n *syntax.Case, scope *expr.Scope) (expr.Code, error) {
	agg, err := Compile(ctx, n, scope)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// Patterns lists the elaborated pattern of every choice.
func (c *Aggregate) Patterns() []Pattern {
	ps := make([]Pattern, len(c.Choices))
	for i, ch := range c.Choices {
		ps[i] = ch.Pattern
	}
	return ps
}

// LogValue renders an aggregate compactly in structured logs.
func (c *Aggregate) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("choices", len(c.Choices)),
		slog.Int("slots", c.SlotCount),
		slog.Int("sealed", len(c.Sealed)),
	)
}
