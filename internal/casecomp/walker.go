package casecomp

import (
	"github.com/mth/yeti-sub001/internal/types"
)

// CheckPartialMatch walks the type a case scrutinee was elaborated against and
// returns the path to the first value shape no pattern covers, or "" when the
// patterns are exhaustive. Nodes currently being walked count as covered, so
// recursive types terminate.
func CheckPartialMatch(a *types.Arena, t types.Ref) string {
	if a.Seen(t) || a.Has(t, types.AnyPattern) {
		return ""
	}
	if link := a.Link(t); link != types.Nil {
		return CheckPartialMatch(a, link)
	}
	if a.Has(t, types.PartialPattern) {
		if a.Kind(t) == types.List {
			if a.ListForms(t)&types.EmptyForm == 0 {
				return "[]"
			}
			return "_::_"
		}
		return a.String(t)
	}
	if a.Kind(t) == types.Var {
		return ""
	}

	release, ok := a.Acquire(t)
	if !ok {
		return ""
	}
	defer release()

	switch a.Kind(t) {
	case types.List:
		if s := CheckPartialMatch(a, a.Params(t)[0]); s != "" {
			return "(" + s + ")::_"
		}
	case types.Fun:
		for _, p := range a.Params(t) {
			if s := CheckPartialMatch(a, p); s != "" {
				return s
			}
		}
	case types.Struct:
		for _, f := range a.Members(t) {
			if s := CheckPartialMatch(a, f.Type); s != "" {
				return "." + f.Name + " (" + s + ")"
			}
		}
	case types.Variant:
		members := a.Members(t)
		if a.MatchedCount(t) > 0 {
			for _, f := range members {
				if !a.Matched(t, f.Name) {
					return f.Name + " " + payloadText(a, f.Type)
				}
			}
		}
		for _, f := range members {
			if s := CheckPartialMatch(a, f.Type); s != "" {
				return f.Name + " (" + s + ")"
			}
		}
	}
	return ""
}

func payloadText(a *types.Arena, t types.Ref) string {
	a.Expand(t)
	if a.Kind(t) == types.Unit {
		return "()"
	}
	return "(" + a.String(t) + ")"
}
