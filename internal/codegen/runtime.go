package codegen

import "fmt"

// Runtime names the target-side helpers behind capabilities and shapes.
// It is loaded from the compiler configuration file.
type Runtime struct {
	IsEmpty string `yaml:"is_empty"`
	First   string `yaml:"first"`
	Rest    string `yaml:"rest"`
	Cons    string `yaml:"cons"`
	NoMatch string `yaml:"no_match"`
	Add     string `yaml:"add"`
	Sub     string `yaml:"sub"`
	Mul     string `yaml:"mul"`

	ListClass   string `yaml:"list_class"`
	StructClass string `yaml:"struct_class"`
	TagClass    string `yaml:"tag_class"`
}

func DefaultRuntime() Runtime {
	return Runtime{
		IsEmpty:     "yeti/lang/AList.isEmpty",
		First:       "yeti/lang/AList.first",
		Rest:        "yeti/lang/AList.rest",
		Cons:        "yeti/lang/LList.<init>",
		NoMatch:     "yeti/lang/Core.badMatch",
		Add:         "yeti/lang/Num.add",
		Sub:         "yeti/lang/Num.sub",
		Mul:         "yeti/lang/Num.mul",
		ListClass:   "yeti/lang/AList",
		StructClass: "yeti/lang/Struct",
		TagClass:    "yeti/lang/Tag",
	}
}

// Merge fills empty entries of r from defaults.
func (r Runtime) Merge(defaults Runtime) Runtime {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	return Runtime{
		IsEmpty:     pick(r.IsEmpty, defaults.IsEmpty),
		First:       pick(r.First, defaults.First),
		Rest:        pick(r.Rest, defaults.Rest),
		Cons:        pick(r.Cons, defaults.Cons),
		NoMatch:     pick(r.NoMatch, defaults.NoMatch),
		Add:         pick(r.Add, defaults.Add),
		Sub:         pick(r.Sub, defaults.Sub),
		Mul:         pick(r.Mul, defaults.Mul),
		ListClass:   pick(r.ListClass, defaults.ListClass),
		StructClass: pick(r.StructClass, defaults.StructClass),
		TagClass:    pick(r.TagClass, defaults.TagClass),
	}
}

func (r Runtime) Name(c Capability) string {
	switch c {
	case CapIsEmpty:
		return r.IsEmpty
	case CapFirst:
		return r.First
	case CapRest:
		return r.Rest
	case CapCons:
		return r.Cons
	case CapNoMatch:
		return r.NoMatch
	case CapAdd:
		return r.Add
	case CapSub:
		return r.Sub
	case CapMul:
		return r.Mul
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

func (r Runtime) ShapeName(s Shape) string {
	switch s {
	case ShapeList:
		return r.ListClass
	case ShapeStruct:
		return r.StructClass
	case ShapeTag:
		return r.TagClass
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}
