// Package fixture loads case compilation inputs: a source expression together
// with the typed environment it is compiled in.
package fixture

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/internal/types"
)

// Binding is an environment value; Type uses the type expression syntax.
type Binding struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Interop declares a static field usable as `Class#FIELD`.
type Interop struct {
	Kind  string `yaml:"kind"`
	Value any    `yaml:"value"`
	Const bool   `yaml:"const"`
}

// Fixture is one compilation input.
type Fixture struct {
	Name    string             `yaml:"name"`
	Env     []Binding          `yaml:"env"`
	Interop map[string]Interop `yaml:"interop"`
	Source  string             `yaml:"source"`

	// Path is the file the fixture was loaded from, if any.
	Path string `yaml:"-"`
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fixture %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", path)
	}
	f.Path = path
	return f, nil
}

func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding yaml")
	}
	if f.Source == "" {
		return nil, errors.New("fixture has no source")
	}
	seen := make(map[string]bool, len(f.Env))
	for _, b := range f.Env {
		if b.Name == "" || b.Type == "" {
			return nil, errors.Errorf("env entry %q needs a name and a type", b.Name)
		}
		if seen[b.Name] {
			return nil, errors.Errorf("env entry %q declared twice", b.Name)
		}
		seen[b.Name] = true
	}
	return &f, nil
}

var kinds = map[string]types.Kind{
	"number":  types.Num,
	"string":  types.Str,
	"boolean": types.Bool,
	"bool":    types.Bool,
	"()":      types.Unit,
}

// Install registers the fixture's interop fields in ctx and returns the scope
// binding its environment. Environment values occupy slots 0..len(Env)-1.
func (f *Fixture) Install(ctx *expr.Context) (*expr.Scope, error) {
	for name, in := range f.Interop {
		k, ok := kinds[in.Kind]
		if !ok {
			return nil, errors.Errorf("interop %s: unknown kind %q", name, in.Kind)
		}
		ctx.Interop[name] = expr.InteropField{Kind: k, Value: constValue(in.Value), Const: in.Const}
	}
	var scope *expr.Scope
	for i, b := range f.Env {
		t, err := syntax.ParseType(b.Type, ctx.Types)
		if err != nil {
			return nil, errors.Wrapf(err, "env %s", b.Name)
		}
		scope = scope.Bind(b.Name, &expr.Arg{Name: b.Name, Slot: i, T: t})
	}
	return scope, nil
}

// constValue normalizes YAML scalars to the literal representation: numbers are float64.
func constValue(v any) any {
	switch v := v.(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return v
}
