// Package driver runs the case compilation pipeline over a fixture: parse the
// source, compile the case and record the emitted code.
package driver

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/mth/yeti-sub001/internal/casecomp"
	"github.com/mth/yeti-sub001/internal/codegen"
	"github.com/mth/yeti-sub001/internal/expr"
	"github.com/mth/yeti-sub001/internal/fixture"
	"github.com/mth/yeti-sub001/internal/syntax"
	"github.com/mth/yeti-sub001/yetierr"
)

// Parser turns source text into a syntax tree.
type Parser interface {
	Parse(src string) (syntax.Node, error)
}

// CaseCompiler elaborates and checks a case expression.
type CaseCompiler interface {
	Compile(ctx *expr.Context, n *syntax.Case, scope *expr.Scope) (*casecomp.Aggregate, error)
}

// Generator emits a compiled case after envSlots environment slots.
type Generator interface {
	Generate(agg *casecomp.Aggregate, envSlots int) (*codegen.Recorder, error)
}

// Result is everything the pipeline learned about one fixture.
type Result struct {
	Name     string
	Case     *casecomp.Aggregate
	Type     string
	Sealed   []string
	Listing  []string
	MaxDepth int
}

// Driver orchestrates the compilation process.
type Driver struct {
	parser    Parser
	compiler  CaseCompiler
	generator Generator
	log       *slog.Logger
}

// New creates a Driver with its dependencies.
func New(parser Parser, compiler CaseCompiler, generator Generator, log *slog.Logger) *Driver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Driver{
		parser:    parser,
		compiler:  compiler,
		generator: generator,
		log:       log,
	}
}

// NewDefault wires the source parser, the case compiler and a recording generator.
func NewDefault(rt codegen.Runtime, log *slog.Logger) *Driver {
	return New(SourceParser{}, CompilerFunc(casecomp.Compile), &RecordingGenerator{Runtime: rt}, log)
}

// Check parses and compiles the fixture without emitting code.
func (d *Driver) Check(f *fixture.Fixture) (*Result, error) {
	ctx := expr.NewContext(d.log)
	ctx.Case = casecomp.Hook
	scope, err := f.Install(ctx)
	if err != nil {
		return nil, err
	}
	n, err := d.parser.Parse(f.Source)
	if err != nil {
		return nil, attribute(err, f)
	}
	c, ok := n.(*syntax.Case)
	if !ok {
		return nil, errors.Errorf("fixture %s: source is not a case expression", f.Name)
	}
	agg, err := d.compiler.Compile(ctx, c, scope)
	if err != nil {
		return nil, attribute(err, f)
	}
	res := &Result{Name: f.Name, Case: agg, Type: ctx.Types.String(agg.Type())}
	for _, v := range agg.Sealed {
		res.Sealed = append(res.Sealed, ctx.Types.String(v))
	}
	return res, nil
}

// Compile runs the whole pipeline, including emission.
func (d *Driver) Compile(f *fixture.Fixture) (*Result, error) {
	res, err := d.Check(f)
	if err != nil {
		return nil, err
	}
	rec, err := d.generator.Generate(res.Case, len(f.Env))
	if err != nil {
		return nil, errors.Wrapf(err, "fixture %s", f.Name)
	}
	res.Listing = rec.Lines()
	res.MaxDepth = rec.MaxDepth()
	d.log.Debug("case emitted", "fixture", f.Name, "case", res.Case,
		"instructions", len(res.Listing), "max_depth", res.MaxDepth)
	return res, nil
}

// CheckAll checks every fixture, collecting all failures.
func (d *Driver) CheckAll(fs []*fixture.Fixture) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, f := range fs {
		res, err := d.Check(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	if len(errs) > 0 {
		return results, &yetierr.MultiError{Errors: errs}
	}
	return results, nil
}

// attribute names the fixture file in positioned compile errors.
func attribute(err error, f *fixture.Fixture) error {
	var ce *yetierr.CompileError
	if f.Path != "" && errors.As(err, &ce) {
		return ce.InFile(f.Path)
	}
	return err
}

// SourceParser parses expressions with the surface syntax.
type SourceParser struct{}

func (SourceParser) Parse(src string) (syntax.Node, error) {
	return syntax.ParseExpr(src)
}

// CompilerFunc adapts a function to CaseCompiler.
type CompilerFunc func(ctx *expr.Context, n *syntax.Case, scope *expr.Scope) (*casecomp.Aggregate, error)

func (f CompilerFunc) Compile(ctx *expr.Context, n *syntax.Case, scope *expr.Scope) (*casecomp.Aggregate, error) {
	return f(ctx, n, scope)
}

// RecordingGenerator emits into a codegen.Recorder and rejects unbalanced code.
type RecordingGenerator struct {
	Runtime codegen.Runtime
}

func (g *RecordingGenerator) Generate(agg *casecomp.Aggregate, envSlots int) (*codegen.Recorder, error) {
	rec := codegen.NewRecorder(g.Runtime)
	rec.Locals(envSlots)
	agg.Gen(rec)
	if err := rec.Err(); err != nil {
		return nil, errors.Wrap(err, "verifying emitted code")
	}
	if rec.Depth() != 1 {
		return nil, errors.Errorf("case left %d values on the stack", rec.Depth())
	}
	return rec, nil
}
