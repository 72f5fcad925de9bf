package yetierr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mth/yeti-sub001/yetierr"
)

func TestSyntaxError(t *testing.T) {
	err := yetierr.NewSyntaxError(10, 5, "unexpected token")
	assert.Equal(t, yetierr.TypeSyntax, err.Type())
	assert.Equal(t, 10, err.Line)
	assert.Equal(t, 5, err.Column)
	assert.Contains(t, err.Error(), "[SyntaxError] line 10:5 unexpected token")
}

func TestCompileErrorAt(t *testing.T) {
	err := yetierr.NewCompileErrorAt(yetierr.TypePartialMatch, 3, 7, "Partial match: None (())")
	assert.Equal(t, yetierr.TypePartialMatch, err.Type())
	assert.Equal(t, 3, err.Line)
	assert.Equal(t, 7, err.Column)
	assert.Equal(t, "[PartialMatch] line 3:7 Partial match: None (())", err.Error())
}

func TestCompileErrorInFile(t *testing.T) {
	err := yetierr.NewCompileErrorAt(yetierr.TypeDuplicateField, 1, 12, "Duplicate field a in the structure").InFile("maybe.yaml")
	assert.Equal(t, "maybe.yaml", err.FilePath)
	assert.Equal(t, yetierr.Position{Line: 1, Column: 12}, err.Position)
	assert.Equal(t, "[DuplicateField] maybe.yaml:1:12 Duplicate field a in the structure", err.Error())

	orig := yetierr.NewCompileErrorAt(yetierr.TypeBadPattern, 2, 1, "Bad case pattern: 1 + 2")
	moved := orig.InFile("x.yaml")
	assert.Equal(t, "[BadPattern] x.yaml:2:1 Bad case pattern: 1 + 2", moved.Error())
	assert.Equal(t, "[BadPattern] line 2:1 Bad case pattern: 1 + 2", orig.Error(), "InFile leaves the original alone")

	unplaced := yetierr.NewCompileError(yetierr.TypeBadPattern, "case expects some option!").InFile("x.yaml")
	assert.Equal(t, "[BadPattern] case expects some option!", unplaced.Error())
}

func TestCompileErrorNoPosition(t *testing.T) {
	err := yetierr.NewCompileError(yetierr.TypeBadPattern, "case expects some option!")
	assert.Equal(t, 0, err.Line)
	assert.Equal(t, "[BadPattern] case expects some option!", err.Error())
}

func TestTypeOfWrapped(t *testing.T) {
	inner := yetierr.NewCompileErrorAt(yetierr.TypeUnreachablePattern, 1, 1, "Useless case 0 (any value already matched)")
	wrapped := fmt.Errorf("compile maybe.yaml: %w", inner)
	assert.Equal(t, yetierr.TypeUnreachablePattern, yetierr.TypeOf(wrapped))
	assert.Equal(t, yetierr.ErrorType(""), yetierr.TypeOf(fmt.Errorf("plain")))
}

func TestMultiError(t *testing.T) {
	e1 := yetierr.NewSyntaxError(1, 1, "error 1")
	e2 := yetierr.NewSyntaxError(2, 2, "error 2")
	multi := &yetierr.MultiError{Errors: []error{e1, e2}}

	assert.Equal(t, yetierr.TypeSyntax, multi.Type())
	wrapped := &yetierr.MultiError{Errors: []error{fmt.Errorf("fixture a: %w", e1)}}
	assert.Equal(t, yetierr.TypeSyntax, wrapped.Type())
	errMsg := multi.Error()
	assert.Contains(t, errMsg, "2 error(s) occurred:")
	assert.Contains(t, errMsg, "- [SyntaxError] line 1:1 error 1")
	assert.Contains(t, errMsg, "- [SyntaxError] line 2:2 error 2")
}

func TestMultiErrorEmpty(t *testing.T) {
	multi := &yetierr.MultiError{Errors: []error{}}
	assert.Equal(t, yetierr.ErrorType("MultiError"), multi.Type())
	assert.True(t, strings.HasPrefix(multi.Error(), "0 error(s) occurred:"))
}
