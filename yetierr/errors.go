// Package yetierr defines the diagnostics of the case compiler. Every error the
// compiler reports carries an ErrorType so callers and tests can tell a partial
// match from a type clash without parsing messages. Positions are 1-based.
package yetierr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a diagnostic.
type ErrorType string

const (
	TypeSyntax             ErrorType = "SyntaxError"
	TypeUnreachablePattern ErrorType = "UnreachablePattern"
	TypeTypeMismatch       ErrorType = "TypeMismatch"
	TypeDuplicateField     ErrorType = "DuplicateField"
	TypePartialMatch       ErrorType = "PartialMatch"
	TypeBodyTypeMismatch   ErrorType = "BodyTypeMismatch"
	TypeBadPattern         ErrorType = "BadPattern"
	TypeUnknownName        ErrorType = "UnknownName"
	TypeUnsupported        ErrorType = "Unsupported"
)

// YetiError is implemented by every diagnostic of this module.
type YetiError interface {
	error
	Type() ErrorType
}

// Position locates a diagnostic in its source. The zero Position means unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) known() bool { return p.Line > 0 }

// locate renders "[Type] where message", where is empty for unknown positions.
func locate(typ ErrorType, file string, pos Position, msg string) string {
	switch {
	case !pos.known():
		return fmt.Sprintf("[%s] %s", typ, msg)
	case file != "":
		return fmt.Sprintf("[%s] %s:%d:%d %s", typ, file, pos.Line, pos.Column, msg)
	}
	return fmt.Sprintf("[%s] line %d:%d %s", typ, pos.Line, pos.Column, msg)
}

// SyntaxError is reported by the surface parser and the type expression parser.
type SyntaxError struct {
	Position
	Msg string
}

func NewSyntaxError(line, column int, msg string) *SyntaxError {
	return &SyntaxError{Position: Position{line, column}, Msg: msg}
}

func (e *SyntaxError) Type() ErrorType { return TypeSyntax }

func (e *SyntaxError) Error() string {
	return locate(TypeSyntax, "", e.Position, e.Msg)
}

// CompileError is raised by the step that detects the problem: elaboration,
// the coverage check or body typing.
type CompileError struct {
	Position
	Kind     ErrorType
	Msg      string
	FilePath string
}

// NewCompileError reports a problem with no source position.
func NewCompileError(typ ErrorType, msg string) *CompileError {
	return &CompileError{Kind: typ, Msg: msg}
}

func NewCompileErrorAt(typ ErrorType, line, column int, msg string) *CompileError {
	return &CompileError{Position: Position{line, column}, Kind: typ, Msg: msg}
}

func (e *CompileError) Type() ErrorType { return e.Kind }

func (e *CompileError) Error() string {
	return locate(e.Kind, e.FilePath, e.Position, e.Msg)
}

// InFile returns a copy of e attributed to path.
func (e *CompileError) InFile(path string) *CompileError {
	c := *e
	c.FilePath = path
	return &c
}

// MultiError is what checking several fixtures returns when more than one fails.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) occurred:\n", len(m.Errors))
	for _, err := range m.Errors {
		sb.WriteString("- ")
		sb.WriteString(err.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Type is the type of the first collected error.
func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if t := TypeOf(m.Errors[0]); t != "" {
			return t
		}
	}
	return "MultiError"
}

// TypeOf reports the ErrorType of err, or "" if err is not a YetiError.
func TypeOf(err error) ErrorType {
	var ye YetiError
	if errors.As(err, &ye) {
		return ye.Type()
	}
	return ""
}
