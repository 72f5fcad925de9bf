package syntax

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/mth/yeti-sub001/yetierr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return t.text
	}
	return "'" + t.text + "'"
}

const punctuation = "()[]{},;:=+-*.|'#<>"

func tokenize(src string) ([]token, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	var scanErr error
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = yetierr.NewSyntaxError(s.Position.Line, s.Position.Column, msg)
		}
	}

	var toks []token
	for {
		r := s.Scan()
		if scanErr != nil {
			return nil, scanErr
		}
		pos := Pos{Line: s.Position.Line, Column: s.Position.Column}
		switch r {
		case scanner.EOF:
			return append(toks, token{kind: tokEOF, pos: Pos{Line: s.Pos().Line, Column: s.Pos().Column}}), nil
		case scanner.Ident:
			toks = append(toks, token{kind: tokIdent, text: s.TokenText(), pos: pos})
		case scanner.Int, scanner.Float:
			toks = append(toks, token{kind: tokNumber, text: s.TokenText(), pos: pos})
		case scanner.String:
			toks = append(toks, token{kind: tokString, text: s.TokenText(), pos: pos})
		default:
			text := string(r)
			switch {
			case r == ':' && s.Peek() == ':':
				s.Next()
				text = "::"
			case r == '-' && s.Peek() == '>':
				s.Next()
				text = "->"
			case r == '.' && s.Peek() == '.':
				s.Next()
				if s.Peek() != '.' {
					return nil, yetierr.NewSyntaxError(pos.Line, pos.Column, "unexpected '..'")
				}
				s.Next()
				text = "..."
			case !strings.ContainsRune(punctuation, r):
				return nil, yetierr.NewSyntaxError(pos.Line, pos.Column, fmt.Sprintf("unexpected character %q", r))
			}
			toks = append(toks, token{kind: tokPunct, text: text, pos: pos})
		}
	}
}
