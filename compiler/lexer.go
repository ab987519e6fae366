package compiler

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.text)
}

// startsOperand reports whether t can begin an implicit factor.
func startsOperand(t token) bool {
	return t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen
}

// Normalize rewrites the caret power operator into its canonical "**" form.
func Normalize(src string) string {
	return strings.ReplaceAll(src, "^", "**")
}

// lex splits normalized input into tokens. Letter runs are split into known
// names when the whole run can be covered by them ("cosx" -> cos, x).
func lex(input string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(input) && isDigit(input[i+1])):
			end, err := scanNumber(input, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNum, text: input[i:end], pos: i})
			i = end
		case isLetter(c):
			end := i
			for end < len(input) && isLetter(input[end]) {
				end++
			}
			toks = append(toks, splitIdentifiers(input[i:end], i)...)
			i = end
		case c == '*':
			if i+1 < len(input) && input[i+1] == '*' {
				toks = append(toks, token{kind: tokOp, text: "**", pos: i})
				i += 2
			} else {
				toks = append(toks, token{kind: tokOp, text: "*", pos: i})
				i++
			}
		case c == '+' || c == '-' || c == '/':
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			r, _ := utf8.DecodeRuneInString(input[i:])
			return nil, &Error{Input: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", r), Err: ErrSyntax}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

// scanNumber returns the end offset of the numeric literal starting at i.
// An exponent is only consumed when a digit (optionally signed) follows the
// "e", so "2e" and "2ex" keep e as Euler's number.
func scanNumber(input string, i int) (int, error) {
	j := i
	for j < len(input) && isDigit(input[j]) {
		j++
	}
	if j < len(input) && input[j] == '.' {
		j++
		for j < len(input) && isDigit(input[j]) {
			j++
		}
	}
	if j < len(input) && (input[j] == 'e' || input[j] == 'E') {
		k := j + 1
		if k < len(input) && (input[k] == '+' || input[k] == '-') {
			k++
		}
		if k < len(input) && isDigit(input[k]) {
			for k < len(input) && isDigit(input[k]) {
				k++
			}
			j = k
		}
	}
	if j < len(input) && input[j] == '.' {
		return 0, &Error{Input: input, Pos: j, Msg: "malformed number", Err: ErrSyntax}
	}
	return j, nil
}

func splitIdentifiers(run string, pos int) []token {
	parts := splitRun(run)
	if parts == nil {
		return []token{{kind: tokIdent, text: run, pos: pos}}
	}
	toks := make([]token, len(parts))
	for i, part := range parts {
		toks[i] = token{kind: tokIdent, text: part, pos: pos}
		pos += len(part)
	}
	return toks
}

// splitRun covers run with known names, longest match first, backtracking
// when a prefix leaves an unsplittable rest. It returns nil if no cover
// exists.
func splitRun(run string) []string {
	if run == "" {
		return []string{}
	}
	for l := min(len(run), maxNameLen); l >= 1; l-- {
		if !isKnownName(run[:l]) {
			continue
		}
		if rest := splitRun(run[l:]); rest != nil {
			return append([]string{run[:l]}, rest...)
		}
	}
	return nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
