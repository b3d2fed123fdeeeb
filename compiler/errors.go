// Package compiler implements the one-pass recursive-descent parser and
// code emitter: it drives lexer.Lexer, populates a symtab.Table, and emits
// into a code.Stream, backpatching forward jumps as their targets become
// known.
package compiler

import (
	"fmt"
	"strings"

	"github.com/pl0lang/pl0c/lexer"
)

// messages holds the fixed English string for each of PL/0's 27 error
// codes. Several codes are deliberately reused for more than one
// condition (26 covers both "identifier too long" and "lexical depth
// exceeded"), matching the reference compiler's taxonomy exactly.
var messages = map[int]string{
	1:  "Use = instead of :=",
	2:  "= must be followed by a number",
	3:  "Identifier must be followed by =",
	4:  "const, var, procedure must be followed by identifier",
	5:  "Semicolon or comma missing",
	6:  "Incorrect symbol after procedure declaration",
	7:  "Statement expected",
	8:  "Incorrect symbol after statement part in block",
	9:  "Period expected",
	10: "Semicolon between statements missing",
	11: "Undeclared identifier",
	12: "Assignment to constant or procedure is not allowed",
	13: "Assignment operator expected",
	14: "Call must be followed by an identifier",
	15: "Call of a constant or variable is meaningless",
	16: "Then expected",
	17: "Semicolon or } expected",
	18: "Do expected",
	19: "Incorrect symbol following statement",
	20: "Relational operator expected",
	21: "Expression must not contain a procedure identifier",
	22: "Right parenthesis missing",
	23: "The preceding factor cannot begin with this symbol",
	24: "An expression cannot begin with this symbol",
	25: "This number is too large",
	26: "Identifier too long",
	27: "Invalid symbol",
}

// Message returns the fixed English string for an error code, or a
// generic fallback for an unrecognized one (mirroring the reference's
// unconditional default-case print).
func Message(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Invalid instruction"
}

// Error is one reported compile-time error: a numeric code plus the
// source position that triggered it.
type Error struct {
	Code int
	Pos  lexer.Position
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: error %d: %s", e.Pos, e.Code, Message(e.Code))
}

// ErrorList accumulates every error raised during a compilation. The
// reference compiler does not stop at the first error — it keeps
// parsing so it can report as many problems as it can find in one
// pass — but the first error recorded is authoritative for the
// process's exit status (spec §7's propagation policy).
type ErrorList struct {
	errs []Error
}

// Add records a new error at the given position.
func (l *ErrorList) Add(code int, pos lexer.Position) {
	l.errs = append(l.errs, Error{Code: code, Pos: pos})
}

// HasErrors reports whether any error was recorded.
func (l *ErrorList) HasErrors() bool {
	return len(l.errs) > 0
}

// First returns the first error recorded, or false if none were.
func (l *ErrorList) First() (Error, bool) {
	if len(l.errs) == 0 {
		return Error{}, false
	}
	return l.errs[0], true
}

// All returns every error in the order recorded.
func (l *ErrorList) All() []Error {
	return l.errs
}

func (l *ErrorList) Error() string {
	lines := make([]string, len(l.errs))
	for i, e := range l.errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
