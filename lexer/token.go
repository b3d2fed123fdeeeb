// Package lexer turns PL/0 source text into a stream of Tokens.
package lexer

import "fmt"

// Kind identifies one of PL/0's lexical categories.
type Kind int

// The lexical categories of PL/0. Ident through Else carry the reference
// implementation's numbers (2..33); Null (0) is the kind of an invalid
// symbol and EOF (1) ends the stream. Kind.Code gives the reference
// number the "-l" report prints (1 for Null).
const (
	Null Kind = iota
	EOF
	Ident
	Number
	Plus
	Minus
	Mult
	Slash
	Odd
	Eql
	Neq
	Less
	Leq
	Gtr
	Geq
	LParen
	RParen
	Comma
	Semicolon
	Period
	Becomes
	Begin
	End
	If
	Then
	While
	Do
	Call
	Const
	Var
	Proc
	Write
	Read
	Else
)

var kindNames = map[Kind]string{
	Null:      "nul",
	EOF:       "eof",
	Ident:     "ident",
	Number:    "number",
	Plus:      "+",
	Minus:     "-",
	Mult:      "*",
	Slash:     "/",
	Odd:       "odd",
	Eql:       "=",
	Neq:       "<>",
	Less:      "<",
	Leq:       "<=",
	Gtr:       ">",
	Geq:       ">=",
	LParen:    "(",
	RParen:    ")",
	Comma:     ",",
	Semicolon: ";",
	Period:    ".",
	Becomes:   ":=",
	Begin:     "begin",
	End:       "end",
	If:        "if",
	Then:      "then",
	While:     "while",
	Do:        "do",
	Call:      "call",
	Const:     "const",
	Var:       "var",
	Proc:      "procedure",
	Write:     "write",
	Read:      "read",
	Else:      "else",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// numericCode maps a Kind to the integer category number the reference
// lexeme dump uses (nulsym=1, identsym=2, ... elsesym=33). EOF has no
// reference counterpart; report.Lexemes never prints it.
var numericCode = map[Kind]int{
	Null: 1, Ident: 2, Number: 3, Plus: 4, Minus: 5, Mult: 6, Slash: 7,
	Odd: 8, Eql: 9, Neq: 10, Less: 11, Leq: 12, Gtr: 13, Geq: 14,
	LParen: 15, RParen: 16, Comma: 17, Semicolon: 18, Period: 19,
	Becomes: 20, Begin: 21, End: 22, If: 23, Then: 24, While: 25, Do: 26,
	Call: 27, Const: 28, Var: 29, Proc: 30, Write: 31, Read: 32, Else: 33,
}

// Code returns the numeric lexical category, matching the reference
// implementation's token_type enum, for the "-l" numeric token dump.
func (k Kind) Code() int {
	return numericCode[k]
}

// symbolicName returns the reference's bare enum-constant spelling
// (e.g. "identsym"), the second form the "-l" report prints.
var symbolicName = map[Kind]string{
	Null: "nulsym", Ident: "identsym", Number: "numbersym", Plus: "plussym",
	Minus: "minussym", Mult: "multsym", Slash: "slashsym", Odd: "oddsym",
	Eql: "eqlsym", Neq: "neqsym", Less: "lessym", Leq: "leqsym",
	Gtr: "gtrsym", Geq: "geqsym", LParen: "lparentsym", RParen: "rparentsym",
	Comma: "commasym", Semicolon: "semicolonsym", Period: "periodsym",
	Becomes: "becomessym", Begin: "beginsym", End: "endsym", If: "ifsym",
	Then: "thensym", While: "whilesym", Do: "dosym", Call: "callsym",
	Const: "constsym", Var: "varsym", Proc: "procsym", Write: "writesym",
	Read: "readsym", Else: "elsesym",
}

// SymbolicName returns the reference enum-constant spelling for the "-l"
// report's symbolic token dump.
func (k Kind) SymbolicName() string {
	if name, ok := symbolicName[k]; ok {
		return name
	}
	return k.String()
}

// reserved maps a lowercased identifier spelling to its reserved-word Kind.
var reserved = map[string]Kind{
	"begin":     Begin,
	"end":       End,
	"if":        If,
	"then":      Then,
	"else":      Else,
	"while":     While,
	"do":        Do,
	"call":      Call,
	"const":     Const,
	"var":       Var,
	"procedure": Proc,
	"write":     Write,
	"read":      Read,
	"odd":       Odd,
}

// Position locates a token within the source for error reporting.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable tagged lexical unit.
type Token struct {
	Kind    Kind
	Literal string // original text, set for Ident and Number
	Pos     Position
}

func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
	}
	return t.Kind.String()
}
