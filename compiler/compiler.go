package compiler

import (
	"strconv"

	"github.com/pl0lang/pl0c/code"
	"github.com/pl0lang/pl0c/lexer"
	"github.com/pl0lang/pl0c/symtab"
)

// MaxLexicalLevels is the deepest procedure nesting the compiler accepts
// (level 0 is the program block itself).
const MaxLexicalLevels = 3

// MaxLiteral is the largest value a number token may denote.
const MaxLiteral = 2047

// Compiler drives the lexer over one source buffer, emitting into a
// code.Stream and populating a symtab.Table as it goes. It holds no
// package-level state — every parse/emit operation hangs off one
// Compiler value, the way spec.md's design notes ask for in place of
// the reference's file-scope globals.
type Compiler struct {
	lex    *lexer.Lexer
	cur    lexer.Token
	table  *symtab.Table
	stream *code.Stream
	errs   ErrorList

	lexIssuesSeen int
}

// New returns a Compiler ready to compile src.
func New(src string) *Compiler {
	c := &Compiler{
		lex:    lexer.New(src),
		table:  symtab.New(),
		stream: code.NewStream(),
	}
	c.advance()
	return c
}

// Compile runs the whole parse/emit pass and returns the populated
// instruction stream, symbol table, and any errors collected. Any error
// suppresses a subsequent VM run (spec §7's propagation policy); the
// caller is responsible for checking errs.HasErrors() before executing
// the returned stream.
func Compile(src string) (*code.Stream, *symtab.Table, *ErrorList) {
	c := New(src)
	c.block(0, 0)
	if c.cur.Kind != lexer.Period {
		c.error(9)
	}
	if !c.errs.HasErrors() {
		c.stream.Emit(code.SIOHalt, 0, 0, 0)
	}
	return c.stream, c.table, &c.errs
}

// advance pulls the next token from the lexer into cur, folding any new
// lexical issues (codes 25-27) into the same error list parse errors
// accumulate in — the reference's error stream interleaves both kinds
// in scan order, and our lexer buffers its issues separately only
// because it has no access to a shared error sink of its own.
func (c *Compiler) advance() {
	c.cur = c.lex.NextToken()
	issues := c.lex.Issues()
	for ; c.lexIssuesSeen < len(issues); c.lexIssuesSeen++ {
		iss := issues[c.lexIssuesSeen]
		c.errs.Add(iss.Code, iss.Pos)
	}
}

func (c *Compiler) error(code int) {
	c.errs.Add(code, c.cur.Pos)
}

// expect consumes cur if it matches kind, reporting errCode and leaving
// cur untouched otherwise (so the caller's own follow-set check decides
// what happens next, the same opportunistic recovery the reference
// relies on to keep reporting further errors in one pass).
func (c *Compiler) expect(kind lexer.Kind, errCode int) bool {
	if c.cur.Kind == kind {
		c.advance()
		return true
	}
	c.error(errCode)
	return false
}

// block compiles one lexical block: const/var/procedure declarations
// followed by one statement. procSym is the symtab index of the
// procedure symbol this block is the body of, or 0 for the outermost
// program block.
func (c *Compiler) block(level, procSym int) {
	if level > MaxLexicalLevels {
		c.error(26)
	}

	dataIndex := 4
	jmpIdx := c.stream.Emit(code.JMP, 0, 0, 0)

	for c.cur.Kind == lexer.Const || c.cur.Kind == lexer.Var || c.cur.Kind == lexer.Proc {
		switch c.cur.Kind {
		case lexer.Const:
			c.advance()
			for c.cur.Kind == lexer.Ident {
				c.constDeclaration(level)
				for c.cur.Kind == lexer.Comma {
					c.advance()
					c.constDeclaration(level)
				}
				c.expect(lexer.Semicolon, 5)
			}
		case lexer.Var:
			c.advance()
			for c.cur.Kind == lexer.Ident {
				c.varDeclaration(level, &dataIndex)
				for c.cur.Kind == lexer.Comma {
					c.advance()
					c.varDeclaration(level, &dataIndex)
				}
				c.expect(lexer.Semicolon, 5)
			}
		case lexer.Proc:
			c.advance()
			var idx int
			if c.cur.Kind == lexer.Ident {
				idx = c.table.Enter(symtab.Symbol{Kind: symtab.Procedure, Name: c.cur.Literal, Level: level})
				c.advance()
			} else {
				c.error(4)
			}
			c.expect(lexer.Semicolon, 5)
			c.block(level+1, idx)
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRRet))
			c.expect(lexer.Semicolon, 5)
		}
	}

	entry := c.stream.Here()
	c.stream.Patch(jmpIdx, entry)
	if procSym != 0 {
		c.table.SetAddress(procSym, entry)
	}
	c.stream.Emit(code.INC, 0, 0, dataIndex)
	c.statement(level)
}

func (c *Compiler) constDeclaration(level int) {
	name := c.cur.Literal
	c.advance() // caller already confirmed Ident

	switch c.cur.Kind {
	case lexer.Eql:
		c.advance()
	case lexer.Becomes:
		c.error(1) // ":=" used where "=" expected
		c.advance()
	default:
		c.error(3)
		return
	}

	if c.cur.Kind != lexer.Number {
		c.error(2)
		return
	}
	val, _ := strconv.Atoi(c.cur.Literal)
	c.table.Enter(symtab.Symbol{Kind: symtab.Constant, Name: name, Value: val, Level: level})
	c.advance()
}

func (c *Compiler) varDeclaration(level int, dataIndex *int) {
	if c.cur.Kind != lexer.Ident {
		c.error(4)
		return
	}
	c.table.Enter(symtab.Symbol{Kind: symtab.Variable, Name: c.cur.Literal, Level: level, Address: *dataIndex})
	*dataIndex++
	c.advance()
}

func (c *Compiler) statement(level int) {
	switch c.cur.Kind {
	case lexer.Ident:
		name := c.cur.Literal
		idx := c.table.Position(name, c.table.Len(), level)
		valid := idx != 0
		var sym symtab.Symbol
		if idx == 0 {
			c.error(11)
		} else {
			sym, _ = c.table.At(idx)
			if sym.Kind != symtab.Variable {
				c.error(12)
				valid = false
			}
		}
		c.advance()
		c.expect(lexer.Becomes, 13)
		c.expression(level)
		if valid {
			c.stream.Emit(code.STO, 0, level-sym.Level, sym.Address)
		}

	case lexer.Call:
		c.advance()
		if c.cur.Kind != lexer.Ident {
			c.error(14)
			break
		}
		idx := c.table.Position(c.cur.Literal, c.table.Len(), level)
		if idx == 0 {
			c.error(11)
		} else {
			sym, _ := c.table.At(idx)
			if sym.Kind == symtab.Procedure {
				c.stream.Emit(code.CAL, 0, level-sym.Level, sym.Address)
			} else {
				c.error(15)
			}
		}
		c.advance()

	case lexer.If:
		c.advance()
		c.condition(level)
		c.expect(lexer.Then, 16)
		jpcIdx := c.stream.Emit(code.JPC, 0, 0, 0)
		c.statement(level)
		if c.cur.Kind == lexer.Else {
			c.advance()
			c.stream.Patch(jpcIdx, c.stream.Here()+1)
			jmpIdx := c.stream.Emit(code.JMP, 0, 0, 0)
			c.statement(level)
			c.stream.Patch(jmpIdx, c.stream.Here())
		} else {
			c.stream.Patch(jpcIdx, c.stream.Here())
		}

	case lexer.Begin:
		c.advance()
		c.statement(level)
		for c.cur.Kind == lexer.Semicolon {
			c.advance()
			c.statement(level)
		}
		c.expect(lexer.End, 17)

	case lexer.While:
		top := c.stream.Here()
		c.advance()
		c.condition(level)
		jpcIdx := c.stream.Emit(code.JPC, 0, 0, 0)
		c.expect(lexer.Do, 18)
		c.statement(level)
		c.stream.Emit(code.JMP, 0, 0, top)
		c.stream.Patch(jpcIdx, c.stream.Here())

	case lexer.Write:
		c.advance()
		c.expression(level)
		c.stream.Emit(code.SIOWrite, 0, 0, 1)

	case lexer.Read:
		c.advance()
		c.stream.Emit(code.SIORead, 0, 0, 2)
		idx := c.table.Position(c.cur.Literal, c.table.Len(), level)
		valid := idx != 0
		var sym symtab.Symbol
		if idx == 0 {
			c.error(11)
		} else {
			sym, _ = c.table.At(idx)
			if sym.Kind != symtab.Variable {
				c.error(12)
				valid = false
			}
		}
		if valid {
			c.stream.Emit(code.STO, 0, level-sym.Level, sym.Address)
		}
		c.advance()
	}
}

func (c *Compiler) condition(level int) {
	if c.cur.Kind == lexer.Odd {
		c.advance()
		c.expression(level)
		c.stream.Emit(code.OPR, 0, 0, int(code.OPROdd))
		return
	}

	c.expression(level)
	relops := map[lexer.Kind]int{
		lexer.Eql: int(code.OPREql), lexer.Neq: int(code.OPRNeq),
		lexer.Less: int(code.OPRLss), lexer.Leq: int(code.OPRLeq),
		lexer.Gtr: int(code.OPRGtr), lexer.Geq: int(code.OPRGeq),
	}
	subcode, ok := relops[c.cur.Kind]
	if !ok {
		c.error(20)
		return
	}
	c.advance()
	c.expression(level)
	c.stream.Emit(code.OPR, 0, 0, subcode)
}

func (c *Compiler) expression(level int) {
	if c.cur.Kind == lexer.Plus || c.cur.Kind == lexer.Minus {
		neg := c.cur.Kind == lexer.Minus
		c.advance()
		c.term(level)
		if neg {
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRNeg))
		}
	} else {
		c.term(level)
	}

	for c.cur.Kind == lexer.Plus || c.cur.Kind == lexer.Minus {
		add := c.cur.Kind == lexer.Plus
		c.advance()
		c.term(level)
		if add {
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRAdd))
		} else {
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRSub))
		}
	}
}

func (c *Compiler) term(level int) {
	c.factor(level)
	for c.cur.Kind == lexer.Mult || c.cur.Kind == lexer.Slash {
		mul := c.cur.Kind == lexer.Mult
		c.advance()
		c.factor(level)
		if mul {
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRMul))
		} else {
			c.stream.Emit(code.OPR, 0, 0, int(code.OPRDiv))
		}
	}
}

func (c *Compiler) factor(level int) {
	switch c.cur.Kind {
	case lexer.Ident:
		idx := c.table.Position(c.cur.Literal, c.table.Len(), level)
		if idx == 0 {
			c.error(11)
		} else {
			sym, _ := c.table.At(idx)
			switch sym.Kind {
			case symtab.Constant:
				c.stream.Emit(code.LIT, 0, 0, sym.Value)
			case symtab.Variable:
				c.stream.Emit(code.LOD, 0, level-sym.Level, sym.Address)
			default:
				c.error(21) // expression must not contain a procedure identifier
			}
		}
		c.advance()

	case lexer.Number:
		val, _ := strconv.Atoi(c.cur.Literal)
		if val > MaxLiteral {
			c.error(25)
			val = 0
		}
		c.stream.Emit(code.LIT, 0, 0, val)
		c.advance()

	case lexer.LParen:
		c.advance()
		c.expression(level)
		c.expect(lexer.RParen, 22)

	default:
		c.error(24) // an expression cannot begin with this symbol
		c.advance()
	}
}
