// Package report renders the three output artifacts the CLI can ask
// for: a lexeme dump ("-l"), an assembly listing ("-a"), and a
// per-instruction execution trace ("-v") — spec.md's C6.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pl0lang/pl0c/code"
	"github.com/pl0lang/pl0c/compiler"
	"github.com/pl0lang/pl0c/lexer"
	"github.com/pl0lang/pl0c/vm"
)

// Lexemes renders the "-l" report: the numeric token stream, then the
// same stream spelled out symbolically, then a pass/fail trailer.
func Lexemes(tokens []lexer.Token, errs *compiler.ErrorList) string {
	var numeric, symbolic []string
	for _, tok := range tokens {
		if tok.Kind == lexer.EOF {
			continue
		}
		numeric = append(numeric, strconv.Itoa(tok.Kind.Code()))
		if tok.Kind == lexer.Ident || tok.Kind == lexer.Number {
			numeric = append(numeric, tok.Literal)
		}
		symbolic = append(symbolic, tok.Kind.SymbolicName())
		if tok.Kind == lexer.Ident || tok.Kind == lexer.Number {
			symbolic = append(symbolic, tok.Literal)
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(numeric, " "))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(symbolic, " "))
	b.WriteString("\n\n")
	b.WriteString(trailer(errs))
	b.WriteString("\n")
	return b.String()
}

func trailer(errs *compiler.ErrorList) string {
	if errs == nil || !errs.HasErrors() {
		return "No errors, program is syntactically correct"
	}
	var b strings.Builder
	for _, e := range errs.All() {
		fmt.Fprintf(&b, "Error: %s\n", e.Error())
	}
	b.WriteString("Error(s), program is not syntactically correct")
	return b.String()
}

// Assembly renders the "-a" report: every instruction as four raw
// integers, op first.
func Assembly(stream *code.Stream) string {
	var b strings.Builder
	b.WriteString("Generated code:\n")
	for _, ins := range stream.All() {
		fmt.Fprintf(&b, "%d %d %d %d\n", int(ins.Op), ins.R, ins.L, ins.M)
	}
	return b.String()
}

// Trace accumulates one line per executed instruction plus its
// post-execution machine state, rendering the "-v" execution trace.
// It attaches to a vm.VM as a vm.StepObserver, so the VM package stays
// ignorant of trace formatting.
type Trace struct {
	lines []string
}

// NewTrace returns an empty Trace, ready to Observe a run.
func NewTrace() *Trace {
	return &Trace{}
}

// Header renders the initial-state block that precedes any executed
// instruction.
func (t *Trace) Header(m *vm.VM) string {
	var b strings.Builder
	b.WriteString("\t\tpc\tbp\tsp\tregisters\n")
	fmt.Fprintf(&b, "Initial values\t%d\t%d\t%d\t%s\n", m.PC, m.BP, m.SP, registerList(m))
	b.WriteString(stackLine(m))
	return b.String()
}

// Observe is a vm.StepObserver: call it (directly, or via
// m.OnStep = trace.Observe) to append one instruction's trace line.
func (t *Trace) Observe(m *vm.VM, addr int, ins code.Instruction) {
	var b strings.Builder
	mnemonic := ins.Op.String()
	if ins.Op == code.OPR {
		mnemonic = code.OprName(ins.M)
	}
	fmt.Fprintf(&b, "%d %s %d %d %d\t%d\t%d\t%d\t%s\n",
		addr, strings.ToLower(mnemonic), ins.R, ins.L, ins.M,
		m.PC, m.BP, m.SP, registerList(m))
	b.WriteString(stackLine(m))
	t.lines = append(t.lines, b.String())
}

// Render joins the header and every observed step into the full "-v"
// report body.
func (t *Trace) Render(m *vm.VM) string {
	var b strings.Builder
	b.WriteString(t.Header(m))
	for _, line := range t.lines {
		b.WriteString(line)
	}
	return b.String()
}

func registerList(m *vm.VM) string {
	parts := make([]string, vm.NumRegisters)
	for i, r := range m.R {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, " ")
}

// stackLine dumps data[1..sp], inserting "|" between activation
// records — at each index that begins a frame in the chain of dynamic
// links from the current bp back to the program's own frame at 1.
func stackLine(m *vm.VM) string {
	boundaries := map[int]bool{1: true}
	for b := m.BP; b > 1; {
		next := m.Data[b+2]
		boundaries[b] = true
		if next <= 0 || next >= b {
			break
		}
		b = next
	}

	var b strings.Builder
	b.WriteString("Stack:\t")
	for i := 1; i <= m.SP; i++ {
		if i > 1 && boundaries[i] {
			b.WriteString("| ")
		}
		fmt.Fprintf(&b, "%d ", m.Data[i])
	}
	b.WriteString("\n")
	return b.String()
}
