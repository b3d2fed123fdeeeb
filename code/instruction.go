// Package code defines the instruction stream that the compiler package
// emits and the vm package executes: an append-only (save for one-time
// jump backpatching) array of 4-tuple Instructions, pre-sized to
// MaxLength. Emit does not stop at MaxLength; Full reports when it is
// reached.
package code

import "fmt"

// Op is one of PL/0's opcodes. Op values follow spec.md §4.4's numbering
// for LIT/OPR/LOD/STO/CAL/INC/JMP/JPC/SIO, with OPR's arithmetic/relational
// subcodes kept in M of the single OPR op, where the reference VM instead
// flattens them into extra opcodes at execution time (spec.md §4.4
// permits either layout; we keep subcodes in
// M rather than minting 13 extra Op values, since M already exists to
// carry exactly this kind of operator-dependent payload).
type Op int

const (
	LIT Op = iota + 1 // R[r] <- m
	OPR               // operate on top of stack per subcode m (see OPR* consts)
	LOD               // R[r] <- data[base(l)+m]
	STO               // data[base(l)+m] <- R[r]
	CAL               // call procedure at m, lexical distance l
	INC               // sp <- sp + m
	JMP               // pc <- m
	JPC               // if R[r] == 0 then pc <- m
	SIOWrite          // output R[r] as decimal
	SIORead           // read an integer into R[r]
	SIOHalt           // halt the VM
)

// OPR subcodes, carried in an Instruction's M field when Op == OPR.
const (
	OPRRet Op = iota // return from procedure
	OPRNeg
	OPRAdd
	OPRSub
	OPRMul
	OPRDiv
	OPROdd
	OPRMod
	OPREql
	OPRNeq
	OPRLss
	OPRLeq
	OPRGtr
	OPRGeq
)

var opNames = map[Op]string{
	LIT: "LIT", OPR: "OPR", LOD: "LOD", STO: "STO", CAL: "CAL",
	INC: "INC", JMP: "JMP", JPC: "JPC",
	SIOWrite: "SIO", SIORead: "SIO", SIOHalt: "SIO",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

var oprNames = map[Op]string{
	OPRRet: "RTN", OPRNeg: "NEG", OPRAdd: "ADD", OPRSub: "SUB", OPRMul: "MUL",
	OPRDiv: "DIV", OPROdd: "ODD", OPRMod: "MOD", OPREql: "EQL", OPRNeq: "NEQ",
	OPRLss: "LSS", OPRLeq: "LEQ", OPRGtr: "GTR", OPRGeq: "GEQ",
}

// OprName returns the flattened assembly mnemonic for an OPR subcode, the
// way spec.md §4.4 says the "-a" report should render them.
func OprName(subcode int) string {
	if name, ok := oprNames[Op(subcode)]; ok {
		return name
	}
	return fmt.Sprintf("OPR%d", subcode)
}

// Instruction is the 4-tuple unit of the instruction stream.
type Instruction struct {
	Op Op
	R  int // which of the VM's 8 registers
	L  int // lexical level difference, for LOD/STO/CAL
	M  int // immediate: literal, address, or OPR subcode
}

func (ins Instruction) String() string {
	if ins.Op == OPR {
		return fmt.Sprintf("%s %d %d %d (%s)", ins.Op, ins.R, ins.L, ins.M, OprName(ins.M))
	}
	return fmt.Sprintf("%s %d %d %d", ins.Op, ins.R, ins.L, ins.M)
}

// MaxLength is the minimum instruction array capacity spec.md requires.
const MaxLength = 550

// Stream is the compiler's growing, append-only instruction array. The
// only in-place mutation it permits is Patch, used exactly once per
// forward jump to fill in a previously-unknown target.
type Stream struct {
	instructions []Instruction
}

// NewStream returns an empty instruction stream pre-sized to spec.md's
// minimum capacity.
func NewStream() *Stream {
	return &Stream{instructions: make([]Instruction, 0, MaxLength)}
}

// Emit appends an instruction and returns its index (the "here" address
// used for backpatching later jumps or calls that target it).
func (s *Stream) Emit(op Op, r, l, m int) int {
	s.instructions = append(s.instructions, Instruction{Op: op, R: r, L: l, M: m})
	return len(s.instructions) - 1
}

// Here returns the index the next Emit call will use.
func (s *Stream) Here() int {
	return len(s.instructions)
}

// Patch overwrites the M field of a previously emitted instruction —
// used once per forward JMP/JPC to fill in its now-known target.
func (s *Stream) Patch(index, m int) {
	s.instructions[index].M = m
}

// Len returns the number of instructions emitted so far.
func (s *Stream) Len() int {
	return len(s.instructions)
}

// At returns the instruction at index i.
func (s *Stream) At(i int) Instruction {
	return s.instructions[i]
}

// All returns the full instruction slice, in emission order.
func (s *Stream) All() []Instruction {
	return s.instructions
}

// Full reports whether the stream has reached spec.md's minimum capacity.
func (s *Stream) Full() bool {
	return len(s.instructions) >= MaxLength
}
