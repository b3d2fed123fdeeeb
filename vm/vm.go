// Package vm implements the stack machine that executes the instruction
// stream compiler.Compile produces: a fetch-decode-execute loop over a
// fixed-height data stack, with activation records linked by static and
// dynamic links the way spec.md's component map describes C5.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pl0lang/pl0c/code"
)

// DataSize is one past the highest addressable data-stack slot: spec.md's
// 40-slot stack plus the unused index-0 sentinel slot.
const DataSize = 41

// NumRegisters is the width of the VM's register file.
const NumRegisters = 8

// DefaultMaxCycles bounds a run that never halts on its own (a
// compiler bug producing an unterminated loop, for instance).
const DefaultMaxCycles = 1_000_000

// State is the VM's coarse run state.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateError
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// StepObserver is notified after every successfully executed instruction,
// before the next fetch — used by the report package to build a "-v"
// execution trace without the VM itself knowing anything about report
// formatting.
type StepObserver func(vm *VM, addr int, ins code.Instruction)

// VM is one instance of the stack machine. It holds no package-level
// state, so multiple VMs can run independently.
type VM struct {
	PC, BP, SP int
	Data       [DataSize]int
	R          [NumRegisters]int

	State     State
	Cycles    uint64
	MaxCycles uint64
	LastError error

	stream *code.Stream
	output io.Writer
	input  *bufio.Reader

	OnStep StepObserver
}

// New returns a VM ready to execute stream, with bp=1 and sp=0 per
// spec.md §4.5's initial state. output defaults to os.Stdout and input
// to os.Stdin when nil.
func New(stream *code.Stream, output io.Writer, input io.Reader) *VM {
	if output == nil {
		output = os.Stdout
	}
	if input == nil {
		input = os.Stdin
	}
	return &VM{
		BP:        1,
		SP:        0,
		MaxCycles: DefaultMaxCycles,
		stream:    stream,
		output:    output,
		input:     bufio.NewReader(input),
	}
}

// base walks l static links starting from bp, per spec.md §4.5 and §8's
// inductive definition: base(0,bp)=bp, base(k+1,bp)=base(k,data[bp+1]).
func (v *VM) base(l int) int {
	b := v.BP
	for ; l > 0; l-- {
		b = v.Data[b+1]
	}
	return b
}

func (v *VM) push(val int) error {
	v.SP++
	if v.SP >= DataSize {
		v.SP--
		return fmt.Errorf("data stack overflow at pc=%d (height limit %d)", v.PC, DataSize-1)
	}
	v.Data[v.SP] = val
	v.R[0] = val
	return nil
}

func (v *VM) pop() (int, error) {
	if v.SP < 1 {
		return 0, fmt.Errorf("data stack underflow at pc=%d", v.PC)
	}
	val := v.Data[v.SP]
	v.SP--
	return val, nil
}

// Run executes instructions until the VM halts, hits a fatal error, or
// exhausts MaxCycles.
func (v *VM) Run() error {
	v.State = StateRunning
	for v.State == StateRunning {
		if err := v.Step(); err != nil {
			return err
		}
	}
	if v.State == StateError {
		return v.LastError
	}
	return nil
}

// Step executes exactly one instruction.
func (v *VM) Step() error {
	if v.State != StateRunning {
		return fmt.Errorf("vm is not running (state=%s)", v.State)
	}
	if v.Cycles >= v.MaxCycles {
		v.fail(fmt.Errorf("cycle limit exceeded (%d cycles)", v.MaxCycles))
		return v.LastError
	}
	if v.PC < 0 || v.PC >= v.stream.Len() {
		v.fail(fmt.Errorf("program counter %d out of range [0,%d)", v.PC, v.stream.Len()))
		return v.LastError
	}

	addr := v.PC
	ins := v.stream.At(addr)
	v.PC++

	if err := v.execute(ins); err != nil {
		v.fail(err)
		return err
	}
	v.Cycles++

	if v.OnStep != nil {
		v.OnStep(v, addr, ins)
	}
	return nil
}

func (v *VM) fail(err error) {
	v.State = StateError
	v.LastError = err
}

func (v *VM) execute(ins code.Instruction) error {
	switch ins.Op {
	case code.LIT:
		return v.push(ins.M)

	case code.OPR:
		return v.executeOPR(ins.M)

	case code.LOD:
		addr := v.base(ins.L) + ins.M
		if addr < 0 || addr >= DataSize {
			return fmt.Errorf("LOD address %d out of range", addr)
		}
		return v.push(v.Data[addr])

	case code.STO:
		val, err := v.pop()
		if err != nil {
			return err
		}
		addr := v.base(ins.L) + ins.M
		if addr < 0 || addr >= DataSize {
			return fmt.Errorf("STO address %d out of range", addr)
		}
		v.Data[addr] = val
		v.R[ins.R] = val
		return nil

	case code.CAL:
		base := v.SP
		if base+4 >= DataSize {
			return fmt.Errorf("data stack overflow calling procedure at pc=%d", v.PC-1)
		}
		v.Data[base+1] = 0
		v.Data[base+2] = v.base(ins.L)
		v.Data[base+3] = v.BP
		v.Data[base+4] = v.PC
		v.BP = base + 1
		v.PC = ins.M
		return nil

	case code.INC:
		v.SP += ins.M
		if v.SP >= DataSize {
			return fmt.Errorf("data stack overflow incrementing sp to %d", v.SP)
		}
		return nil

	case code.JMP:
		v.PC = ins.M
		return nil

	case code.JPC:
		cond, err := v.pop()
		if err != nil {
			return err
		}
		if cond == 0 {
			v.PC = ins.M
		}
		return nil

	case code.SIOWrite:
		val, err := v.pop()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(v.output, "%d\n", val)
		return err

	case code.SIORead:
		var val int
		if _, err := fmt.Fscan(v.input, &val); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		return v.push(val)

	case code.SIOHalt:
		v.State = StateHalted
		return nil

	default:
		return fmt.Errorf("invalid opcode %v at pc=%d", ins.Op, v.PC-1)
	}
}

// executeOPR dispatches one OPR subcode. Binary subcodes pop their two
// operands off the implicit expression stack above sp (right operand on
// top), the way the classic Wirth machine evaluates expressions; R[0] is
// left mirroring the most recently pushed or produced value, matching
// spec.md's "R[r] <- ..." phrasing for a redesign that still calls these
// slots registers.
func (v *VM) executeOPR(subcode int) error {
	switch code.Op(subcode) {
	case code.OPRRet:
		if v.BP < 1 {
			return fmt.Errorf("return with no active frame")
		}
		v.SP = v.BP - 1
		v.BP = v.Data[v.SP+3]
		v.PC = v.Data[v.SP+4]
		return nil

	case code.OPRNeg:
		a, err := v.pop()
		if err != nil {
			return err
		}
		return v.push(-a)

	case code.OPROdd:
		a, err := v.pop()
		if err != nil {
			return err
		}
		return v.push(a % 2)

	case code.OPRAdd, code.OPRSub, code.OPRMul, code.OPRDiv, code.OPRMod,
		code.OPREql, code.OPRNeq, code.OPRLss, code.OPRLeq, code.OPRGtr, code.OPRGeq:
		b, err := v.pop()
		if err != nil {
			return err
		}
		a, err := v.pop()
		if err != nil {
			return err
		}
		return v.push(binaryOp(code.Op(subcode), a, b))

	default:
		return fmt.Errorf("invalid OPR subcode %d at pc=%d", subcode, v.PC-1)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func binaryOp(subcode code.Op, a, b int) int {
	switch subcode {
	case code.OPRAdd:
		return a + b
	case code.OPRSub:
		return a - b
	case code.OPRMul:
		return a * b
	case code.OPRDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case code.OPRMod:
		if b == 0 {
			return 0
		}
		return a % b
	case code.OPREql:
		return boolInt(a == b)
	case code.OPRNeq:
		return boolInt(a != b)
	case code.OPRLss:
		return boolInt(a < b)
	case code.OPRLeq:
		return boolInt(a <= b)
	case code.OPRGtr:
		// The reference's flattened VM copy-pastes the LEQ comparison into
		// this case; spec.md's design notes call it out and ask for the
		// intended strict greater-than instead.
		return boolInt(a > b)
	case code.OPRGeq:
		return boolInt(a >= b)
	default:
		return 0
	}
}
