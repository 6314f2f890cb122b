// Package executor interprets RV32IM programs one instruction at a time,
// emitting the typed event log trace tables consume. It mirrors the
// teacher's VMState.Run/Step/ExecuteInstruction dispatch shape: decode,
// dispatch on opcode, mutate state, record what happened.
package executor

import (
	"fmt"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
)

// SyscallHandler binds one syscall id to executor-visible behavior. It
// receives the current shard/clk and the two argument words (read by the
// executor from a0/a1 before dispatch), and returns the deferred
// SyscallEvent plus any PrecompileEvents the handler's trace table needs.
type SyscallHandler func(ex *Executor, shard uint32, clk uint64, arg1, arg2 uint32) (event.SyscallEvent, []event.PrecompileEvent, error)

// Options configures one Executor run.
type Options struct {
	ShardSize              uint32
	CycleCeiling           uint64
	KeepPartialTraceOnTrap bool
}

// Executor owns the register file, memory, program counter, clock, shard
// counter, and the event log for one execution. It is single-threaded and
// synchronous: Step is an atomic transition from one state to the next.
type Executor struct {
	Program *Program
	Memory  *Memory

	Regs [32]uint32
	PC   uint32
	Clk  uint64
	Shard uint32

	Opts Options

	CPUEvents        []event.CpuEvent
	AluEvents        []event.AluEvent
	SyscallEvents    []event.SyscallEvent
	PrecompileEvents []event.PrecompileEvent

	CommittedValuesDigest  [8]uint32
	DeferredProofsDigest   [8]uint32
	ExitCode               uint32
	Halted                 bool

	Output map[uint32][]byte
	Hints  [][]byte

	shardCPUCount uint32
	totalCycles   uint64
	hintPos       int

	syscalls map[uint32]SyscallHandler
}

// New creates an Executor ready to run program from its entry point.
func New(program *Program, opts Options) *Executor {
	if opts.ShardSize == 0 {
		opts.ShardSize = 1 << 20
	}
	if opts.CycleCeiling == 0 {
		opts.CycleCeiling = 1 << 30
	}
	return &Executor{
		Program:  program,
		Memory:   NewMemory(program.Image),
		PC:       program.PCStart,
		Opts:     opts,
		Output:   make(map[uint32][]byte),
		syscalls: make(map[uint32]SyscallHandler),
	}
}

// RegisterSyscall binds a handler for one syscall id, per the spec's
// mapping from syscall_id to a trait-object-style handler registered at
// executor construction.
func (ex *Executor) RegisterSyscall(id isa.SyscallCode, h SyscallHandler) {
	ex.syscalls[uint32(id)] = h
}

func (ex *Executor) reg(i uint8) uint32 {
	if i == 0 {
		return 0
	}
	return ex.Regs[i]
}

// setReg writes v to register i unless i is x0, in which case the write is
// a no-op on value but the caller must still record op_a_0 = true.
func (ex *Executor) setReg(i uint8, v uint32) (opA0 bool) {
	if i == 0 {
		return true
	}
	ex.Regs[i] = v
	return false
}

func operandValue(ex *Executor, o isa.Operand, isImm bool) uint32 {
	if isImm {
		return o.Imm
	}
	return ex.reg(o.Reg)
}

// RunTo repeats Step until the cycle ceiling, a shard-closing HALT, or a
// trap. Returns nil only if the program halted cleanly.
func (ex *Executor) RunTo(cycleLimit uint64) error {
	for {
		if cycleLimit > 0 && ex.totalCycles >= cycleLimit {
			return ErrTrapCycleLimit
		}
		if err := ex.Step(); err != nil {
			return err
		}
		if ex.Halted {
			return nil
		}
	}
}

// Step decodes and executes the instruction at pc, advancing pc and clk and
// appending the resulting event(s) to the log.
func (ex *Executor) Step() error {
	if ex.Halted {
		return ErrTrapHalt
	}
	if ex.totalCycles >= ex.Opts.CycleCeiling {
		return ErrTrapCycleLimit
	}

	inst, ok := ex.Program.Fetch(ex.PC)
	if !ok || inst.Opcode == isa.OpUnimpl {
		return fmt.Errorf("%w: at pc=0x%08x", ErrTrapUnimpl, ex.PC)
	}

	shard, clk := ex.Shard, ex.Clk
	info := inst.Opcode.Info()

	ev := event.CpuEvent{Shard: shard, Clk: clk, PC: ex.PC, Instr: inst}
	nextPC := ex.PC + 4

	var stepErr error
	switch info.Class {
	case isa.ClassBranch:
		nextPC, stepErr = ex.execBranch(&ev, inst)
	case isa.ClassJump:
		nextPC, stepErr = ex.execJump(&ev, inst)
	case isa.ClassLoad:
		stepErr = ex.execLoad(&ev, inst, shard, clk)
	case isa.ClassStore:
		stepErr = ex.execStore(&ev, inst, shard, clk)
	case isa.ClassSyscall:
		nextPC, stepErr = ex.execSyscall(&ev, shard, clk)
	default:
		stepErr = ex.execALU(&ev, inst)
	}
	if stepErr != nil {
		return stepErr
	}

	ev.NextPC = nextPC
	ex.CPUEvents = append(ex.CPUEvents, ev)

	ex.PC = nextPC
	ex.Clk++
	ex.totalCycles++
	ex.shardCPUCount++
	if ex.shardCPUCount >= ex.Opts.ShardSize && !ex.Halted {
		ex.Shard++
		ex.shardCPUCount = 0
	}
	return nil
}

func (ex *Executor) execBranch(ev *event.CpuEvent, inst isa.Instruction) (uint32, error) {
	a := ex.reg(inst.OpA)
	b := operandValue(ex, inst.OpB, inst.ImmB)
	c := inst.OpC.Imm
	ev.OpAValue, ev.OpBValue, ev.OpCValue = a, b, c

	var taken bool
	switch inst.Opcode {
	case isa.OpBEQ:
		taken = a == b
	case isa.OpBNE:
		taken = a != b
	case isa.OpBLT:
		taken = int32(a) < int32(b)
	case isa.OpBGE:
		taken = int32(a) >= int32(b)
	case isa.OpBLTU:
		taken = a < b
	case isa.OpBGEU:
		taken = a >= b
	}
	if taken {
		return ex.PC + c, nil
	}
	return ex.PC + 4, nil
}

func (ex *Executor) execJump(ev *event.CpuEvent, inst isa.Instruction) (uint32, error) {
	link := ex.PC + 4
	ev.OpAPrevValue = ex.reg(inst.OpA)
	ev.OpA0 = ex.setReg(inst.OpA, link)
	ev.OpAValue = link

	switch inst.Opcode {
	case isa.OpJAL:
		b := inst.OpB.Imm
		ev.OpBValue = b
		return ex.PC + b, nil
	case isa.OpJALR:
		b := ex.reg(inst.OpB.Reg)
		c := inst.OpC.Imm
		ev.OpBValue, ev.OpCValue = b, c
		return (b + c) &^ uint32(1), nil
	}
	return ex.PC + 4, nil
}

func (ex *Executor) execLoad(ev *event.CpuEvent, inst isa.Instruction, shard uint32, clk uint64) error {
	base := ex.reg(inst.OpB.Reg)
	offset := inst.OpC.Imm
	addr := base + offset
	ev.OpBValue, ev.OpCValue = base, offset

	aligned := addr &^ 3
	word, rec := ex.Memory.ReadWord(aligned, shard, clk)
	ev.IsMemory = true
	ev.Memory = &rec

	byteOff := (addr & 3) * 8
	var val uint32
	switch inst.Opcode {
	case isa.OpLB:
		b := byte(word >> byteOff)
		val = uint32(int32(int8(b)))
	case isa.OpLH:
		if addr&1 != 0 {
			return fmt.Errorf("%w: unaligned halfword load at 0x%08x", ErrTrapInvalidMem, addr)
		}
		h := uint16(word >> byteOff)
		val = uint32(int32(int16(h)))
	case isa.OpLW:
		if addr&3 != 0 {
			return fmt.Errorf("%w: unaligned word load at 0x%08x", ErrTrapInvalidMem, addr)
		}
		val = word
	case isa.OpLBU:
		val = uint32(byte(word >> byteOff))
	case isa.OpLHU:
		if addr&1 != 0 {
			return fmt.Errorf("%w: unaligned halfword load at 0x%08x", ErrTrapInvalidMem, addr)
		}
		val = uint32(uint16(word >> byteOff))
	}

	ev.OpAPrevValue = ex.reg(inst.OpA)
	ev.OpA0 = ex.setReg(inst.OpA, val)
	ev.OpAValue = val
	return nil
}

func (ex *Executor) execStore(ev *event.CpuEvent, inst isa.Instruction, shard uint32, clk uint64) error {
	base := ex.reg(inst.OpA)
	src := ex.reg(inst.OpB.Reg)
	offset := inst.OpC.Imm
	addr := base + offset
	ev.OpAValue, ev.OpBValue, ev.OpCValue = base, src, offset
	ev.IsMemory = true

	var rec event.MemoryRecord
	switch inst.Opcode {
	case isa.OpSB:
		rec = ex.Memory.WriteSubword(addr, 1, src, shard, clk)
	case isa.OpSH:
		if addr&1 != 0 {
			return fmt.Errorf("%w: unaligned halfword store at 0x%08x", ErrTrapInvalidMem, addr)
		}
		rec = ex.Memory.WriteSubword(addr, 2, src, shard, clk)
	case isa.OpSW:
		if addr&3 != 0 {
			return fmt.Errorf("%w: unaligned word store at 0x%08x", ErrTrapInvalidMem, addr)
		}
		rec = ex.Memory.WriteWord(addr&^3, src, shard, clk)
	}
	ev.Memory = &rec
	return nil
}

// t0RegisterIndex is the register holding the syscall id at an ECALL, per
// the spec's "Reads syscall id from register t0 (x5)".
const t0RegisterIndex = 5
const a0RegisterIndex = 10
const a1RegisterIndex = 11

func (ex *Executor) execSyscall(ev *event.CpuEvent, shard uint32, clk uint64) (uint32, error) {
	id := ex.reg(t0RegisterIndex)
	arg1 := ex.reg(a0RegisterIndex)
	arg2 := ex.reg(a1RegisterIndex)
	ev.IsSyscall = true

	handler, ok := ex.syscalls[id]
	if !ok {
		return 0, fmt.Errorf("%w: syscall id=0x%08x at pc=0x%08x", ErrTrapEcall, id, ex.PC)
	}

	sev, precompiles, err := handler(ex, shard, clk, arg1, arg2)
	if err != nil {
		return 0, err
	}
	sev.Shard, sev.Clk, sev.SyscallID, sev.Arg1, sev.Arg2 = shard, clk, id, arg1, arg2
	ex.SyscallEvents = append(ex.SyscallEvents, sev)
	ex.PrecompileEvents = append(ex.PrecompileEvents, precompiles...)
	ev.Syscall = &sev

	if ex.Halted {
		ev.IsHalt = true
		return 0, nil
	}
	return ex.PC + 4, nil
}

func (ex *Executor) execALU(ev *event.CpuEvent, inst isa.Instruction) error {
	b := operandValue(ex, inst.OpB, inst.ImmB)
	c := operandValue(ex, inst.OpC, inst.ImmC)
	ev.OpBValue, ev.OpCValue = b, c

	var result uint32
	switch inst.Opcode {
	case isa.OpLUI:
		result = inst.OpC.Imm
	case isa.OpAUIPC:
		result = ex.PC + inst.OpC.Imm

	case isa.OpADDI, isa.OpADD:
		result = b + c
	case isa.OpSUB:
		result = b - c
	case isa.OpSLTI, isa.OpSLT:
		if int32(b) < int32(c) {
			result = 1
		}
	case isa.OpSLTIU, isa.OpSLTU:
		if b < c {
			result = 1
		}
	case isa.OpXORI, isa.OpXOR:
		result = b ^ c
	case isa.OpORI, isa.OpOR:
		result = b | c
	case isa.OpANDI, isa.OpAND:
		result = b & c
	case isa.OpSLLI, isa.OpSLL:
		result = b << (c & 0x1f)
	case isa.OpSRLI, isa.OpSRL:
		result = b >> (c & 0x1f)
	case isa.OpSRAI, isa.OpSRA:
		result = uint32(int32(b) >> (c & 0x1f))

	case isa.OpMUL:
		result = uint32(int32(b) * int32(c))
	case isa.OpMULH:
		result = uint32((int64(int32(b)) * int64(int32(c))) >> 32)
	case isa.OpMULHSU:
		result = uint32((int64(int32(b)) * int64(c)) >> 32)
	case isa.OpMULHU:
		result = uint32((uint64(b) * uint64(c)) >> 32)

	case isa.OpDIV:
		switch {
		case c == 0:
			result = 0xffffffff
		case int32(b) == -0x80000000 && int32(c) == -1:
			result = b
		default:
			result = uint32(int32(b) / int32(c))
		}
	case isa.OpDIVU:
		if c == 0 {
			result = 0xffffffff
		} else {
			result = b / c
		}
	case isa.OpREM:
		switch {
		case c == 0:
			result = b
		case int32(b) == -0x80000000 && int32(c) == -1:
			result = 0
		default:
			result = uint32(int32(b) % int32(c))
		}
	case isa.OpREMU:
		if c == 0 {
			result = b
		} else {
			result = b % c
		}
	default:
		return fmt.Errorf("%w: opcode %s", ErrTrapInvalidInst, inst.Opcode)
	}

	ev.OpAPrevValue = ex.reg(inst.OpA)
	ev.OpA0 = ex.setReg(inst.OpA, result)
	ev.OpAValue = result

	ex.AluEvents = append(ex.AluEvents, event.AluEvent{
		Shard:   ev.Shard,
		Clk:     ev.Clk,
		Opcode:  inst.Opcode,
		A:       result,
		B:       b,
		C:       c,
		OpANot0: !ev.OpA0,
	})
	return nil
}
