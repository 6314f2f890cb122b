package executor

import (
	"fmt"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
)

// RegisterBuiltins wires the non-precompile syscalls every program can rely
// on: WRITE, HALT, COMMIT, COMMIT_DEFERRED_PROOFS, HINT_LEN, HINT_READ. Per
// spec.md §6.2, each handler returns (clk_advance, send_to_table_multiplicity,
// next_pc_adjustment) conceptually; here that is expressed as mutations on
// ex plus the returned SyscallEvent's multiplicity field.
func (ex *Executor) RegisterBuiltins() {
	ex.RegisterSyscall(isa.SyscallWrite, handleWrite)
	ex.RegisterSyscall(isa.SyscallHalt, handleHalt)
	ex.RegisterSyscall(isa.SyscallCommit, handleCommit)
	ex.RegisterSyscall(isa.SyscallCommitDeferredProofs, handleCommitDeferredProofs)
	ex.RegisterSyscall(isa.SyscallHintLen, handleHintLen)
	ex.RegisterSyscall(isa.SyscallHintRead, handleHintRead)
}

func handleWrite(ex *Executor, shard uint32, clk uint64, fd, ptr uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	lenWord, _ := ex.Memory.ReadWord(ptr, shard, clk)
	buf := make([]byte, 0, lenWord)
	for i := uint32(0); i < lenWord; i += 4 {
		w, _ := ex.Memory.ReadWord(ptr+4+i, shard, clk)
		for b := 0; b < 4 && uint32(b)+i < lenWord; b++ {
			buf = append(buf, byte(w>>(8*uint(b))))
		}
	}
	ex.Output[fd] = append(ex.Output[fd], buf...)
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}

func handleHalt(ex *Executor, shard uint32, clk uint64, exitCode, _ uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	ex.Halted = true
	ex.ExitCode = exitCode
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}

func handleCommit(ex *Executor, shard uint32, clk uint64, idx, value uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	if idx >= 8 {
		return event.SyscallEvent{}, nil, fmt.Errorf("%w: COMMIT idx=%d out of range", ErrTrapEcall, idx)
	}
	ex.CommittedValuesDigest[idx] = value
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}

func handleCommitDeferredProofs(ex *Executor, shard uint32, clk uint64, idx, value uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	if idx >= 8 {
		return event.SyscallEvent{}, nil, fmt.Errorf("%w: COMMIT_DEFERRED_PROOFS idx=%d out of range", ErrTrapEcall, idx)
	}
	ex.DeferredProofsDigest[idx] = value
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}

func handleHintLen(ex *Executor, shard uint32, clk uint64, _, _ uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	if ex.hintPos >= len(ex.Hints) {
		ex.setReg(a0RegisterIndex, 0)
	} else {
		ex.setReg(a0RegisterIndex, uint32(len(ex.Hints[ex.hintPos])))
	}
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}

func handleHintRead(ex *Executor, shard uint32, clk uint64, ptr, _ uint32) (event.SyscallEvent, []event.PrecompileEvent, error) {
	if ex.hintPos >= len(ex.Hints) {
		return event.SyscallEvent{}, nil, fmt.Errorf("%w: hint stream underflow", ErrTrapEcall)
	}
	hint := ex.Hints[ex.hintPos]
	ex.hintPos++
	for i := 0; i < len(hint); i += 4 {
		var w uint32
		for b := 0; b < 4 && i+b < len(hint); b++ {
			w |= uint32(hint[i+b]) << (8 * uint(b))
		}
		ex.Memory.WriteWord(ptr+uint32(i), w, shard, clk)
	}
	return event.SyscallEvent{SendToTableMultiplicity: 1}, nil, nil
}
