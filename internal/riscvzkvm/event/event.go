// Package event defines the strongly typed value objects the executor
// emits while interpreting a program. Trace tables consume batches of these
// events; nothing in this package performs arithmetic over the field — it
// is pure bookkeeping of what happened at each cycle.
package event

import "github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"

// MemoryRecord captures the previous and current (shard, clk, value) triple
// for one memory access, satisfying the lexicographic-ordering invariant
// between accesses to the same address.
type MemoryRecord struct {
	Addr       uint32
	PrevShard  uint32
	PrevClk    uint64
	PrevValue  uint32
	Shard      uint32
	Clk        uint64
	Value      uint32
	IsWrite    bool
}

// CpuEvent is the per-cycle record of one executed instruction: the decoded
// instruction, the operand values actually observed, and any memory/syscall
// side effect it produced.
type CpuEvent struct {
	Shard uint32
	Clk   uint64
	PC    uint32
	NextPC uint32

	Instr isa.Instruction

	OpAValue     uint32
	OpAPrevValue uint32 // value before this row's write, to distinguish read vs write
	OpBValue     uint32
	OpCValue     uint32

	OpA0 bool // true iff the destination register is x0

	IsMemory bool
	Memory   *MemoryRecord

	IsSyscall bool
	Syscall   *SyscallEvent

	IsHalt bool
}

// AluEvent is the per-operation record consumed by the add/sub, bitwise,
// shift, lt, mul, and divrem tables. A single CpuEvent of an ALU-class
// opcode produces exactly one AluEvent, routed to the table matching its
// isa.Class.
type AluEvent struct {
	Shard     uint32
	Clk       uint64
	Opcode    isa.Opcode
	A, B, C   uint32 // a = result, b and c = operands, per the spec's b = a*c + r convention for DivRem
	OpANot0   bool
}

// SyscallEvent is the deferred record of one ECALL dispatch: the syscall id
// read from t0 (x5), its two argument words, and the multiplicity with
// which it sends into the syscall table (controlled by the handler).
type SyscallEvent struct {
	Shard               uint32
	Clk                 uint64
	SyscallID           uint32
	Arg1, Arg2          uint32
	SendToTableMultiplicity uint32
}

// PrecompileEvent is an auxiliary record produced by a syscall handler that
// drives a precompile table (SHA, Keccak, curve ops, Poseidon2, ...). Each
// precompile defines its own Payload shape; the executor only threads the
// envelope (shard, clk, syscall id) through to the table dispatcher.
type PrecompileEvent struct {
	Shard     uint32
	Clk       uint64
	SyscallID uint32
	Payload   []uint32
}

// MemoryInitializeFinalizeEvent records the state of an address at the
// global initialize (first shard) or finalize (last shard) boundary.
type MemoryInitializeFinalizeEvent struct {
	Addr  uint32
	Value uint32
	Shard uint32
	Clk   uint64
	IsInitialize bool
}

// MemoryLocalEvent records, for one address touched within a single shard,
// the earliest and latest (clk, value) pair — the per-shard summary the
// shard packer emits and the local-memory trace table consumes.
type MemoryLocalEvent struct {
	Addr          uint32
	Shard         uint32
	InitialClk    uint64
	InitialValue  uint32
	FinalClk      uint64
	FinalValue    uint32
}
