// Package trace transforms shard-scoped event batches into the row vectors
// and interaction messages the STARK backend commits to. Each table
// implements ExecutionTable, the same contract the teacher's AET tables
// exposed to the protocols package (only protocols.AIRConstraint crosses
// the package boundary), so the downstream proving pipeline is unchanged.
package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// TableID identifies one trace table's opcode family.
type TableID int

const (
	TableCPU TableID = iota
	TableAddSub
	TableBitwise
	TableShift
	TableLT
	TableMul
	TableDivRem
	TableMemoryGlobal
	TableMemoryLocal
	TableSyscall
	TableProgram
	TablePrecompile
	TableSHA256Extend
	TableSHA256Compress
	TableKeccakPermute
	TablePoseidon2Permute
)

func (t TableID) String() string {
	switch t {
	case TableCPU:
		return "cpu"
	case TableAddSub:
		return "add_sub"
	case TableBitwise:
		return "bitwise"
	case TableShift:
		return "shift"
	case TableLT:
		return "lt"
	case TableMul:
		return "mul"
	case TableDivRem:
		return "divrem"
	case TableMemoryGlobal:
		return "memory_global"
	case TableMemoryLocal:
		return "memory_local"
	case TableSyscall:
		return "syscall"
	case TableProgram:
		return "program"
	case TablePrecompile:
		return "precompile"
	case TableSHA256Extend:
		return "sha256_extend"
	case TableSHA256Compress:
		return "sha256_compress"
	case TableKeccakPermute:
		return "keccak_permute"
	case TablePoseidon2Permute:
		return "poseidon2_permute"
	default:
		return "unknown"
	}
}

// Row is one table's column vector for a single event, expressed over the
// base field. Columns are addressed by name rather than a fixed-width
// array: every table has a different schema, and the teacher's own tables
// (processor_table.go, ram_table.go, ...) each hand-roll a distinct column
// struct rather than share one.
type Row map[string]*core.FieldElement

// ExecutionTable is the contract every trace table satisfies: report its
// shape, pad it to a power of two, and produce the four AIR constraint
// classes (initial, consistency, transition, terminal).
type ExecutionTable interface {
	GetID() TableID
	GetHeight() int
	GetPaddedHeight() int
	Rows() []Row
	Pad(paddedHeight int)

	CreateInitialConstraints() []protocols.AIRConstraint
	CreateConsistencyConstraints() []protocols.AIRConstraint
	CreateTransitionConstraints() []protocols.AIRConstraint
	CreateTerminalConstraints() []protocols.AIRConstraint
}

// NextPowerOfTwo rounds n up to the next power of two, matching the
// padding convention every ExecutionTable.Pad implementation relies on.
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
