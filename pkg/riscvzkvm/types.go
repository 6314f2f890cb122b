package riscvzkvm

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/shard"
)

// FieldElement represents an element in a finite field.
// This is the public type for field elements used throughout riscv-zkvm.
type FieldElement = core.FieldElement

// Field represents a finite field
type Field = core.Field

// Proof represents a zkSTARK proof
type Proof = protocols.Proof

// Claim represents public information about a computation
type Claim = protocols.Claim

// Program is an RV32IM binary: a flat instruction word stream laid out
// starting at Base, the address execution begins at (PCStart), and the
// initial data-memory contents.
type Program struct {
	// PCStart is the address of the first instruction executed.
	PCStart uint32

	// Base is the address the first word in Words is laid out at.
	Base uint32

	// Words is the RV32IM instruction stream, one 32-bit word per entry.
	Words []uint32

	// Image is the initial data memory contents, sparse by address.
	Image map[uint32]uint32
}

// Input is the data supplied to one execution beyond the program itself:
// the hint stream read back via HINT_LEN/HINT_READ.
type Input struct {
	Hints [][]byte
}

// Config represents configuration for the STARK prover/verifier
type Config struct {
	// Field modulus for finite field arithmetic
	FieldModulus string

	// Security level in bits (128 or 256)
	SecurityLevel int

	// Trace length (must be power of 2)
	TraceLength int

	// Evaluation domain size
	EvaluationDomain int

	// Number of FRI queries for soundness
	FRIQueries int

	// Blowup factor for low-degree extension
	BlowupFactor int
}

// VMConfig represents configuration for the RV32IM executor.
type VMConfig struct {
	// Field modulus for finite field arithmetic
	FieldModulus string

	// ShardSize is the maximum number of CPU cycles recorded per shard.
	ShardSize int

	// CycleCeiling is the hard upper bound on total cycles before an
	// execution is aborted as non-terminating.
	CycleCeiling int

	// KeepPartialTraceOnTrap preserves the event log recorded up to a
	// cycle-limit trap instead of discarding it, per spec.md §9's
	// "execute_only" mode. Other traps still make VM.Execute return an error.
	KeepPartialTraceOnTrap bool
}

// VMState represents the current state of the VM (read-only)
type VMState struct {
	// Program counter
	PC uint32

	// Current shard index
	Shard uint32

	// Cycle count
	CycleCount uint64

	// Halted flag
	Halted bool

	// Exit code committed by the HALT syscall
	ExitCode uint32

	// Register file snapshot
	Registers [32]uint32
}

// ExecutionTrace represents the sharded execution trace of an RV32IM run.
type ExecutionTrace struct {
	// Shards is the packed, per-shard event log with derived public values.
	Shards []shard.Shard

	// Output holds the bytes written via the WRITE syscall, keyed by fd.
	Output map[uint32][]byte

	// CycleCount is the total number of CPU cycles executed.
	CycleCount uint64

	// ExitCode is the code committed by the terminating HALT syscall.
	ExitCode uint32

	// CommittedValuesDigest is the final public-values commitment.
	CommittedValuesDigest [8]uint32
}

// ProofVerificationResult represents the result of proof verification
type ProofVerificationResult struct {
	// Whether the proof is valid
	Valid bool

	// Error message if verification failed
	Error string

	// Verification time in milliseconds
	VerificationTimeMs int64
}
