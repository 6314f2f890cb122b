package riscvzkvm

import (
	"fmt"
	"math/big"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/executor"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/trace"
)

// NewField constructs the base field backing an ExecutionTrace's committed
// values, from the same decimal modulus string a VMConfig carries.
func NewField(modulus string) (*Field, error) {
	m := new(big.Int)
	if _, ok := m.SetString(modulus, 10); !ok {
		return nil, fmt.Errorf("invalid field modulus %q", modulus)
	}
	return core.NewField(m)
}

// ShardProof bundles what one shard needs to enter the STARK pipeline: the
// claim tying the proof to the program, and the committed trace a Prover
// consumes. See trace.ShardTrace's doc comment for why the committed trace
// covers only the CPU table.
type ShardProof struct {
	Claim *Claim
	Trace *trace.ShardTrace
}

// PrepareShardProof builds the ShardProof for shard index i of an
// ExecutionTrace produced by VM.Execute.
func PrepareShardProof(field *Field, program *Program, et *ExecutionTrace, shardIndex int) (*ShardProof, error) {
	if shardIndex < 0 || shardIndex >= len(et.Shards) {
		return nil, fmt.Errorf("shard index %d out of range (have %d shards)", shardIndex, len(et.Shards))
	}

	internalProgram, err := executor.NewProgram(program.PCStart, program.Base, program.Words, program.Image)
	if err != nil {
		return nil, fmt.Errorf("rebuilding program for digest: %w", err)
	}

	digest, err := trace.ProgramDigest(field, internalProgram)
	if err != nil {
		return nil, fmt.Errorf("computing program digest: %w", err)
	}

	sh := et.Shards[shardIndex]
	cpu := trace.NewCPUTable(field, sh.Index, sh.CPUEvents)

	return &ShardProof{
		Claim: protocols.NewClaim(digest),
		Trace: trace.NewShardTrace(cpu),
	}, nil
}
