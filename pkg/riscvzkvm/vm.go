package riscvzkvm

import (
	"errors"
	"math/big"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/executor"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/shard"
)

// VM is the public interface for the RV32IM zkVM.
type VM interface {
	// Execute runs a program on the VM and returns the sharded execution
	// trace.
	Execute(program *Program, input *Input) (*ExecutionTrace, error)

	// GetState returns the current VM state
	GetState() *VMState
}

// vmImpl is the internal implementation of VM
type vmImpl struct {
	field    *core.Field
	config   *VMConfig
	executor *executor.Executor
}

// NewVM creates a new RV32IM zkVM with the given configuration
func NewVM(config *VMConfig) (VM, error) {
	modulus := new(big.Int)
	if _, ok := modulus.SetString(config.FieldModulus, 10); !ok {
		return nil, &VMError{
			Code:    ErrInvalidConfig,
			Message: "invalid field modulus",
		}
	}

	field, err := core.NewField(modulus)
	if err != nil {
		return nil, &VMError{
			Code:    ErrFieldCreation,
			Message: "failed to create field: " + err.Error(),
		}
	}

	return &vmImpl{
		field:  field,
		config: config,
	}, nil
}

// Execute runs a program on the VM and returns the sharded execution trace.
func (v *vmImpl) Execute(program *Program, input *Input) (*ExecutionTrace, error) {
	internalProgram, err := executor.NewProgram(program.PCStart, program.Base, program.Words, program.Image)
	if err != nil {
		return nil, &VMError{
			Code:    ErrInvalidInput,
			Message: "failed to decode program: " + err.Error(),
			Cause:   err,
		}
	}

	ex := executor.New(internalProgram, executor.Options{
		ShardSize:              uint32(v.config.ShardSize),
		CycleCeiling:           uint64(v.config.CycleCeiling),
		KeepPartialTraceOnTrap: v.config.KeepPartialTraceOnTrap,
	})
	ex.RegisterBuiltins()
	ex.RegisterPrecompiles()
	if input != nil {
		ex.Hints = input.Hints
	}
	v.executor = ex

	runErr := ex.RunTo(uint64(v.config.CycleCeiling))
	if runErr != nil {
		if !(v.config.KeepPartialTraceOnTrap && isRecoverableTrap(runErr)) {
			return nil, &VMError{
				Code:    ErrVMExecution,
				Message: "execution trapped: " + runErr.Error(),
				Cause:   runErr,
			}
		}
	}

	shards := shard.Pack(shard.Log{
		CPUEvents:        ex.CPUEvents,
		AluEvents:        ex.AluEvents,
		SyscallEvents:    ex.SyscallEvents,
		PrecompileEvents: ex.PrecompileEvents,
		InitialImage:     internalProgram.Image,
		FinalSnapshot:    ex.Memory.Snapshot(),
	})

	return &ExecutionTrace{
		Shards:                 shards,
		Output:                 ex.Output,
		CycleCount:             ex.Clk,
		ExitCode:               ex.ExitCode,
		CommittedValuesDigest:  ex.CommittedValuesDigest,
	}, nil
}

// isRecoverableTrap reports whether KeepPartialTraceOnTrap should preserve
// the event log recorded so far instead of discarding the run, per
// spec.md §9's execute_only mode: a cycle-limit trap still yields a usable
// partial trace, but an invalid-instruction or invalid-memory trap means
// the log up to that point cannot be trusted as a well-formed prefix.
func isRecoverableTrap(err error) bool {
	return errors.Is(err, executor.ErrTrapCycleLimit)
}

// GetState returns the current VM state
func (v *vmImpl) GetState() *VMState {
	if v.executor == nil {
		return &VMState{}
	}
	return &VMState{
		PC:         v.executor.PC,
		Shard:      v.executor.Shard,
		CycleCount: v.executor.Clk,
		Halted:     v.executor.Halted,
		ExitCode:   v.executor.ExitCode,
		Registers:  v.executor.Regs,
	}
}

// DefaultVMConfig returns the default VM configuration, using the base
// field spec.md §1 fixes: p = 2^31 - 2^27 + 1.
func DefaultVMConfig() *VMConfig {
	return &VMConfig{
		FieldModulus: "2013265921",
		ShardSize:    1 << 20,
		CycleCeiling: 1 << 30,
	}
}
