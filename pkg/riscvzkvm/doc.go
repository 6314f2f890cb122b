// Package riscvzkvm provides a production-ready zkSTARK prover and verifier
// for RISC-V (RV32IM) program execution traces.
//
// riscv-zkvm executes RV32IM machine code instruction-by-instruction,
// partitions the resulting event log into fixed-size shards, and prepares
// each shard's CPU table as the committed trace of a STARK proof.
//
// # Features
//
// - Instruction-accurate RV32IM executor (base integer ISA + M extension)
// - Shardable event log with deterministic shard boundaries
// - Per-opcode trace tables (CPU, ALU, memory, syscall/precompile)
// - Local (per-shard permutation) and global (cross-shard digest) lookup bus
// - Poseidon hash function with Grain LFSR and Cauchy MDS
// - Field-friendly cryptographic primitives
//
// Only the CPU table enters the STARK proof; the other trace tables and the
// lookup bus are not part of proving or verification.
//
// # Using the executor
//
// Executing an RV32IM program shard-by-shard:
//
//	vmConfig := riscvzkvm.DefaultVMConfig()
//	vm, err := riscvzkvm.NewVM(vmConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// RV32IM instruction words laid out from Base, entered at PCStart
//	program := &riscvzkvm.Program{PCStart: 0, Base: 0, Words: words}
//
//	// Execute the program to completion, producing one trace per shard;
//	// hints are read back via HINT_LEN/HINT_READ
//	trace, err := vm.Execute(program, &riscvzkvm.Input{Hints: hints})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Preparing a shard for proving
//
// This package has no prover or verifier of its own. PrepareShardProof
// builds the claim and committed trace for one shard, which the STARK
// prover and verifier in internal/riscvzkvm/protocols consume (see
// cmd/rv32im-prove):
//
//	field, err := riscvzkvm.NewField(vmConfig.FieldModulus)
//	if err != nil {
//		log.Fatal(err)
//	}
//	shardProof, err := riscvzkvm.PrepareShardProof(field, program, trace, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	// shardProof.Claim and shardProof.Trace go to protocols.Prover.Prove
//
// # Architecture
//
// riscv-zkvm uses a hybrid public/private architecture:
//
// - pkg/riscvzkvm/: Public API (this package)
// - internal/riscvzkvm/: Private implementation (not importable)
//
// The public API provides stable interfaces for:
// - preparing a shard's claim and committed trace for the STARK backend
// - RV32IM execution
// - Common types and errors
//
// Implementation details in internal/ can be refactored without breaking the public API.
//
// # Implementation Features
//
// riscv-zkvm provides a comprehensive Poseidon implementation with:
// - Dynamic Grain LFSR parameter generation (no large precomputed constant files)
// - Runtime Cauchy MDS matrix construction with cryptographic guarantees
// - Full sponge construction for variable-length inputs/outputs
// - Multi-field support for various prime fields
// - Configurable security levels with automatic parameter optimization
//
// # References
//
// - STARK Paper: https://eprint.iacr.org/2018/046
// - FRI Paper: https://eccc.weizmann.ac.il/report/2017/134/
//
// # License
//
// See LICENSE file in the repository root.
package riscvzkvm
