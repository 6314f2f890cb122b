package integration_test

import (
	"math/big"
	"testing"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/rvasm"
	riscvzkvm "github.com/vybium/riscv-zkvm/pkg/riscvzkvm"
)

// Test01_BasicVMToProof tests the most basic flow:
// 1. Assemble a tiny RV32IM program
// 2. Execute and generate the sharded trace
// 3. Generate STARK proof
// 4. Verify proof
func Test01_BasicVMToProof(t *testing.T) {
	t.Log("=== Test 01: Basic VM Execution -> STARK Proof ===")

	const scratchAddr = 0x100
	const a, b = 10, 32

	// Step 1: Assemble a program that adds two numbers and writes the result
	t.Log("Step 1: Assembling VM program...")
	words := []uint32{
		rvasm.ADDI(rvasm.S0, rvasm.Zero, a),
		rvasm.ADDI(rvasm.S1, rvasm.Zero, b),
		rvasm.ADD(rvasm.S0, rvasm.S0, rvasm.S1),
	}
	words = append(words, rvasm.WriteWord(scratchAddr, rvasm.S0, 1)...)
	words = append(words, rvasm.Halt(0)...)

	t.Logf("  Program has %d instructions", len(words))

	config := riscvzkvm.DefaultVMConfig()
	vm, err := riscvzkvm.NewVM(config)
	if err != nil {
		t.Fatalf("Failed to create VM: %v", err)
	}
	program := &riscvzkvm.Program{PCStart: 0, Base: 0, Words: words}

	// Step 2: Execute VM and generate the sharded trace
	t.Log("Step 2: Executing VM and generating trace...")
	et, err := vm.Execute(program, nil)
	if err != nil {
		t.Fatalf("Failed to execute program: %v", err)
	}

	t.Logf("  Cycles executed: %d", et.CycleCount)
	t.Logf("  Shards generated: %d", len(et.Shards))
	if len(et.Shards) == 0 {
		t.Fatal("expected at least one shard")
	}

	result := decodeWordLE(et.Output[1])
	t.Logf("  Output word: %d", result)
	if result != a+b {
		t.Fatalf("expected result %d, got %d", a+b, result)
	}

	// Step 3: Create STARK prover
	t.Log("Step 3: Creating STARK prover...")
	params := protocols.DefaultSTARKParameters()

	if err := params.Validate(); err != nil {
		t.Fatalf("Invalid STARK parameters: %v", err)
	}

	prover, err := protocols.NewProver(params)
	if err != nil {
		t.Fatalf("Failed to create prover: %v", err)
	}
	t.Logf("  Prover created with security level %d", params.SecurityLevel)

	// Step 4: Create claim (what we're proving)
	t.Log("Step 4: Creating claim...")
	field, err := riscvzkvm.NewField(config.FieldModulus)
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}
	shardProof, err := riscvzkvm.PrepareShardProof(field, program, et, 0)
	if err != nil {
		t.Fatalf("Failed to prepare shard proof: %v", err)
	}
	claim := shardProof.Claim.WithInput(nil).WithOutput(nil)

	if err := claim.Validate(); err != nil {
		t.Fatalf("Invalid claim: %v", err)
	}
	t.Logf("  Claim created for program digest")

	// Step 5: Generate STARK proof
	t.Log("Step 5: Generating STARK proof...")
	t.Log("  This may take a moment...")

	proof, err := prover.Prove(claim, shardProof.Trace)
	if err != nil {
		t.Fatalf("Failed to generate proof: %v", err)
	}

	if proof == nil {
		t.Fatal("Proof is nil!")
	}

	t.Logf("  Proof generated successfully!")
	t.Logf("  Proof size: ~%d bytes", proof.Size())

	// Step 6: Create verifier and verify proof
	t.Log("Step 6: Verifying proof...")

	// Create field for verifier (Goldilocks prime: 2^64 - 2^32 + 1), the
	// backend field the PCS layer itself operates over.
	goldilocksPrime := new(big.Int)
	goldilocksPrime.SetString("18446744069414584321", 10)
	coreField, err := core.NewField(goldilocksPrime)
	if err != nil {
		t.Fatalf("Failed to create field: %v", err)
	}

	verifier, err := protocols.NewVerifier(coreField, params)
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}

	err = verifier.Verify(claim, proof)
	if err != nil {
		t.Fatalf("Proof verification failed: %v", err)
	}

	t.Log("  Proof verified successfully!")
	t.Log("")
	t.Log("SUCCESS: Complete flow works!")
	t.Log("   VM -> Sharded trace -> Proof -> Verification")
}

// decodeWordLE reads the first little-endian 32-bit word out of a WRITE
// syscall's output bytes.
func decodeWordLE(buf []byte) uint32 {
	var w uint32
	for i := 0; i < 4 && i < len(buf); i++ {
		w |= uint32(buf[i]) << (8 * uint(i))
	}
	return w
}
