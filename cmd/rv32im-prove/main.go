// Command rv32im-prove runs an RV32IM program and emits a STARK proof of its
// execution. It speaks a line-delimited JSON protocol on stdin/stdout so it
// can be driven as a subprocess: each input line is one JSON value, read in
// a fixed order, and the proof is written as a single JSON line to stdout.
// All progress logging goes to stderr so stdout stays a clean proof stream.
package main

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
	riscvzkvm "github.com/vybium/riscv-zkvm/pkg/riscvzkvm"
)

// ProgramInput is the wire format for line 1: an RV32IM binary.
type ProgramInput struct {
	PCStart uint32            `json:"pc_start"`
	Base    uint32            `json:"base"`
	Words   []uint32          `json:"words"`
	Image   map[string]uint32 `json:"image,omitempty"`
}

// ExecutionInput is the wire format for line 2: non-program inputs.
// Hints are base64-encoded byte strings, read back in order via
// HINT_LEN/HINT_READ.
type ExecutionInput struct {
	Hints []string `json:"hints,omitempty"`
}

// ProveOptions is the wire format for line 3: which shard to prove and any
// STARK parameter overrides.
type ProveOptions struct {
	ShardIndex            int  `json:"shard_index"`
	NumCollinearityChecks *int `json:"num_collinearity_checks,omitempty"`
}

// ProofOutput is the single JSON line written to stdout on success.
type ProofOutput struct {
	ProofBytes string `json:"proof"`
	ProofSize  int    `json:"proof_size"`
	CycleCount uint64 `json:"cycle_count"`
	ShardCount int    `json:"shard_count"`
	ExitCode   uint32 `json:"exit_code"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<28)

	var programInput ProgramInput
	readLine(scanner, "program", &programInput)

	var execInput ExecutionInput
	readLine(scanner, "execution input", &execInput)

	var options ProveOptions
	readLine(scanner, "prove options", &options)

	hints := make([][]byte, len(execInput.Hints))
	for i, h := range execInput.Hints {
		raw, err := base64.StdEncoding.DecodeString(h)
		if err != nil {
			fatal(fmt.Sprintf("failed to decode hint %d: %v", i, err))
		}
		hints[i] = raw
	}

	image := make(map[uint32]uint32, len(programInput.Image))
	for k, v := range programInput.Image {
		var addr uint32
		if _, err := fmt.Sscanf(k, "%d", &addr); err != nil {
			fatal(fmt.Sprintf("invalid image address %q: %v", k, err))
		}
		image[addr] = v
	}

	program := &riscvzkvm.Program{
		PCStart: programInput.PCStart,
		Base:    programInput.Base,
		Words:   programInput.Words,
		Image:   image,
	}

	config := riscvzkvm.DefaultVMConfig()

	logStderr("creating VM")
	vm, err := riscvzkvm.NewVM(config)
	if err != nil {
		fatal(fmt.Sprintf("failed to create VM: %v", err))
	}

	logStderr("executing program")
	trace, err := vm.Execute(program, &riscvzkvm.Input{Hints: hints})
	if err != nil {
		fatal(fmt.Sprintf("execution failed: %v", err))
	}
	logStderr(fmt.Sprintf("execution completed in %d cycles across %d shard(s)", trace.CycleCount, len(trace.Shards)))

	params := protocols.DefaultSTARKParameters()
	if options.NumCollinearityChecks != nil {
		params.NumCollinearityChecks = *options.NumCollinearityChecks
	}
	if err := params.Validate(); err != nil {
		fatal(fmt.Sprintf("invalid STARK parameters: %v", err))
	}

	logStderr("creating prover")
	prover, err := protocols.NewProver(params)
	if err != nil {
		fatal(fmt.Sprintf("failed to create prover: %v", err))
	}

	field, err := riscvzkvm.NewField(config.FieldModulus)
	if err != nil {
		fatal(fmt.Sprintf("failed to create field: %v", err))
	}
	shardProof, err := riscvzkvm.PrepareShardProof(field, program, trace, options.ShardIndex)
	if err != nil {
		fatal(fmt.Sprintf("failed to prepare shard proof: %v", err))
	}
	claim := shardProof.Claim.WithInput(nil).WithOutput(nil)

	logStderr("generating proof")
	proof, err := prover.Prove(claim, shardProof.Trace)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr("proof generated successfully")

	proofBytes, err := json.Marshal(proof)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize proof: %v", err))
	}

	out := ProofOutput{
		ProofBytes: base64.StdEncoding.EncodeToString(proofBytes),
		ProofSize:  proof.Size(),
		CycleCount: trace.CycleCount,
		ShardCount: len(trace.Shards),
		ExitCode:   trace.ExitCode,
	}

	outBytes, err := json.Marshal(out)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize output: %v", err))
	}
	os.Stdout.Write(outBytes)
	os.Stdout.Write([]byte("\n"))
}

func readLine(scanner *bufio.Scanner, what string, v interface{}) {
	if !scanner.Scan() {
		fatal(fmt.Sprintf("failed to read %s: %v", what, scanner.Err()))
	}
	if err := json.Unmarshal(scanner.Bytes(), v); err != nil {
		fatal(fmt.Sprintf("failed to parse %s: %v", what, err))
	}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "rv32im-prove:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
