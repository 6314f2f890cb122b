package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// Poseidon2PermuteTable commits one row per invocation: the width-3 input
// state and the width-3 output state after running the teacher's
// EnhancedPoseidonHash permutation (core/poseidon_enhanced.go), replayed
// here from the same payload the executor recorded so the table and the
// executor's handler (executor/syscalls_precompiles.go) can be checked
// against each other rather than one trusting the other's output.
type Poseidon2PermuteTable struct {
	field    *core.Field
	poseidon *core.EnhancedPoseidonHash
	events   []event.PrecompileEvent
	rows     []Row
}

func NewPoseidon2PermuteTable(field *core.Field, poseidon *core.EnhancedPoseidonHash, events []event.PrecompileEvent) *Poseidon2PermuteTable {
	t := &Poseidon2PermuteTable{field: field, poseidon: poseidon}
	for _, ev := range events {
		if len(ev.Payload) != 3 {
			continue
		}
		t.events = append(t.events, ev)
		t.rows = append(t.rows, t.rowFor(ev))
	}
	return t
}

func (t *Poseidon2PermuteTable) rowFor(ev event.PrecompileEvent) Row {
	f := t.field
	in := make([]*core.FieldElement, len(ev.Payload))
	for i, v := range ev.Payload {
		in[i] = f.NewElementFromUint64(uint64(v))
	}
	out := t.poseidon.Permute(in)
	return Row{
		"is_real": f.One(),
		"in0":     in[0],
		"in1":     in[1],
		"in2":     in[2],
		"out0":    out[0],
		"out1":    out[1],
		"out2":    out[2],
	}
}

func (t *Poseidon2PermuteTable) GetID() TableID       { return TablePoseidon2Permute }
func (t *Poseidon2PermuteTable) GetHeight() int       { return len(t.rows) }
func (t *Poseidon2PermuteTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *Poseidon2PermuteTable) Rows() []Row          { return t.rows }

func (t *Poseidon2PermuteTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real": f.Zero(),
			"in0": f.Zero(), "in1": f.Zero(), "in2": f.Zero(),
			"out0": f.Zero(), "out1": f.Zero(), "out2": f.Zero(),
		})
	}
}

func (t *Poseidon2PermuteTable) CreateInitialConstraints() []protocols.AIRConstraint { return nil }

func (t *Poseidon2PermuteTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "boundary", Index: 0, Degree: 2}}
}

func (t *Poseidon2PermuteTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *Poseidon2PermuteTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }
