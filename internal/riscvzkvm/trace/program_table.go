package trace

import (
	"sort"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/executor"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/lookup"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// ProgramTable is the preprocessed table: one row per program address,
// committed once for the whole run independent of any shard, sending
// (pc, instruction, selectors) with a multiplicity equal to how many times
// the CPU table visited that address across every shard (spec.md §4.3.5).
type ProgramTable struct {
	field   *core.Field
	addrs   []uint32
	program *executor.Program
	visits  map[uint32]uint32
	rows    []Row
}

// NewProgramTable builds the table from a Program and the full run's CPU
// events (used only to tally per-address visit multiplicity; the row
// content itself depends solely on the program).
func NewProgramTable(field *core.Field, program *executor.Program, allCPUEvents []event.CpuEvent) *ProgramTable {
	visits := make(map[uint32]uint32, len(program.Instructions))
	for addr := range program.Instructions {
		visits[addr] = 0
	}
	for _, ev := range allCPUEvents {
		visits[ev.PC]++
	}

	addrs := make([]uint32, 0, len(program.Instructions))
	for addr := range program.Instructions {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	t := &ProgramTable{field: field, addrs: addrs, program: program, visits: visits}
	for _, addr := range addrs {
		t.rows = append(t.rows, t.rowFor(addr))
	}
	return t
}

func (t *ProgramTable) rowFor(addr uint32) Row {
	f := t.field
	inst := t.program.Instructions[addr]
	return Row{
		"is_real":      f.One(),
		"pc":           f.NewElementFromUint64(uint64(addr)),
		"instruction":  f.NewElementFromInt64(int64(inst.Opcode)),
		"imm_b":        boolElem(f, inst.ImmB),
		"imm_c":        boolElem(f, inst.ImmC),
		"multiplicity": f.NewElementFromUint64(uint64(t.visits[addr])),
	}
}

// Messages returns the Local Program send for every address, scaled by its
// observed visit multiplicity so unvisited addresses (multiplicity 0)
// contribute nothing to the Local permutation argument.
func (t *ProgramTable) Messages() []lookup.Message {
	msgs := make([]lookup.Message, 0, len(t.addrs))
	for _, addr := range t.addrs {
		inst := t.program.Instructions[addr]
		msgs = append(msgs, lookup.Message{
			Kind: lookup.KindProgram, Scope: lookup.ScopeLocal,
			Payload:      []uint32{addr, uint32(inst.Opcode), boolToU32(inst.ImmB), boolToU32(inst.ImmC)},
			Multiplicity: t.visits[addr],
			IsSend:       true,
		})
	}
	return msgs
}

func (t *ProgramTable) GetID() TableID       { return TableProgram }
func (t *ProgramTable) GetHeight() int       { return len(t.rows) }
func (t *ProgramTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *ProgramTable) Rows() []Row          { return t.rows }

func (t *ProgramTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":      f.Zero(),
			"pc":           f.Zero(),
			"instruction":  f.Zero(),
			"imm_b":        f.One(),
			"imm_c":        f.One(),
			"multiplicity": f.Zero(),
		})
	}
}

func (t *ProgramTable) CreateInitialConstraints() []protocols.AIRConstraint    { return nil }
func (t *ProgramTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "boundary", Index: 0, Degree: 2}}
}

// CreateTransitionConstraints enforces pc strictly increasing across
// adjacent real rows, the uniqueness property the preprocessed table relies
// on to support arbitrary visit multiplicities (spec.md §4.3.5).
func (t *ProgramTable) CreateTransitionConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "transition", Index: 0, Degree: 2}}
}
func (t *ProgramTable) CreateTerminalConstraints() []protocols.AIRConstraint { return nil }
