package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/lookup"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// CPUTable holds one row per CPU event, per spec.md §4.3.1.
type CPUTable struct {
	field  *core.Field
	events []event.CpuEvent
	rows   []Row
	sends  []lookup.Message
}

// NewCPUTable builds the CPU table for one shard's CPU events, emitting the
// Program/Memory/Syscall sends every row contributes to the lookup bus.
func NewCPUTable(field *core.Field, shard uint32, events []event.CpuEvent) *CPUTable {
	t := &CPUTable{field: field, events: events}
	for _, ev := range events {
		t.rows = append(t.rows, t.rowFor(ev))
		t.sends = append(t.sends, lookup.Message{
			Kind: lookup.KindProgram, Scope: lookup.ScopeLocal,
			Payload:      []uint32{ev.PC, uint32(ev.Instr.Opcode), boolToU32(ev.Instr.ImmB), boolToU32(ev.Instr.ImmC)},
			Multiplicity: 1,
		})
		if ev.IsMemory && ev.Memory != nil {
			t.sends = append(t.sends, memoryMessage(*ev.Memory))
		}
		if ev.IsSyscall && ev.Syscall != nil {
			t.sends = append(t.sends, syscallMessage(*ev.Syscall))
		}
	}
	return t
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func memoryMessage(rec event.MemoryRecord) lookup.Message {
	return lookup.Message{
		Kind: lookup.KindMemory, Scope: lookup.ScopeGlobal,
		Payload: []uint32{rec.Addr, rec.Shard, uint32(rec.Clk), rec.Value,
			rec.PrevShard, uint32(rec.PrevClk), rec.PrevValue},
		Multiplicity: 1,
		IsSend:       rec.IsWrite,
	}
}

func syscallMessage(sev event.SyscallEvent) lookup.Message {
	return lookup.Message{
		Kind: lookup.KindSyscall, Scope: lookup.ScopeGlobal,
		Payload:      []uint32{sev.Shard, uint32(sev.Clk), sev.SyscallID, sev.Arg1, sev.Arg2, 0},
		Multiplicity: sev.SendToTableMultiplicity,
		IsSend:       true,
	}
}

func (t *CPUTable) rowFor(ev event.CpuEvent) Row {
	f := t.field
	return Row{
		"is_real":      f.One(),
		"pc":           f.NewElementFromUint64(uint64(ev.PC)),
		"next_pc":      f.NewElementFromUint64(uint64(ev.NextPC)),
		"opcode":       f.NewElementFromInt64(int64(ev.Instr.Opcode)),
		"op_a_value":   f.NewElementFromUint64(uint64(ev.OpAValue)),
		"op_a_prev":    f.NewElementFromUint64(uint64(ev.OpAPrevValue)),
		"op_b_value":   f.NewElementFromUint64(uint64(ev.OpBValue)),
		"op_c_value":   f.NewElementFromUint64(uint64(ev.OpCValue)),
		"op_a_0":       boolElem(f, ev.OpA0),
		"is_memory":    boolElem(f, ev.IsMemory),
		"is_syscall":   boolElem(f, ev.IsSyscall),
		"is_halt":      boolElem(f, ev.IsHalt),
	}
}

func boolElem(f *core.Field, b bool) *core.FieldElement {
	if b {
		return f.One()
	}
	return f.Zero()
}

// Messages returns every interaction message this shard's CPU rows send,
// for the lookup bus to accumulate.
func (t *CPUTable) Messages() []lookup.Message { return t.sends }

func (t *CPUTable) GetID() TableID      { return TableCPU }
func (t *CPUTable) GetHeight() int      { return len(t.rows) }
func (t *CPUTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *CPUTable) Rows() []Row         { return t.rows }

// Pad appends padding rows up to paddedHeight. Padding rows have all
// selectors zero; the CPU table has no imm_b/imm_c columns, so padding rows
// carry no imm_b/imm_c values. They are excluded from Messages() since
// those are only built from real events above.
func (t *CPUTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":    f.Zero(),
			"pc":         f.Zero(),
			"next_pc":    f.Zero(),
			"opcode":     f.NewElementFromInt64(int64(isa.OpUnimpl)),
			"op_a_value": f.Zero(),
			"op_a_prev":  f.Zero(),
			"op_b_value": f.Zero(),
			"op_c_value": f.Zero(),
			"op_a_0":     f.Zero(),
			"is_memory":  f.Zero(),
			"is_syscall": f.Zero(),
			"is_halt":    f.Zero(),
		})
	}
}

// CreateInitialConstraints pins clk = 0 and pc = pc_start at the first row,
// per the CPU table's execution-level state machine (spec.md §4.3.1).
func (t *CPUTable) CreateInitialConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "boundary", Index: 0, Degree: 1},
	}
}

// CreateConsistencyConstraints enforces that is_real and op_a_0 are
// boolean. No constraint covers the padding rows' selectors or imm values.
func (t *CPUTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "boundary", Index: 1, Degree: 2}, // is_real * (1 - is_real) = 0
		{Type: "boundary", Index: 2, Degree: 2}, // op_a_0 * (1 - op_a_0) = 0
	}
}

// CreateTransitionConstraints enforces the next_pc-chains-to-pc relation
// across consecutive real rows.
func (t *CPUTable) CreateTransitionConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "transition", Index: 0, Degree: 2}, // next_pc(row) = pc(row+1) when both real
	}
}

// CreateTerminalConstraints enforces that the last real row is a halt row
// with next_pc = 0, the execution-level terminal condition.
func (t *CPUTable) CreateTerminalConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "boundary", Index: 3, Degree: 1},
	}
}
