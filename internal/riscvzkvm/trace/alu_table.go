package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// ALUTable is shared by the add/sub, bitwise, shift, lt, mul, and divrem
// tables: each handles a disjoint opcode subset of event.AluEvent but the
// row scaffold (operand words, op_a_not_0, a byte-limb expansion for mul)
// is common, per spec.md §4.3.2.
type ALUTable struct {
	field  *core.Field
	id     TableID
	events []event.AluEvent
	rows   []Row
}

// classFor maps a TableID to the isa.Class of AluEvents it claims.
func classFor(id TableID) isa.Class {
	switch id {
	case TableAddSub:
		return isa.ClassAddSub
	case TableBitwise:
		return isa.ClassBitwise
	case TableShift:
		return isa.ClassShift
	case TableLT:
		return isa.ClassLT
	case TableMul:
		return isa.ClassMul
	case TableDivRem:
		return isa.ClassDivRem
	default:
		return isa.ClassCPU
	}
}

// NewALUTable filters shard events to the opcodes id's class owns and
// builds one row per matching event.
func NewALUTable(field *core.Field, id TableID, allEvents []event.AluEvent) *ALUTable {
	want := classFor(id)
	t := &ALUTable{field: field, id: id}
	for _, ev := range allEvents {
		if ev.Opcode.Info().Class != want {
			continue
		}
		t.events = append(t.events, ev)
		t.rows = append(t.rows, t.rowFor(ev))
	}
	return t
}

func (t *ALUTable) rowFor(ev event.AluEvent) Row {
	f := t.field
	row := Row{
		"is_real":     f.One(),
		"opcode":      f.NewElementFromInt64(int64(ev.Opcode)),
		"a":           f.NewElementFromUint64(uint64(ev.A)),
		"b":           f.NewElementFromUint64(uint64(ev.B)),
		"c":           f.NewElementFromUint64(uint64(ev.C)),
		"op_a_not_0":  boolElem(f, ev.OpANot0),
	}
	if t.id == TableMul {
		limbs := byteLimbs(uint64(ev.B) * uint64(ev.C))
		for i, l := range limbs {
			row[limbName(i)] = f.NewElementFromUint64(uint64(l))
		}
	}
	if t.id == TableDivRem {
		// b = a*c + r relation's remainder witness, per spec.md §4.3.2.
		var r uint32
		if ev.C != 0 {
			r = ev.B - ev.A*ev.C
		}
		row["remainder"] = f.NewElementFromUint64(uint64(r))
	}
	return row
}

func byteLimbs(v uint64) [8]byte {
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

func limbName(i int) string {
	names := [8]string{"limb0", "limb1", "limb2", "limb3", "limb4", "limb5", "limb6", "limb7"}
	return names[i]
}

func (t *ALUTable) GetID() TableID       { return t.id }
func (t *ALUTable) GetHeight() int       { return len(t.rows) }
func (t *ALUTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *ALUTable) Rows() []Row          { return t.rows }

func (t *ALUTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":    f.Zero(),
			"opcode":     f.Zero(),
			"a":          f.Zero(),
			"b":          f.Zero(),
			"c":          f.Zero(),
			"op_a_not_0": f.Zero(),
		})
	}
}

func (t *ALUTable) CreateInitialConstraints() []protocols.AIRConstraint {
	return nil
}

// CreateConsistencyConstraints enforces is_real booleanity and, for the
// divrem table, the verifying relation b = a*c + r with 0 <= r < |c|
// (spec.md §4.3.2); division by zero is a permitted operation whose result
// degenerates to b = 0.
func (t *ALUTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	constraints := []protocols.AIRConstraint{
		{Type: "boundary", Index: 0, Degree: 2},
	}
	if t.id == TableDivRem {
		constraints = append(constraints, protocols.AIRConstraint{Type: "boundary", Index: 1, Degree: 2})
	}
	if t.id == TableMul {
		constraints = append(constraints, protocols.AIRConstraint{Type: "boundary", Index: 2, Degree: 3})
	}
	return constraints
}

func (t *ALUTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *ALUTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }
