package trace

import (
	"sort"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/lookup"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// GlobalMemoryTable holds the initialize (first shard) or finalize (last
// shard) events, ordered strictly increasing by address so the 32-bit
// binary decomposition constraint (spec.md §4.3.3) has something to bind
// to. Shared addresses between init and finalize are matched by the
// Global lookup bus's multiset balance, not by row order.
type GlobalMemoryTable struct {
	field  *core.Field
	events []event.MemoryInitializeFinalizeEvent
	rows   []Row
}

// NewGlobalMemoryTable sorts events by address and builds one row each.
func NewGlobalMemoryTable(field *core.Field, events []event.MemoryInitializeFinalizeEvent) *GlobalMemoryTable {
	sorted := append([]event.MemoryInitializeFinalizeEvent(nil), events...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })

	t := &GlobalMemoryTable{field: field, events: sorted}
	for _, ev := range sorted {
		t.rows = append(t.rows, Row{
			"is_real":       field.One(),
			"addr":          field.NewElementFromUint64(uint64(ev.Addr)),
			"value":         field.NewElementFromUint64(uint64(ev.Value)),
			"is_initialize": boolElem(field, ev.IsInitialize),
		})
	}
	return t
}

// Messages returns the Global Memory interactions this table sends (for
// initialize rows) or receives (for finalize rows).
func (t *GlobalMemoryTable) Messages() []lookup.Message {
	msgs := make([]lookup.Message, 0, len(t.events))
	for _, ev := range t.events {
		msgs = append(msgs, lookup.Message{
			Kind:         lookup.KindMemory,
			Scope:        lookup.ScopeGlobal,
			Payload:      []uint32{ev.Addr, ev.Shard, uint32(ev.Clk), ev.Value, 0, 0, 0},
			Multiplicity: 1,
			IsSend:       ev.IsInitialize,
		})
	}
	return msgs
}

func (t *GlobalMemoryTable) GetID() TableID       { return TableMemoryGlobal }
func (t *GlobalMemoryTable) GetHeight() int       { return len(t.rows) }
func (t *GlobalMemoryTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *GlobalMemoryTable) Rows() []Row          { return t.rows }

func (t *GlobalMemoryTable) Pad(paddedHeight int) {
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":       t.field.Zero(),
			"addr":          t.field.Zero(),
			"value":         t.field.Zero(),
			"is_initialize": t.field.Zero(),
		})
	}
}

// CreateConsistencyConstraints enforces address uniqueness via strict
// address ordering across adjacent real rows (spec.md §4.3.3).
func (t *GlobalMemoryTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "transition", Index: 0, Degree: 2}}
}
func (t *GlobalMemoryTable) CreateInitialConstraints() []protocols.AIRConstraint   { return nil }
func (t *GlobalMemoryTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *GlobalMemoryTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }

// LocalMemoryTable holds one row per address touched within a shard,
// carrying both its initial and final access; both project onto the
// Global channel via the lookup.GlobalDigest (spec.md §4.3.3).
type LocalMemoryTable struct {
	field  *core.Field
	events []event.MemoryLocalEvent
	rows   []Row
}

func NewLocalMemoryTable(field *core.Field, events []event.MemoryLocalEvent) *LocalMemoryTable {
	t := &LocalMemoryTable{field: field, events: events}
	for _, ev := range events {
		t.rows = append(t.rows, Row{
			"is_real":       field.One(),
			"addr":          field.NewElementFromUint64(uint64(ev.Addr)),
			"initial_clk":   field.NewElementFromUint64(ev.InitialClk),
			"initial_value": field.NewElementFromUint64(uint64(ev.InitialValue)),
			"final_clk":     field.NewElementFromUint64(ev.FinalClk),
			"final_value":   field.NewElementFromUint64(uint64(ev.FinalValue)),
		})
	}
	return t
}

// Messages returns one receive (for the address's initial access) and one
// send (for its final access) projected onto the Global Memory channel.
func (t *LocalMemoryTable) Messages() []lookup.Message {
	msgs := make([]lookup.Message, 0, len(t.events)*2)
	for _, ev := range t.events {
		msgs = append(msgs,
			lookup.Message{
				Kind: lookup.KindMemory, Scope: lookup.ScopeGlobal,
				Payload:      []uint32{ev.Addr, ev.Shard, uint32(ev.InitialClk), ev.InitialValue, 0, 0, 0},
				Multiplicity: 1, IsSend: false,
			},
			lookup.Message{
				Kind: lookup.KindMemory, Scope: lookup.ScopeGlobal,
				Payload:      []uint32{ev.Addr, ev.Shard, uint32(ev.FinalClk), ev.FinalValue, 0, 0, 0},
				Multiplicity: 1, IsSend: true,
			},
		)
	}
	return msgs
}

func (t *LocalMemoryTable) GetID() TableID       { return TableMemoryLocal }
func (t *LocalMemoryTable) GetHeight() int       { return len(t.rows) }
func (t *LocalMemoryTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *LocalMemoryTable) Rows() []Row          { return t.rows }

func (t *LocalMemoryTable) Pad(paddedHeight int) {
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":       t.field.Zero(),
			"addr":          t.field.Zero(),
			"initial_clk":   t.field.Zero(),
			"initial_value": t.field.Zero(),
			"final_clk":     t.field.Zero(),
			"final_value":   t.field.Zero(),
		})
	}
}

func (t *LocalMemoryTable) CreateInitialConstraints() []protocols.AIRConstraint    { return nil }
func (t *LocalMemoryTable) CreateConsistencyConstraints() []protocols.AIRConstraint { return nil }
func (t *LocalMemoryTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *LocalMemoryTable) CreateTerminalConstraints() []protocols.AIRConstraint   { return nil }
