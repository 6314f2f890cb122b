package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/lookup"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// SyscallTable is the dispatch table every ECALL receives into: one row per
// SyscallEvent, matching the Global Syscall message the CPU table sent
// (spec.md §4.3.4). SHA256, Keccak and Poseidon2 have their own dedicated
// tables with real internal arithmetic (precompile_sha.go,
// precompile_keccak.go, precompile_poseidon.go); PrecompileTable below
// records only the dispatch envelope for the curve/field-heavy precompiles
// still out of scope, the way the teacher's hash_table.go stood in for the
// full Tip5 round function rather than expanding every round as separate
// columns.
type SyscallTable struct {
	field  *core.Field
	events []event.SyscallEvent
	rows   []Row
}

func NewSyscallTable(field *core.Field, events []event.SyscallEvent) *SyscallTable {
	t := &SyscallTable{field: field, events: events}
	for _, ev := range events {
		t.rows = append(t.rows, t.rowFor(ev))
	}
	return t
}

func (t *SyscallTable) rowFor(ev event.SyscallEvent) Row {
	f := t.field
	return Row{
		"is_real":      f.One(),
		"syscall_id":   f.NewElementFromUint64(uint64(ev.SyscallID)),
		"arg1":         f.NewElementFromUint64(uint64(ev.Arg1)),
		"arg2":         f.NewElementFromUint64(uint64(ev.Arg2)),
		"multiplicity": f.NewElementFromUint64(uint64(ev.SendToTableMultiplicity)),
		"is_precompile": boolElem(f, isa.SyscallCode(ev.SyscallID).IsPrecompile()),
	}
}

// Messages returns the Global Syscall receive that balances each CPU send.
func (t *SyscallTable) Messages() []lookup.Message {
	msgs := make([]lookup.Message, 0, len(t.events))
	for _, ev := range t.events {
		msgs = append(msgs, lookup.Message{
			Kind: lookup.KindSyscall, Scope: lookup.ScopeGlobal,
			Payload:      []uint32{ev.Shard, uint32(ev.Clk), ev.SyscallID, ev.Arg1, ev.Arg2, 0},
			Multiplicity: ev.SendToTableMultiplicity,
			IsSend:       false,
		})
	}
	return msgs
}

func (t *SyscallTable) GetID() TableID       { return TableSyscall }
func (t *SyscallTable) GetHeight() int       { return len(t.rows) }
func (t *SyscallTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *SyscallTable) Rows() []Row          { return t.rows }

func (t *SyscallTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":       f.Zero(),
			"syscall_id":    f.Zero(),
			"arg1":          f.Zero(),
			"arg2":          f.Zero(),
			"multiplicity":  f.Zero(),
			"is_precompile": f.Zero(),
		})
	}
}

func (t *SyscallTable) CreateInitialConstraints() []protocols.AIRConstraint    { return nil }
func (t *SyscallTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "boundary", Index: 0, Degree: 2}}
}
func (t *SyscallTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *SyscallTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }

// PrecompileTable holds one row per dispatch envelope (syscall id, payload
// digest) for the precompiles whose internal circuit stays out
// of scope: ED25519_ADD/DECOMPRESS, SECP256K1_ADD/DOUBLE/DECOMPRESS and
// UINT256_MUL need curve/field arithmetic the teacher provides no grounding
// for (SPEC_FULL §5.1's Open Question on pairing ops), so their circuit is
// supplied by an external prover component per spec.md §2, the same
// boundary the teacher draws around Tip5 in core/hash.go. The executor
// registers no handler for those ids (an ECALL naming one traps), so no
// PrecompileEvent for them is recorded and none reaches this table. SHA256_EXTEND,
// SHA256_COMPRESS, KECCAK256_PERMUTE and POSEIDON2_PERMUTE have their own
// dedicated tables below (precompile_sha.go, precompile_keccak.go,
// precompile_poseidon.go) and never reach this table.
type PrecompileTable struct {
	field  *core.Field
	events []event.PrecompileEvent
	rows   []Row
}

// NewPrecompileTable builds the envelope table from the subset of
// PrecompileEvents not already claimed by a dedicated table (isPrecompileEnvelopeEvent).
func NewPrecompileTable(field *core.Field, events []event.PrecompileEvent) *PrecompileTable {
	t := &PrecompileTable{field: field}
	for _, ev := range events {
		if !isPrecompileEnvelopeEvent(ev) {
			continue
		}
		t.events = append(t.events, ev)
		t.rows = append(t.rows, t.rowFor(ev))
	}
	return t
}

// isPrecompileEnvelopeEvent reports whether ev belongs in the generic
// dispatch-envelope table rather than one of the dedicated precompile
// tables (SHA256, Keccak, Poseidon2) that commit their own internal rows.
func isPrecompileEnvelopeEvent(ev event.PrecompileEvent) bool {
	switch isa.SyscallCode(ev.SyscallID) {
	case isa.SyscallSHA256Extend, isa.SyscallSHA256Compress, isa.SyscallKeccak256Permute, isa.SyscallPoseidon2Permute:
		return false
	default:
		return true
	}
}

func (t *PrecompileTable) rowFor(ev event.PrecompileEvent) Row {
	f := t.field
	digest, err := core.HashFieldElements(f, "poseidon", payloadElems(f, ev.Payload))
	if err != nil {
		digest = f.Zero()
	}
	return Row{
		"is_real":       f.One(),
		"syscall_id":    f.NewElementFromUint64(uint64(ev.SyscallID)),
		"payload_digest": digest,
	}
}

func payloadElems(f *core.Field, payload []uint32) []*core.FieldElement {
	elems := make([]*core.FieldElement, len(payload))
	for i, v := range payload {
		elems[i] = f.NewElementFromUint64(uint64(v))
	}
	return elems
}

func (t *PrecompileTable) GetID() TableID       { return TablePrecompile }
func (t *PrecompileTable) GetHeight() int       { return len(t.rows) }
func (t *PrecompileTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *PrecompileTable) Rows() []Row          { return t.rows }

func (t *PrecompileTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real":        f.Zero(),
			"syscall_id":     f.Zero(),
			"payload_digest": f.Zero(),
		})
	}
}

func (t *PrecompileTable) CreateInitialConstraints() []protocols.AIRConstraint    { return nil }
func (t *PrecompileTable) CreateConsistencyConstraints() []protocols.AIRConstraint { return nil }
func (t *PrecompileTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *PrecompileTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }
