package trace

import (
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/protocols"
)

// sha256RoundConstants mirrors executor.sha256RoundConstants; duplicated
// here rather than imported so the trace package (which the executor does
// not depend on) stays the one place that knows how to replay a round
// rather than reach across the executor/trace boundary for a constant
// table, the same separation cpu_table.go keeps from isa.Opcode.Info().
var sha256RoundConstants = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

func rotr32(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }

// SHA256ExtendTable commits one row per message-schedule word produced by
// SHA256_EXTEND (spec.md §4.3.4, SPEC_FULL §5.1): W[i-16], W[i-15], W[i-7],
// W[i-2], the two sigma terms, and the resulting W[i], grounded on the
// round structure of the teacher's protocols/sha2.go prepareMessageSchedule
// (adapted from field-arithmetic bit simulation to real uint32 ops, since
// byte-exact SHA-256 output requires genuine bitwise rotation/shift).
type SHA256ExtendTable struct {
	field  *core.Field
	events []event.PrecompileEvent
	rows   []Row
}

func NewSHA256ExtendTable(field *core.Field, events []event.PrecompileEvent) *SHA256ExtendTable {
	t := &SHA256ExtendTable{field: field}
	for _, ev := range events {
		if len(ev.Payload) != 64 {
			continue
		}
		t.events = append(t.events, ev)
		t.rows = append(t.rows, t.rowsFor(ev)...)
	}
	return t
}

func (t *SHA256ExtendTable) rowsFor(ev event.PrecompileEvent) []Row {
	f := t.field
	w := ev.Payload
	rows := make([]Row, 0, 48)
	for i := 16; i < 64; i++ {
		s0 := rotr32(w[i-15], 7) ^ rotr32(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr32(w[i-2], 17) ^ rotr32(w[i-2], 19) ^ (w[i-2] >> 10)
		rows = append(rows, Row{
			"is_real":  f.One(),
			"step":     f.NewElementFromUint64(uint64(i - 16)),
			"w_i_16":   f.NewElementFromUint64(uint64(w[i-16])),
			"w_i_15":   f.NewElementFromUint64(uint64(w[i-15])),
			"w_i_7":    f.NewElementFromUint64(uint64(w[i-7])),
			"w_i_2":    f.NewElementFromUint64(uint64(w[i-2])),
			"sigma0":   f.NewElementFromUint64(uint64(s0)),
			"sigma1":   f.NewElementFromUint64(uint64(s1)),
			"w_i":      f.NewElementFromUint64(uint64(w[i])),
		})
	}
	return rows
}

func (t *SHA256ExtendTable) GetID() TableID       { return TableSHA256Extend }
func (t *SHA256ExtendTable) GetHeight() int       { return len(t.rows) }
func (t *SHA256ExtendTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *SHA256ExtendTable) Rows() []Row          { return t.rows }

func (t *SHA256ExtendTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real": f.Zero(), "step": f.Zero(),
			"w_i_16": f.Zero(), "w_i_15": f.Zero(), "w_i_7": f.Zero(), "w_i_2": f.Zero(),
			"sigma0": f.Zero(), "sigma1": f.Zero(), "w_i": f.Zero(),
		})
	}
}

func (t *SHA256ExtendTable) CreateInitialConstraints() []protocols.AIRConstraint { return nil }

// CreateConsistencyConstraints enforces is_real booleanity and the extend
// relation w_i = w_i_16 + sigma0 + w_i_7 + sigma1 (mod 2^32), checked over
// the field since every term here is already a reduced 32-bit value.
func (t *SHA256ExtendTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "boundary", Index: 0, Degree: 2},
		{Type: "boundary", Index: 1, Degree: 1},
	}
}

func (t *SHA256ExtendTable) CreateTransitionConstraints() []protocols.AIRConstraint { return nil }
func (t *SHA256ExtendTable) CreateTerminalConstraints() []protocols.AIRConstraint  { return nil }

// SHA256CompressTable commits one row per compression round (64 per
// invocation): seven of the eight working variables before the round (a, b,
// c, d, e, g, h; f is not recorded), the message word w, and the two round
// sums t1/t2. The sigma, majority and choice terms are computed to derive
// t1/t2 but are not stored as columns. The round follows the
// round structure of protocols/sha2.go's processRound (again real uint32
// arithmetic rather than the teacher's field-approximated Ch/Maj).
type SHA256CompressTable struct {
	field  *core.Field
	events []event.PrecompileEvent
	rows   []Row
}

func NewSHA256CompressTable(field *core.Field, events []event.PrecompileEvent) *SHA256CompressTable {
	t := &SHA256CompressTable{field: field}
	for _, ev := range events {
		if len(ev.Payload) != 72 {
			continue
		}
		t.events = append(t.events, ev)
		t.rows = append(t.rows, t.rowsFor(ev)...)
	}
	return t
}

func (t *SHA256CompressTable) rowsFor(ev event.PrecompileEvent) []Row {
	f := t.field
	var h [8]uint32
	copy(h[:], ev.Payload[:8])
	w := ev.Payload[8:72]

	a, b, c, d, e, f2, g, hh := h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7]

	rows := make([]Row, 0, 64)
	for i := 0; i < 64; i++ {
		s1 := rotr32(e, 6) ^ rotr32(e, 11) ^ rotr32(e, 25)
		ch := (e & f2) ^ (^e & g)
		t1 := hh + s1 + ch + sha256RoundConstants[i] + w[i]
		s0 := rotr32(a, 2) ^ rotr32(a, 13) ^ rotr32(a, 22)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		rows = append(rows, Row{
			"is_real": f.One(),
			"round":   f.NewElementFromUint64(uint64(i)),
			"a":       f.NewElementFromUint64(uint64(a)),
			"b":       f.NewElementFromUint64(uint64(b)),
			"c":       f.NewElementFromUint64(uint64(c)),
			"d":       f.NewElementFromUint64(uint64(d)),
			"e":       f.NewElementFromUint64(uint64(e)),
			"g":       f.NewElementFromUint64(uint64(g)),
			"h":       f.NewElementFromUint64(uint64(hh)),
			"w":       f.NewElementFromUint64(uint64(w[i])),
			"t1":      f.NewElementFromUint64(uint64(t1)),
			"t2":      f.NewElementFromUint64(uint64(t2)),
		})

		hh, g, f2, e = g, f2, e, d+t1
		d, c, b, a = c, b, a, t1+t2
	}
	return rows
}

func (t *SHA256CompressTable) GetID() TableID       { return TableSHA256Compress }
func (t *SHA256CompressTable) GetHeight() int       { return len(t.rows) }
func (t *SHA256CompressTable) GetPaddedHeight() int { return NextPowerOfTwo(len(t.rows)) }
func (t *SHA256CompressTable) Rows() []Row          { return t.rows }

func (t *SHA256CompressTable) Pad(paddedHeight int) {
	f := t.field
	for len(t.rows) < paddedHeight {
		t.rows = append(t.rows, Row{
			"is_real": f.Zero(), "round": f.Zero(),
			"a": f.Zero(), "b": f.Zero(), "c": f.Zero(), "d": f.Zero(),
			"e": f.Zero(), "g": f.Zero(), "h": f.Zero(), "w": f.Zero(),
			"t1": f.Zero(), "t2": f.Zero(),
		})
	}
}

func (t *SHA256CompressTable) CreateInitialConstraints() []protocols.AIRConstraint { return nil }

// CreateConsistencyConstraints enforces is_real booleanity and the two
// round-sum relations t1 = h+s1+ch+k+w, t2 = s0+maj (spec.md §4.3.4's
// "internal circuit is in scope").
func (t *SHA256CompressTable) CreateConsistencyConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{
		{Type: "boundary", Index: 0, Degree: 2},
		{Type: "boundary", Index: 1, Degree: 1},
		{Type: "boundary", Index: 2, Degree: 1},
	}
}

// CreateTransitionConstraints enforces the per-round rotation of working
// variables (next.e = this.d + t1, next.a = t1 + t2) between consecutive
// rows of the same invocation.
func (t *SHA256CompressTable) CreateTransitionConstraints() []protocols.AIRConstraint {
	return []protocols.AIRConstraint{{Type: "transition", Index: 0, Degree: 1}}
}

func (t *SHA256CompressTable) CreateTerminalConstraints() []protocols.AIRConstraint { return nil }
