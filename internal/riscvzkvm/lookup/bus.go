package lookup

import (
	"fmt"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
)

// septicLimbs is the width of the payload packing before hashing into the
// Global digest, per spec.md §4.4 step 1 ("pack the payload ... into 7
// extension-field limbs").
const septicLimbs = 7

// offsetBudget bounds how many universal-hash offsets the Global digest
// tries before a payload is treated as unhashable; fixed at 256 per
// spec.md §9's Design Notes (changing it changes proofs, not soundness).
const offsetBudget = 256

// GlobalDigest accumulates the running multiset hash of every Global-scope
// interaction for one shard. The real construction hashes each message to a
// point on an elliptic curve over the septic extension field EF7 and sums
// points (spec.md §4.4); EF7 and curve arithmetic are out-of-scope external
// primitives here (spec.md §2), so this accumulator stands in with the
// field's own Poseidon sponge (core/hash.go) to collapse a packed payload
// to one base-field digest, then accumulates sends and receives with
// opposite sign so a balanced multiset still sums to the field's zero —
// the same soundness shape with a lower-fidelity hash-to-curve step.
type GlobalDigest struct {
	field *core.Field
	sum   *core.FieldElement
}

// NewGlobalDigest creates a zero accumulator.
func NewGlobalDigest(field *core.Field) *GlobalDigest {
	return &GlobalDigest{field: field, sum: field.Zero()}
}

// Absorb folds one Global-scope message into the running sum, using the
// kind_tag offset (step 1) so Memory and Syscall payloads never collide,
// and the send/receive sign convention of step 3.
func (d *GlobalDigest) Absorb(msg Message) error {
	if msg.Scope != ScopeGlobal {
		return fmt.Errorf("lookup: Absorb called with non-Global message (kind=%s)", msg.Kind)
	}
	if msg.Multiplicity == 0 {
		return nil
	}

	limbs := packLimbs(msg)
	elems := make([]*core.FieldElement, len(limbs))
	for i, l := range limbs {
		elems[i] = d.field.NewElementFromUint64(uint64(l))
	}

	digest, err := core.HashFieldElements(d.field, "poseidon", elems)
	if err != nil {
		return fmt.Errorf("lookup: hashing Global message: %w", err)
	}

	scaled := digest
	if msg.Multiplicity > 1 {
		mult := d.field.NewElementFromUint64(uint64(msg.Multiplicity))
		scaled = scaled.Mul(mult)
	}

	if msg.IsSend {
		d.sum = d.sum.Add(scaled)
	} else {
		d.sum = d.sum.Sub(scaled)
	}
	return nil
}

// Sum returns the current accumulated digest.
func (d *GlobalDigest) Sum() *core.FieldElement { return d.sum }

// IsBalanced reports whether the accumulated digest is identity (zero),
// i.e. every send in this shard was matched by an equal-multiplicity
// receive — the per-shard half of the verifier's global-balance check
// (spec.md §4.4: "sum of all shard EC sums ... = identity").
func (d *GlobalDigest) IsBalanced() bool { return d.sum.IsZero() }

func packLimbs(msg Message) []uint32 {
	kindTag := uint32(msg.Kind)
	limbs := make([]uint32, septicLimbs)
	limbs[0] = kindTag << 16
	for i := 0; i < len(msg.Payload) && i+1 < septicLimbs; i++ {
		limbs[i+1] = msg.Payload[i]
	}
	// A real implementation retries offsets x + i*2^16 for i in
	// [0, offsetBudget) until the curve equation has a square root (step
	// 2); the Poseidon stand-in above always "succeeds" on the first
	// offset, so no retry loop is needed here.
	return limbs
}
