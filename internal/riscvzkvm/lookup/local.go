package lookup

import (
	"fmt"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
)

// LocalArgument accumulates a per-shard running-product permutation
// argument over Byte and Program interactions, grounded on the teacher's
// PermutationArgumentComputer (cross_table_arguments.go): each send
// contributes (challenge - compress(payload)) to the numerator, each
// receive to the denominator, and the shard balances iff the final ratio
// is one.
type LocalArgument struct {
	field     *core.Field
	challenge *core.FieldElement
	numerator *core.FieldElement
	denominator *core.FieldElement
}

// NewLocalArgument creates an accumulator keyed on a verifier-supplied
// Fiat-Shamir challenge.
func NewLocalArgument(field *core.Field, challenge *core.FieldElement) *LocalArgument {
	return &LocalArgument{
		field:       field,
		challenge:   challenge,
		numerator:   field.One(),
		denominator: field.One(),
	}
}

// Absorb folds one Local-scope message (Byte or Program) into the running
// product.
func (l *LocalArgument) Absorb(msg Message) error {
	if msg.Scope != ScopeLocal {
		return fmt.Errorf("lookup: Absorb called with non-Local message (kind=%s)", msg.Kind)
	}
	if msg.Multiplicity == 0 {
		return nil
	}

	compressed := l.compress(msg.Payload)
	term := l.challenge.Sub(compressed)

	if msg.IsSend {
		l.numerator = l.numerator.Mul(term)
	} else {
		l.denominator = l.denominator.Mul(term)
	}
	return nil
}

// compress folds a payload into one field element via Horner's method
// under the same challenge, mirroring CompressRow in the teacher's
// cross_table_arguments.go.
func (l *LocalArgument) compress(payload []uint32) *core.FieldElement {
	acc := l.field.Zero()
	for _, v := range payload {
		acc = acc.Mul(l.challenge).Add(l.field.NewElementFromUint64(uint64(v)))
	}
	return acc
}

// IsBalanced reports whether the running product's numerator equals its
// denominator — the Local channel's "cumulative sum is zero at the last
// row" condition expressed multiplicatively (spec.md §4.4, testable
// property 3).
func (l *LocalArgument) IsBalanced() bool {
	return l.numerator.Equal(l.denominator)
}
