package trace

import (
	"sort"

	vcfield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/executor"
)

// ProgramDigest hashes a Program's address-ordered instruction stream into
// the five-element digest shape protocols.Claim requires (TIP-0006),
// domain-separating each output element by index so the digest is a close
// relative of the Program table's own commitment rather than an unrelated
// value.
func ProgramDigest(field *core.Field, program *executor.Program) ([]vcfield.Element, error) {
	addrs := make([]uint32, 0, len(program.Instructions))
	for addr := range program.Instructions {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	preimage := make([]*core.FieldElement, 0, len(addrs)*2)
	for _, addr := range addrs {
		inst := program.Instructions[addr]
		preimage = append(preimage,
			field.NewElementFromUint64(uint64(addr)),
			field.NewElementFromInt64(int64(inst.Opcode)),
		)
	}

	digest := make([]vcfield.Element, 5)
	for i := range digest {
		withIndex := append(append([]*core.FieldElement{}, preimage...), field.NewElementFromUint64(uint64(i)))
		elem, err := core.HashFieldElements(field, "poseidon", withIndex)
		if err != nil {
			return nil, err
		}
		digest[i] = toVCField(elem)
	}
	return digest, nil
}
