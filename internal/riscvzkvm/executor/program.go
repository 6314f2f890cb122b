package executor

import "github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"

// Program is the immutable artifact produced once from an ELF and consumed
// by every execution. Instructions is keyed by word-aligned program
// counter; Image is the read-only initial data memory contents.
type Program struct {
	PCStart      uint32
	Instructions map[uint32]isa.Instruction
	Image        map[uint32]uint32
}

// NewProgram constructs a Program from a flat slice of RV32IM words laid
// out contiguously starting at base, decoding each one eagerly (mirroring
// the teacher's preprocessed program-table commitment, which also fixes
// instruction decoding before any execution happens).
func NewProgram(pcStart, base uint32, words []uint32, image map[uint32]uint32) (*Program, error) {
	instrs := make(map[uint32]isa.Instruction, len(words))
	for i, w := range words {
		addr := base + uint32(i)*4
		inst, err := isa.Decode(w)
		if err != nil {
			return nil, err
		}
		instrs[addr] = inst
	}
	if image == nil {
		image = make(map[uint32]uint32)
	}
	return &Program{PCStart: pcStart, Instructions: instrs, Image: image}, nil
}

// Fetch returns the decoded instruction at pc, or isa.PaddingInstruction's
// zero-valued twin (ok=false) if pc falls outside the program's address
// range — the caller treats this as UNIMP.
func (p *Program) Fetch(pc uint32) (isa.Instruction, bool) {
	inst, ok := p.Instructions[pc]
	return inst, ok
}
