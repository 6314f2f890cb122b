package isa

import "errors"

// ErrInvalidInstruction is wrapped by Decode when the opcode/funct3/funct7
// triple does not name a supported RV32IM instruction.
var ErrInvalidInstruction = errors.New("isa: invalid instruction")
