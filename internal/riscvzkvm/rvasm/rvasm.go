// Package rvasm encodes individual RV32IM instructions into their 32-bit
// machine words, the inverse of isa.Decode. It exists so tests can build
// small programs without hand-computing bit layouts.
package rvasm

const (
	opLUI     = 0x37
	opAUIPC   = 0x17
	opJAL     = 0x6f
	opJALR    = 0x67
	opBranch  = 0x63
	opLoad    = 0x03
	opStore   = 0x23
	opImm     = 0x13
	opReg     = 0x33
	opSystem  = 0x73
)

// Register indices for the mnemonics used by the tests.
const (
	Zero uint8 = 0
	RA   uint8 = 1
	SP   uint8 = 2
	T0   uint8 = 5
	T1   uint8 = 6
	T2   uint8 = 7
	S0   uint8 = 8
	S1   uint8 = 9
	A0   uint8 = 10
	A1   uint8 = 11
	A2   uint8 = 12
)

func rType(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint8) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func iType(opcode, funct3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func sType(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>5)&0x7f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func bType(opcode, funct3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>12)&0x1)<<31 | ((u>>5)&0x3f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		funct3<<12 | ((u>>1)&0xf)<<8 | ((u>>11)&0x1)<<7 | opcode
}

func uType(opcode uint32, rd uint8, imm int32) uint32 {
	return (uint32(imm) & 0xfffff000) | uint32(rd)<<7 | opcode
}

func jType(opcode uint32, rd uint8, imm int32) uint32 {
	u := uint32(imm)
	return ((u>>20)&0x1)<<31 | ((u>>1)&0x3ff)<<21 | ((u>>11)&0x1)<<20 | ((u>>12)&0xff)<<12 | uint32(rd)<<7 | opcode
}

func LUI(rd uint8, imm int32) uint32   { return uType(opLUI, rd, imm) }
func AUIPC(rd uint8, imm int32) uint32 { return uType(opAUIPC, rd, imm) }

func JAL(rd uint8, imm int32) uint32          { return jType(opJAL, rd, imm) }
func JALR(rd, rs1 uint8, imm int32) uint32    { return iType(opJALR, 0, rd, rs1, imm) }

func BEQ(rs1, rs2 uint8, imm int32) uint32  { return bType(opBranch, 0, rs1, rs2, imm) }
func BNE(rs1, rs2 uint8, imm int32) uint32  { return bType(opBranch, 1, rs1, rs2, imm) }
func BLT(rs1, rs2 uint8, imm int32) uint32  { return bType(opBranch, 4, rs1, rs2, imm) }
func BGE(rs1, rs2 uint8, imm int32) uint32  { return bType(opBranch, 5, rs1, rs2, imm) }
func BLTU(rs1, rs2 uint8, imm int32) uint32 { return bType(opBranch, 6, rs1, rs2, imm) }
func BGEU(rs1, rs2 uint8, imm int32) uint32 { return bType(opBranch, 7, rs1, rs2, imm) }

func LB(rd, rs1 uint8, imm int32) uint32  { return iType(opLoad, 0, rd, rs1, imm) }
func LH(rd, rs1 uint8, imm int32) uint32  { return iType(opLoad, 1, rd, rs1, imm) }
func LW(rd, rs1 uint8, imm int32) uint32  { return iType(opLoad, 2, rd, rs1, imm) }
func LBU(rd, rs1 uint8, imm int32) uint32 { return iType(opLoad, 4, rd, rs1, imm) }
func LHU(rd, rs1 uint8, imm int32) uint32 { return iType(opLoad, 5, rd, rs1, imm) }

func SB(rs1, rs2 uint8, imm int32) uint32 { return sType(opStore, 0, rs1, rs2, imm) }
func SH(rs1, rs2 uint8, imm int32) uint32 { return sType(opStore, 1, rs1, rs2, imm) }
func SW(rs1, rs2 uint8, imm int32) uint32 { return sType(opStore, 2, rs1, rs2, imm) }

func ADDI(rd, rs1 uint8, imm int32) uint32  { return iType(opImm, 0, rd, rs1, imm) }
func SLTI(rd, rs1 uint8, imm int32) uint32  { return iType(opImm, 2, rd, rs1, imm) }
func SLTIU(rd, rs1 uint8, imm int32) uint32 { return iType(opImm, 3, rd, rs1, imm) }
func XORI(rd, rs1 uint8, imm int32) uint32  { return iType(opImm, 4, rd, rs1, imm) }
func ORI(rd, rs1 uint8, imm int32) uint32   { return iType(opImm, 6, rd, rs1, imm) }
func ANDI(rd, rs1 uint8, imm int32) uint32  { return iType(opImm, 7, rd, rs1, imm) }
func SLLI(rd, rs1 uint8, shamt uint8) uint32 { return iType(opImm, 1, rd, rs1, int32(shamt)) }
func SRLI(rd, rs1 uint8, shamt uint8) uint32 { return iType(opImm, 5, rd, rs1, int32(shamt)) }
func SRAI(rd, rs1 uint8, shamt uint8) uint32 {
	return iType(opImm, 5, rd, rs1, int32(shamt)|(0x20<<5))
}

func ADD(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 0, 0x00, rd, rs1, rs2) }
func SUB(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 0, 0x20, rd, rs1, rs2) }
func SLL(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 1, 0x00, rd, rs1, rs2) }
func SLT(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 2, 0x00, rd, rs1, rs2) }
func SLTU(rd, rs1, rs2 uint8) uint32 { return rType(opReg, 3, 0x00, rd, rs1, rs2) }
func XOR(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 4, 0x00, rd, rs1, rs2) }
func SRL(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 5, 0x00, rd, rs1, rs2) }
func SRA(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 5, 0x20, rd, rs1, rs2) }
func OR(rd, rs1, rs2 uint8) uint32   { return rType(opReg, 6, 0x00, rd, rs1, rs2) }
func AND(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 7, 0x00, rd, rs1, rs2) }

func MUL(rd, rs1, rs2 uint8) uint32    { return rType(opReg, 0, 0x01, rd, rs1, rs2) }
func MULH(rd, rs1, rs2 uint8) uint32   { return rType(opReg, 1, 0x01, rd, rs1, rs2) }
func MULHSU(rd, rs1, rs2 uint8) uint32 { return rType(opReg, 2, 0x01, rd, rs1, rs2) }
func MULHU(rd, rs1, rs2 uint8) uint32  { return rType(opReg, 3, 0x01, rd, rs1, rs2) }
func DIV(rd, rs1, rs2 uint8) uint32    { return rType(opReg, 4, 0x01, rd, rs1, rs2) }
func DIVU(rd, rs1, rs2 uint8) uint32   { return rType(opReg, 5, 0x01, rd, rs1, rs2) }
func REM(rd, rs1, rs2 uint8) uint32    { return rType(opReg, 6, 0x01, rd, rs1, rs2) }
func REMU(rd, rs1, rs2 uint8) uint32   { return rType(opReg, 7, 0x01, rd, rs1, rs2) }

// ECALL encodes the SYSTEM instruction every syscall dispatch uses; the
// syscall id and arguments are conveyed through t0/a0/a1 ahead of it, per
// spec.md §4.1.
func ECALL() uint32 { return opSystem }

// Syscall ids, mirrored from isa.SyscallCode so callers assembling raw
// instruction streams don't need to import isa directly.
const (
	SyscallWrite    uint32 = 0x10
	SyscallHalt     uint32 = 0x11
	SyscallHintLen  uint32 = 0x15
	SyscallHintRead uint32 = 0x16
)

// WriteWord assembles the instruction sequence that writes the four bytes
// of valueReg to file descriptor fd via the WRITE syscall, using scratch as
// a two-word scratch buffer (length, then payload) in data memory. scratch
// must fit a 12-bit signed immediate and must not alias any register the
// caller still needs afterward (t0/t1/t2/a0/a1 are clobbered).
func WriteWord(scratch uint32, valueReg uint8, fd int32) []uint32 {
	return []uint32{
		ADDI(T1, Zero, int32(scratch)),
		ADDI(T2, Zero, 4),
		SW(T1, T2, 0),
		SW(T1, valueReg, 4),
		ADDI(A0, Zero, fd),
		ADD(A1, T1, Zero),
		ADDI(T0, Zero, int32(SyscallWrite)),
		ECALL(),
	}
}

// Halt assembles the instruction sequence that exits with exitCode via the
// HALT syscall.
func Halt(exitCode int32) []uint32 {
	return []uint32{
		ADDI(A0, Zero, exitCode),
		ADDI(T0, Zero, int32(SyscallHalt)),
		ECALL(),
	}
}
