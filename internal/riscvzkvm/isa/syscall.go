package isa

// SyscallCode enumerates the closed set of ECALL dispatch ids. The id is
// read from register t0 (x5) at the point of an ECALL instruction.
type SyscallCode uint32

const (
	SyscallWrite                 SyscallCode = 0x00_00_00_10
	SyscallHalt                  SyscallCode = 0x00_00_00_11
	SyscallCommit                SyscallCode = 0x00_00_00_12
	SyscallCommitDeferredProofs  SyscallCode = 0x00_00_00_13
	SyscallVerifySP1Proof        SyscallCode = 0x00_00_00_14
	SyscallHintLen               SyscallCode = 0x00_00_00_15
	SyscallHintRead              SyscallCode = 0x00_00_00_16

	// Precompiles, allocated in the 0x00_01_01_xx range.
	SyscallSHA256Extend      SyscallCode = 0x00_01_01_01
	SyscallSHA256Compress    SyscallCode = 0x00_01_01_02
	SyscallKeccak256Permute  SyscallCode = 0x00_01_01_03
	SyscallEd25519Add        SyscallCode = 0x00_01_01_04
	SyscallEd25519Decompress SyscallCode = 0x00_01_01_05
	SyscallSecp256k1Add      SyscallCode = 0x00_01_01_06
	SyscallSecp256k1Double   SyscallCode = 0x00_01_01_07
	SyscallSecp256k1Decomp   SyscallCode = 0x00_01_01_08
	SyscallUint256Mul        SyscallCode = 0x00_01_01_09
	SyscallPoseidon2Permute  SyscallCode = 0x00_01_01_0a

	// Reserved: pairing-friendly curve operations (BN254/BLS12-381). No
	// handler is registered for these yet, so dispatch falls through to
	// executor.ErrTrapEcall like any other unregistered syscall id. See
	// DESIGN.md's Open Questions entry.
	SyscallBN254Add       SyscallCode = 0x00_01_01_0b
	SyscallBN254Double    SyscallCode = 0x00_01_01_0c
	SyscallBLS12381Add    SyscallCode = 0x00_01_01_0d
	SyscallBLS12381Double SyscallCode = 0x00_01_01_0e
)

// Name returns a human-readable mnemonic for a syscall id, used in trap
// messages and CLI diagnostics.
func (s SyscallCode) Name() string {
	switch s {
	case SyscallWrite:
		return "WRITE"
	case SyscallHalt:
		return "HALT"
	case SyscallCommit:
		return "COMMIT"
	case SyscallCommitDeferredProofs:
		return "COMMIT_DEFERRED_PROOFS"
	case SyscallVerifySP1Proof:
		return "VERIFY_SP1_PROOF"
	case SyscallHintLen:
		return "HINT_LEN"
	case SyscallHintRead:
		return "HINT_READ"
	case SyscallSHA256Extend:
		return "SHA256_EXTEND"
	case SyscallSHA256Compress:
		return "SHA256_COMPRESS"
	case SyscallKeccak256Permute:
		return "KECCAK256_PERMUTE"
	case SyscallEd25519Add:
		return "ED25519_ADD"
	case SyscallEd25519Decompress:
		return "ED25519_DECOMPRESS"
	case SyscallSecp256k1Add:
		return "SECP256K1_ADD"
	case SyscallSecp256k1Double:
		return "SECP256K1_DOUBLE"
	case SyscallSecp256k1Decomp:
		return "SECP256K1_DECOMPRESS"
	case SyscallUint256Mul:
		return "UINT256_MUL"
	case SyscallPoseidon2Permute:
		return "POSEIDON2_PERMUTE"
	case SyscallBN254Add, SyscallBN254Double, SyscallBLS12381Add, SyscallBLS12381Double:
		return "PAIRING_CURVE_OP"
	default:
		return "UNKNOWN"
	}
}

// IsPrecompile reports whether a syscall id dispatches into a precompile
// trace table rather than being handled directly by the executor.
func (s SyscallCode) IsPrecompile() bool {
	return s >= SyscallSHA256Extend
}
