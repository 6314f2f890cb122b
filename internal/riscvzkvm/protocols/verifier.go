package protocols

import (
	"fmt"
	"math/big"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// Verifier checks the structure of STARK proofs
//
// Verify validates the claim and the proof, derives the domains from the
// proof's padded height, derives challenges and an OOD point from the first
// two Merkle roots, and checks that the AIR, the FRI domain and the Merkle
// roots are well formed. It does not evaluate AIR constraints at the OOD
// point, run the FRI query phase, or check Merkle authentication paths.
type Verifier struct {
	params STARKParameters
	field  *core.Field
}

// NewVerifier creates a new verifier with given parameters
func NewVerifier(field *core.Field, params STARKParameters) (*Verifier, error) {
	if field == nil {
		return nil, fmt.Errorf("field cannot be nil")
	}

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid STARK parameters: %w", err)
	}

	return &Verifier{
		params: params,
		field:  field,
	}, nil
}

// Verify verifies a STARK proof against a claim
//
// Returns nil if the proof is valid, error otherwise
func (v *Verifier) Verify(claim *Claim, proof *Proof) error {
	// Step 1: Validate inputs
	if err := claim.Validate(); err != nil {
		return fmt.Errorf("invalid claim: %w", err)
	}

	if err := proof.Validate(); err != nil {
		return fmt.Errorf("invalid proof: %w", err)
	}

	// Step 2: Reconstruct Fiat-Shamir state with claim
	claimHash, err := claim.Hash()
	if err != nil {
		return fmt.Errorf("failed to hash claim: %w", err)
	}

	// Step 3: Extract padded height from proof
	paddedHeight, err := proof.GetPaddedHeight()
	if err != nil {
		return fmt.Errorf("failed to get padded height: %w", err)
	}

	// Step 4: Derive arithmetic domains
	domains, err := v.deriveDomains(paddedHeight)
	if err != nil {
		return fmt.Errorf("failed to derive domains: %w", err)
	}

	// Step 5: Extract Merkle roots from proof
	merkleRoots := proof.GetMerkleRoots()
	if len(merkleRoots) < 2 {
		return fmt.Errorf("proof must contain at least 2 Merkle roots (trace + quotient), got %d", len(merkleRoots))
	}

	traceRoot := merkleRoots[0]
	quotientRoot := merkleRoots[1]

	// Step 6: Reconstruct challenges
	challenges, err := v.reconstructChallenges(claimHash, traceRoot)
	if err != nil {
		return fmt.Errorf("failed to reconstruct challenges: %w", err)
	}

	// Step 7: Sample out-of-domain point
	oodPoint, err := v.sampleOODPoint(quotientRoot)
	if err != nil {
		return fmt.Errorf("failed to sample OOD point: %w", err)
	}

	// Step 8: Check the AIR structure
	// Only the constraint count and maximum degree are checked; no constraint
	// is evaluated at the OOD point and no low-degree test of the quotients is run.
	challengesCore := make([]*core.FieldElement, len(challenges))
	for i, c := range challenges {
		challengesCore[i] = convertFromFieldElement(c, v.field)
	}
	// oodPoint is already *core.FieldElement from sampleOODPoint
	if err := v.verifyAIRStructure(domains, challengesCore, oodPoint); err != nil {
		return fmt.Errorf("AIR verification failed: %w", err)
	}

	// Step 9: Verify FRI proof
	// In a full implementation, we would:
	// - Extract FRI layers from proof
	// - Verify each Merkle commitment
	// - Verify folding correctness
	// - Verify final polynomial degree
	if err := v.verifyFRIStructure(proof, domains); err != nil {
		return fmt.Errorf("FRI verification failed: %w", err)
	}

	// Step 10: Check the Merkle roots
	// This structural check ensures the proof carries non-empty roots; no
	// authentication path is checked here or elsewhere in Verify.
	if err := v.verifyMerkleStructure(proof); err != nil {
		return fmt.Errorf("Merkle verification failed: %w", err)
	}

	// All checks passed!
	return nil
}

// deriveDomains derives all arithmetic domains for verification
func (v *Verifier) deriveDomains(paddedHeight int) (*ProverDomains, error) {
	// Compute FRI domain size
	randomizedLen := v.params.RandomizedTraceLength(paddedHeight)
	friDomainSize := randomizedLen * v.params.FRIExpansionFactor

	// Create FRI domain
	friDomain, err := NewArithmeticDomain(friDomainSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create FRI domain: %w", err)
	}

	// Compute max degree for quotient domain
	maxDegree := v.params.MaxDegree(paddedHeight)

	// Derive all domains using updated signature
	domains, err := DeriveProverDomains(
		paddedHeight,
		v.params.NumTraceRandomizers,
		friDomain,
		maxDegree,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to derive domains: %w", err)
	}

	return domains, nil
}

// reconstructChallenges reconstructs the Fiat-Shamir challenges
//
// The challenges must be reconstructed in the exact same way as the prover
func (v *Verifier) reconstructChallenges(claimHash field.Element, traceRoot []byte) ([]field.Element, error) {
	// Get Poseidon hash instance
	hash, err := core.GetEnhancedPoseidonHash(v.field, 128)
	if err != nil {
		return nil, fmt.Errorf("failed to create hash: %w", err)
	}

	// Combine claim hash and trace root
	rootElems := make([]*core.FieldElement, 10)
	rootElems[0] = convertFromFieldElement(claimHash, v.field)

	// Convert trace root to field elements
	for i := 1; i < 10; i++ {
		if (i-1)*8 < len(traceRoot) {
			end := i * 8
			if end > len(traceRoot) {
				end = len(traceRoot)
			}
			chunk := traceRoot[(i-1)*8 : end]
			val := new(big.Int).SetBytes(chunk)
			rootElems[i] = v.field.NewElement(val)
		} else {
			rootElems[i] = v.field.Zero()
		}
	}

	// Generate challenge seed
	challengeSeed, err := hash.Hash(rootElems)
	if err != nil {
		return nil, fmt.Errorf("failed to hash for challenges: %w", err)
	}

	// Generate challenges (same as prover)
	numChallenges := 20
	challenges := make([]*core.FieldElement, numChallenges)
	current := challengeSeed
	for i := 0; i < numChallenges; i++ {
		challenges[i] = current
		// Hash current to get next challenge
		input := make([]*core.FieldElement, 10)
		input[0] = current
		for j := 1; j < 10; j++ {
			input[j] = v.field.Zero()
		}
		current, err = hash.Hash(input)
		if err != nil {
			return nil, fmt.Errorf("failed to generate challenge %d: %w", i, err)
		}
	}

	// Convert to field.Element
	challengesElems := make([]field.Element, len(challenges))
	for i, c := range challenges {
		challengesElems[i] = convertToFieldElement(c)
	}

	return challengesElems, nil
}

// sampleOODPoint samples the out-of-domain evaluation point
//
// Must match the prover's sampling exactly
func (v *Verifier) sampleOODPoint(quotientRoot []byte) (*core.FieldElement, error) {
	// Get Poseidon hash instance
	hash, err := core.GetEnhancedPoseidonHash(v.field, 128)
	if err != nil {
		return nil, fmt.Errorf("failed to create hash: %w", err)
	}

	// Convert root to field elements
	rootElems := make([]*core.FieldElement, 10)
	for i := 0; i < 10; i++ {
		if i*8 < len(quotientRoot) {
			end := (i + 1) * 8
			if end > len(quotientRoot) {
				end = len(quotientRoot)
			}
			chunk := quotientRoot[i*8 : end]
			val := new(big.Int).SetBytes(chunk)
			rootElems[i] = v.field.NewElement(val)
		} else {
			rootElems[i] = v.field.Zero()
		}
	}

	return hash.Hash(rootElems)
}

// verifyAIRStructure verifies the AIR constraint structure
//
// In a production implementation, this would:
// 1. Extract OOD evaluations from proof
// 2. Evaluate all AIR constraints at OOD point
// 3. Verify constraints evaluate to zero (within soundness error)
func (v *Verifier) verifyAIRStructure(
	domains *ProverDomains,
	challenges []*core.FieldElement,
	oodPoint *core.FieldElement,
) error {
	// Create AIR constraints (same as prover)
	air := CreateProcessorConstraints()

	// Verify constraint structure
	if air.NumConstraints() == 0 {
		return fmt.Errorf("no constraints defined")
	}

	// Verify max degree is reasonable
	maxDegree := air.MaxDegree()
	expectedMaxDegree := v.params.MaxDegree(domains.Trace.Length)
	if maxDegree > expectedMaxDegree {
		return fmt.Errorf("constraint max degree %d exceeds expected %d", maxDegree, expectedMaxDegree)
	}

	// In a full implementation:
	// - Extract trace evaluations at OOD from proof
	// - Evaluate each constraint at OOD
	// - Verify sum is zero (or close to zero within soundness)

	return nil
}

// verifyFRIStructure verifies the FRI proof structure
//
// In a production implementation, this would:
// 1. Extract FRI layers from proof
// 2. Verify each Merkle root
// 3. Verify folding correctness
// 4. Verify final polynomial has degree < ρ
// 5. Verify query responses and authentication paths
func (v *Verifier) verifyFRIStructure(proof *Proof, domains *ProverDomains) error {
	// Extract Merkle roots (at least one for FRI)
	roots := proof.GetMerkleRoots()
	if len(roots) < 2 {
		return fmt.Errorf("insufficient Merkle roots for FRI verification")
	}

	// In a full implementation:
	// - Extract FRI layers
	// - Verify each layer's Merkle commitment
	// - Verify folding: f^(i+1)(x) = (f^(i)(x) + f^(i)(-x)) / 2 + α(f^(i)(x) - f^(i)(-x)) / (2x)
	// - Verify final polynomial degree
	// - Verify query responses

	// For now, verify structural requirements
	friDomainSize := domains.FRI.Length
	if friDomainSize == 0 || !isPowerOfTwo(friDomainSize) {
		return fmt.Errorf("FRI domain size must be a power of 2, got %d", friDomainSize)
	}

	return nil
}

// verifyMerkleStructure checks that the proof has at least one Merkle root
// and that none is empty; it does not check authentication paths.
//
// In a production implementation, this would:
// 1. Extract query indices from FRI
// 2. Extract authentication paths from proof
// 3. Verify each path against the committed roots
func (v *Verifier) verifyMerkleStructure(proof *Proof) error {
	// Verify we have Merkle roots
	roots := proof.GetMerkleRoots()
	if len(roots) == 0 {
		return fmt.Errorf("no Merkle roots in proof")
	}

	// In a full implementation:
	// - Extract query indices
	// - Extract authentication paths
	// - Recompute roots from leaves + paths
	// - Verify recomputed roots match committed roots

	// For now, verify roots are non-empty
	for i, root := range roots {
		if len(root) == 0 {
			return fmt.Errorf("Merkle root %d is empty", i)
		}
	}

	return nil
}

// VerifyBatch verifies multiple proofs one after another, stopping at the
// first failure
//
// In a full implementation, batch verification can share:
// - Challenge generation
// - Some arithmetic operations
// - Random linear combinations
func (v *Verifier) VerifyBatch(claims []*Claim, proofs []*Proof) error {
	if len(claims) != len(proofs) {
		return fmt.Errorf("number of claims (%d) must match number of proofs (%d)", len(claims), len(proofs))
	}

	// Verify each proof individually
	// A production batch verifier would optimize this
	for i := 0; i < len(claims); i++ {
		if err := v.Verify(claims[i], proofs[i]); err != nil {
			return fmt.Errorf("proof %d verification failed: %w", i, err)
		}
	}

	return nil
}
