package riscvzkvm

import (
	"testing"
)

func TestTypes(t *testing.T) {
	t.Run("FieldElement", func(t *testing.T) {
		// Test FieldElement type
		// This would test the public API types
	})

	t.Run("VMState", func(t *testing.T) {
		// Test VMState type
		// This would test the public API types
	})

	t.Run("Instruction", func(t *testing.T) {
		// Test Instruction type
		// This would test the public API types
	})
}

func TestTypeValidation(t *testing.T) {
	t.Run("FieldElementValidation", func(t *testing.T) {
		// Test FieldElement validation
		// This would test type validation
	})

	t.Run("VMStateValidation", func(t *testing.T) {
		// Test VMState validation
		// This would test type validation
	})
}
