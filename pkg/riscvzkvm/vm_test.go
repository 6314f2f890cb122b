package riscvzkvm

import "testing"

func TestVMCreation(t *testing.T) {
	t.Run("NewVM", func(t *testing.T) {
		vm, err := NewVM(DefaultVMConfig())
		if err != nil {
			t.Fatalf("NewVM: %v", err)
		}
		if vm == nil {
			t.Fatal("NewVM returned nil VM")
		}
	})

	t.Run("InvalidFieldModulus", func(t *testing.T) {
		cfg := DefaultVMConfig()
		cfg.FieldModulus = "not-a-number"
		if _, err := NewVM(cfg); err == nil {
			t.Fatal("expected error for invalid field modulus")
		}
	})
}

func TestVMExecution(t *testing.T) {
	t.Run("GetStateBeforeExecute", func(t *testing.T) {
		vm, err := NewVM(DefaultVMConfig())
		if err != nil {
			t.Fatalf("NewVM: %v", err)
		}
		state := vm.GetState()
		if state.Halted {
			t.Fatal("fresh VM should not report halted")
		}
	})

	t.Run("ExecuteHitsCycleCeiling", func(t *testing.T) {
		cfg := DefaultVMConfig()
		cfg.CycleCeiling = 1
		vm, err := NewVM(cfg)
		if err != nil {
			t.Fatalf("NewVM: %v", err)
		}
		// ADDI x1, x0, 5 repeated: never halts, so with a ceiling of one
		// cycle the run must trap on the cycle limit.
		program := &Program{PCStart: 0, Base: 0, Words: []uint32{0x00500093, 0x00500093}}
		if _, err := vm.Execute(program, nil); err == nil {
			t.Fatal("expected cycle ceiling trap")
		}
	})
}
