package executor

import "errors"

// Trap errors are fatal to the current execution. Each is returned wrapped
// with fmt.Errorf so the offending pc/instruction is visible in Error(),
// while errors.Is against these sentinels still succeeds.
var (
	ErrTrapHalt        = errors.New("executor: HALT")
	ErrTrapUnimpl      = errors.New("executor: UNIMP instruction")
	ErrTrapInvalidMem  = errors.New("executor: unaligned memory access")
	ErrTrapEcall       = errors.New("executor: unregistered syscall")
	ErrTrapCycleLimit  = errors.New("executor: cycle limit exceeded")
	ErrTrapInvalidInst = errors.New("executor: invalid instruction")
)
