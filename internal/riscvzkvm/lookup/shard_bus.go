package lookup

import "github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"

// ShardBus is the full lookup bus for one shard: a Local permutation
// argument over Byte/Program interactions and a Global EC digest over
// Memory/Syscall interactions, per spec.md §4.4.
type ShardBus struct {
	Local  *LocalArgument
	Global *GlobalDigest
}

// NewShardBus creates an empty bus for one shard.
func NewShardBus(field *core.Field, challenge *core.FieldElement) *ShardBus {
	return &ShardBus{
		Local:  NewLocalArgument(field, challenge),
		Global: NewGlobalDigest(field),
	}
}

// AbsorbAll routes each message to the Local or Global accumulator by its
// Scope.
func (b *ShardBus) AbsorbAll(msgs []Message) error {
	for _, m := range msgs {
		var err error
		switch m.Scope {
		case ScopeLocal:
			err = b.Local.Absorb(m)
		case ScopeGlobal:
			err = b.Global.Absorb(m)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// IsBalanced reports whether both channels balance for this shard.
func (b *ShardBus) IsBalanced() bool {
	return b.Local.IsBalanced() && b.Global.IsBalanced()
}
