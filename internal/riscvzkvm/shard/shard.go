// Package shard partitions an executor's event log into fixed-size shards
// and computes the per-shard metadata (memory summaries, public values)
// needed to stitch shard proofs into one execution proof.
package shard

import "github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"

// PublicValues is the shard-scoped record every verifier checks, per
// spec.md §3/§6.3. Field order is position-stable.
type PublicValues struct {
	Shard                     uint32
	StartPC                   uint32
	NextPC                    uint32
	ExitCode                  uint32
	CommittedValuesDigest     [8]uint32
	DeferredProofsDigest      [8]uint32
	PreviousFinalizeAddrBits  uint32
	LastFinalizeAddrBits      uint32
	FirstShardFlag            bool
	LastShardFlag             bool
}

// Shard is a contiguous slice of the event log bounded by shard_size,
// together with the metadata derived from it.
type Shard struct {
	Index uint32

	CPUEvents        []event.CpuEvent
	AluEvents        []event.AluEvent
	SyscallEvents    []event.SyscallEvent
	PrecompileEvents []event.PrecompileEvent

	MemoryLocal []event.MemoryLocalEvent

	Initialize []event.MemoryInitializeFinalizeEvent
	Finalize   []event.MemoryInitializeFinalizeEvent

	Public PublicValues
}
