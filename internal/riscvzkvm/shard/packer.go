package shard

import (
	"sort"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"
	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/isa"
)

// Log is the full, flat event stream an Executor produced. The packer
// groups it by each event's embedded Shard field (the executor already
// assigns shard indices as it runs) rather than re-deriving shard
// boundaries itself.
type Log struct {
	CPUEvents        []event.CpuEvent
	AluEvents        []event.AluEvent
	SyscallEvents    []event.SyscallEvent
	PrecompileEvents []event.PrecompileEvent

	InitialImage   map[uint32]uint32
	FinalSnapshot  map[uint32]uint32
}

// Pack partitions log into Shards and computes each shard's PublicValues,
// memory-access summary, and global initialize/finalize events, per
// spec.md §4.2.
func Pack(log Log) []Shard {
	byShard := make(map[uint32]*Shard)
	order := []uint32{}
	ensure := func(idx uint32) *Shard {
		s, ok := byShard[idx]
		if !ok {
			s = &Shard{Index: idx}
			byShard[idx] = s
			order = append(order, idx)
		}
		return s
	}

	for _, e := range log.CPUEvents {
		s := ensure(e.Shard)
		s.CPUEvents = append(s.CPUEvents, e)
	}
	for _, e := range log.AluEvents {
		ensure(e.Shard).AluEvents = append(ensure(e.Shard).AluEvents, e)
	}
	for _, e := range log.SyscallEvents {
		ensure(e.Shard).SyscallEvents = append(ensure(e.Shard).SyscallEvents, e)
	}
	for _, e := range log.PrecompileEvents {
		ensure(e.Shard).PrecompileEvents = append(ensure(e.Shard).PrecompileEvents, e)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var committed, deferred [8]uint32
	result := make([]Shard, 0, len(order))

	for i, idx := range order {
		s := byShard[idx]

		if len(s.CPUEvents) > 0 {
			s.Public.StartPC = s.CPUEvents[0].PC
			last := s.CPUEvents[len(s.CPUEvents)-1]
			s.Public.NextPC = last.NextPC
			if last.IsHalt {
				s.Public.ExitCode = lastExitCode(last)
			}
		}

		applyCommits(s.SyscallEvents, &committed, &deferred)
		s.Public.CommittedValuesDigest = committed
		s.Public.DeferredProofsDigest = deferred

		s.MemoryLocal = summarizeMemory(s.CPUEvents)

		s.Public.Shard = idx
		s.Public.FirstShardFlag = i == 0
		s.Public.LastShardFlag = i == len(order)-1

		result = append(result, *s)
	}

	if len(result) > 0 {
		result[0].Initialize = initializeEvents(log.InitialImage)
		last := len(result) - 1
		result[last].Finalize = finalizeEvents(log.FinalSnapshot, result[last].Index)
	}

	return result
}

// lastExitCode reconstructs the exit code committed by the HALT syscall
// that produced this terminal CPU event.
func lastExitCode(ev event.CpuEvent) uint32 {
	if ev.Syscall != nil {
		return ev.Syscall.Arg1
	}
	return 0
}

func applyCommits(evs []event.SyscallEvent, committed, deferred *[8]uint32) {
	for _, e := range evs {
		switch isa.SyscallCode(e.SyscallID) {
		case isa.SyscallCommit:
			if e.Arg1 < 8 {
				committed[e.Arg1] = e.Arg2
			}
		case isa.SyscallCommitDeferredProofs:
			if e.Arg1 < 8 {
				deferred[e.Arg1] = e.Arg2
			}
		}
	}
}

// summarizeMemory builds one MemoryLocalEvent per distinct address touched
// in this shard's CPU events, recording the earliest and latest access.
func summarizeMemory(cpuEvents []event.CpuEvent) []event.MemoryLocalEvent {
	type acc struct {
		initClk, finalClk     uint64
		initVal, finalVal     uint32
		seen                  bool
		shard                 uint32
	}
	byAddr := make(map[uint32]*acc)
	addrOrder := []uint32{}

	for _, ev := range cpuEvents {
		if !ev.IsMemory || ev.Memory == nil {
			continue
		}
		rec := ev.Memory
		a, ok := byAddr[rec.Addr]
		if !ok {
			a = &acc{initClk: rec.Clk, initVal: rec.Value, shard: rec.Shard}
			byAddr[rec.Addr] = a
			addrOrder = append(addrOrder, rec.Addr)
		}
		a.finalClk = rec.Clk
		a.finalVal = rec.Value
	}

	sort.Slice(addrOrder, func(i, j int) bool { return addrOrder[i] < addrOrder[j] })

	out := make([]event.MemoryLocalEvent, 0, len(addrOrder))
	for _, addr := range addrOrder {
		a := byAddr[addr]
		out = append(out, event.MemoryLocalEvent{
			Addr:         addr,
			Shard:        a.shard,
			InitialClk:   a.initClk,
			InitialValue: a.initVal,
			FinalClk:     a.finalClk,
			FinalValue:   a.finalVal,
		})
	}
	return out
}

func initializeEvents(image map[uint32]uint32) []event.MemoryInitializeFinalizeEvent {
	addrs := make([]uint32, 0, len(image))
	for addr := range image {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	out := make([]event.MemoryInitializeFinalizeEvent, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, event.MemoryInitializeFinalizeEvent{
			Addr: addr, Value: image[addr], Shard: 0, Clk: 0, IsInitialize: true,
		})
	}
	return out
}

func finalizeEvents(snapshot map[uint32]uint32, shard uint32) []event.MemoryInitializeFinalizeEvent {
	addrs := make([]uint32, 0, len(snapshot))
	for addr := range snapshot {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	out := make([]event.MemoryInitializeFinalizeEvent, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, event.MemoryInitializeFinalizeEvent{
			Addr: addr, Value: snapshot[addr], Shard: shard, IsInitialize: false,
		})
	}
	return out
}
