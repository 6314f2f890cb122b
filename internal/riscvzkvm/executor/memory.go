package executor

import "github.com/vybium/riscv-zkvm/internal/riscvzkvm/event"

// word is the executor's bookkeeping for one memory cell: the value
// currently stored there and the (shard, clk) of the access that produced
// it, so the next access can record a well-formed MemoryRecord.
type word struct {
	value uint32
	shard uint32
	clk   uint64
}

// Memory is the 32-bit word-addressed address space owned exclusively by
// the Executor. Addresses are stored sparsely; an address with no prior
// write or image entry reads as zero.
type Memory struct {
	cells map[uint32]word
}

// NewMemory creates an empty memory, pre-populated from a program's
// read-only initial image.
func NewMemory(image map[uint32]uint32) *Memory {
	m := &Memory{cells: make(map[uint32]word, len(image))}
	for addr, v := range image {
		m.cells[addr] = word{value: v}
	}
	return m
}

// ReadWord returns the current value at addr and the MemoryRecord
// describing the access (previous (shard, clk, value) vs the access's own).
func (m *Memory) ReadWord(addr uint32, shard uint32, clk uint64) (uint32, event.MemoryRecord) {
	w := m.cells[addr]
	rec := event.MemoryRecord{
		Addr:      addr,
		PrevShard: w.shard,
		PrevClk:   w.clk,
		PrevValue: w.value,
		Shard:     shard,
		Clk:       clk,
		Value:     w.value,
		IsWrite:   false,
	}
	m.cells[addr] = word{value: w.value, shard: shard, clk: clk}
	return w.value, rec
}

// WriteWord stores value at addr, returning the MemoryRecord describing the
// access.
func (m *Memory) WriteWord(addr uint32, value uint32, shard uint32, clk uint64) event.MemoryRecord {
	w := m.cells[addr]
	rec := event.MemoryRecord{
		Addr:      addr,
		PrevShard: w.shard,
		PrevClk:   w.clk,
		PrevValue: w.value,
		Shard:     shard,
		Clk:       clk,
		Value:     value,
		IsWrite:   true,
	}
	m.cells[addr] = word{value: value, shard: shard, clk: clk}
	return rec
}

// WriteSubword performs a read-modify-write of the word-aligned cell
// containing addr, replacing only the `width` bytes (1 or 2) starting at
// addr's byte offset within the word. This still counts as exactly one
// Memory access for the instruction, per the executor's memory-staging
// contract: the record's PrevValue/Value are the full aligned words before
// and after, not the narrow sub-word slice.
func (m *Memory) WriteSubword(addr uint32, width int, value uint32, shard uint32, clk uint64) event.MemoryRecord {
	aligned := addr &^ 3
	offset := (addr & 3) * 8
	w := m.cells[aligned]

	mask := uint32(0)
	switch width {
	case 1:
		mask = 0xff << offset
	case 2:
		mask = 0xffff << offset
	default:
		mask = 0xffffffff
	}
	newVal := (w.value &^ mask) | ((value << offset) & mask)

	rec := event.MemoryRecord{
		Addr:      aligned,
		PrevShard: w.shard,
		PrevClk:   w.clk,
		PrevValue: w.value,
		Shard:     shard,
		Clk:       clk,
		Value:     newVal,
		IsWrite:   true,
	}
	m.cells[aligned] = word{value: newVal, shard: shard, clk: clk}
	return rec
}

// Snapshot returns the full set of touched addresses and their current
// values, used by the shard packer to build global initialize/finalize
// events at the first/last shard boundaries.
func (m *Memory) Snapshot() map[uint32]uint32 {
	out := make(map[uint32]uint32, len(m.cells))
	for addr, w := range m.cells {
		out[addr] = w.value
	}
	return out
}
