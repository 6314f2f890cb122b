package trace

import (
	"sort"

	vcfield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/riscv-zkvm/internal/riscvzkvm/core"
)

// ShardTrace adapts one table into the protocols.ExecutionTrace interface
// the STARK prover/verifier consume (GetPaddedHeight/GetTableData/
// GetTraceColumns). Triton VM's MasterMainTable expects every committed
// column to share one padded height because all of its tables are
// cycle-aligned -- processor, op-stack, jump-stack, and RAM each have
// exactly one row per VM cycle. The per-opcode tables here do not share
// that invariant (a shard with zero MUL instructions has a zero-height Mul
// table), so only the CPU table -- the one table whose height always
// equals the shard's cycle count -- is committed to the polynomial IOP.
// The ALU/memory/syscall/program tables and their lookup messages are built
// by their own constructors, but nothing on the proving or verification
// path (protocols.Prover, protocols.Verifier, pkg/riscvzkvm) absorbs those
// messages into a lookup bus or checks its balance.
type ShardTrace struct {
	table   ExecutionTable
	columns []string
}

// NewShardTrace pads table to its own padded height and fixes a stable
// column ordering for GetTraceColumns.
func NewShardTrace(table ExecutionTable) *ShardTrace {
	table.Pad(table.GetPaddedHeight())
	rows := table.Rows()
	var names []string
	if len(rows) > 0 {
		names = columnNames(rows[0])
	}
	return &ShardTrace{table: table, columns: names}
}

func (t *ShardTrace) GetPaddedHeight() int { return t.table.GetPaddedHeight() }

func (t *ShardTrace) GetTableData() interface{} { return t.table }

// GetTraceColumns converts the table's core.FieldElement rows into
// vybium-crypto field.Element columns, the representation the prover's
// MasterTable operates on.
func (t *ShardTrace) GetTraceColumns() ([][]vcfield.Element, error) {
	rows := t.table.Rows()
	cols := make([][]vcfield.Element, len(t.columns))
	for i, name := range t.columns {
		col := make([]vcfield.Element, len(rows))
		for r, row := range rows {
			col[r] = toVCField(row[name])
		}
		cols[i] = col
	}
	return cols, nil
}

func columnNames(row Row) []string {
	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toVCField(e *core.FieldElement) vcfield.Element {
	if e == nil {
		return vcfield.New(0)
	}
	return vcfield.New(e.Big().Uint64())
}
