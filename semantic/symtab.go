// Package semantic builds the symbol table and validates a translation
// unit: operand counts, addressing-mode compatibility, integer ranges, and
// identifier resolution.
package semantic

import "word15asm/parser"

// CellKind tags what a symbol table cell refers to.
type CellKind int

const (
	CellLabel CellKind = iota
	CellExternal
)

// Cell is one symbol table entry: a unique key, a variant tag, a
// non-owning reference into the translation unit, and whether it has
// already been emitted as an entry.
type Cell struct {
	Key      string
	Kind     CellKind
	Label    *parser.LabelNode
	External *parser.IdentNode
	Emitted  bool
}

// Table is an open-addressed hash table keyed by identifier text, using the
// djb2 hash and linear probing, sized ceil(n/0.75)+1 for an upper bound n of
// identifiers.
type Table struct {
	slots []*Cell
	count int
}

// NewTable allocates a table sized for up to n identifiers.
func NewTable(n int) *Table {
	cap := (n*4+2)/3 + 1
	if cap < 1 {
		cap = 1
	}
	return &Table{slots: make([]*Cell, cap)}
}

// djb2 hashes s starting from 5381, folding each byte as h = h*33 + b.
func djb2(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 + uint64(s[i])
	}
	return h
}

func (t *Table) slotFor(key string) int {
	return int(djb2(key) % uint64(len(t.slots)))
}

// Lookup finds the cell for key, walking linearly from its hashed slot and
// wrapping once around the table.
func (t *Table) Lookup(key string) (*Cell, bool) {
	n := len(t.slots)
	start := t.slotFor(key)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		cell := t.slots[idx]
		if cell == nil {
			return nil, false
		}
		if cell.Key == key {
			return cell, true
		}
	}
	return nil, false
}

// Insert places cell at its hashed slot, probing linearly on collision.
// Reports false if the table is full (should not happen given the sizing
// contract) or the key already exists.
func (t *Table) Insert(cell *Cell) bool {
	if _, exists := t.Lookup(cell.Key); exists {
		return false
	}
	n := len(t.slots)
	start := t.slotFor(cell.Key)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if t.slots[idx] == nil {
			t.slots[idx] = cell
			t.count++
			return true
		}
	}
	return false
}

// Len returns the number of cells inserted.
func (t *Table) Len() int {
	return t.count
}
