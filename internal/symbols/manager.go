package symbols

import (
	"cmp"
	"slices"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Entry is an exported symbol.
type Entry struct {
	Name     string // sanitized name
	Original string // name in the listing
	Address  uint32
}

// Renamed returns whether the sanitized name differs from the original one.
func (e Entry) Renamed() bool {
	return e.Name != e.Original
}

// Manager collects the exported symbols and tracks the used names.
type Manager struct {
	logger *log.Logger

	entries []Entry
	names   set.Set[string]
}

// NewManager creates a new symbol manager.
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger: logger,
		names:  set.New[string](),
	}
}

// Add adds a symbol and returns whether it was exported. Linker symbols,
// names that are empty after sanitizing and duplicate names are skipped.
func (m *Manager) Add(sym Symbol) bool {
	if IsLinkerSymbol(sym.Name) {
		return false
	}

	name := SanitizeName(sym.Name)
	if name == "" {
		return false
	}
	if m.names.Contains(name) {
		m.logger.Warn("Skipping duplicate symbol",
			log.String("name", name),
			log.String("original", sym.Name))
		return false
	}
	m.names.Add(name)

	m.entries = append(m.entries, Entry{
		Name:     name,
		Original: sym.Name,
		Address:  sym.Address,
	})
	return true
}

// AddAll adds the symbols ordered by address. Of duplicate names the one
// with the lowest address wins.
func (m *Manager) AddAll(symbols []Symbol) {
	sorted := slices.Clone(symbols)
	slices.SortStableFunc(sorted, func(a, b Symbol) int {
		return cmp.Compare(a.Address, b.Address)
	})
	for _, sym := range sorted {
		m.Add(sym)
	}
}

// Has returns whether a symbol with the sanitized name was exported.
func (m *Manager) Has(name string) bool {
	return m.names.Contains(name)
}

// Len returns the number of exported symbols.
func (m *Manager) Len() int {
	return len(m.entries)
}

// Entries returns the exported symbols in the order they were added.
func (m *Manager) Entries() []Entry {
	return slices.Clone(m.entries)
}
