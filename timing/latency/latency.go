// Package latency maps trace operation types to execution latencies.
package latency

// Table resolves the number of execute cycles for each operation type.
type Table struct {
	config *Config
}

// NewTable creates a Table with the default latencies.
func NewTable() *Table {
	return &Table{config: DefaultConfig()}
}

// NewTableWithConfig creates a Table backed by the given configuration.
func NewTableWithConfig(config *Config) *Table {
	return &Table{config: config}
}

// Config returns the configuration backing the table.
func (t *Table) Config() *Config {
	return t.config
}

// ForOpType returns the execute latency for an operation type. Types other
// than 0 and 1 take the type-2 latency, matching the trace format's
// three-way encoding.
func (t *Table) ForOpType(op int) int {
	switch op {
	case 0:
		return t.config.Type0Latency
	case 1:
		return t.config.Type1Latency
	default:
		return t.config.Type2Latency
	}
}
