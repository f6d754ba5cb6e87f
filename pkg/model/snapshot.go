package model

// Snapshot is a plain copy of a model's table for display and transport.
// It is not read back into a model.
type Snapshot struct {
	Functions []string    `json:"functions" msgpack:"functions"`
	Keywords  []string    `json:"keywords" msgpack:"keywords"`
	Counts    []int       `json:"counts" msgpack:"counts"`
	Table     [][]float64 `json:"table" msgpack:"table"`
}

// Snapshot copies the model into a Snapshot.
func (m *FrequencyModel) Snapshot() Snapshot {
	table := make([][]float64, len(m.table))
	for i, row := range m.table {
		table[i] = append([]float64(nil), row...)
	}
	return Snapshot{
		Functions: append([]string(nil), m.Functions()...),
		Keywords:  append([]string(nil), m.Keywords()...),
		Counts:    append([]int(nil), m.counts...),
		Table:     table,
	}
}
