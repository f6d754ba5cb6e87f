// Package model builds the function x keyword frequency table.
//
// Entry [i][j] of the table is the fraction of calls to function i that
// carried keyword j. Models are immutable once built and safe for
// concurrent readers.
package model

import (
	"errors"
	"fmt"

	"github.com/bastiangx/kwserve/pkg/extract"
	"github.com/bastiangx/kwserve/pkg/vocab"
)

var (
	// ErrNotFound is returned for a function or keyword outside the model's vocabulary.
	ErrNotFound = errors.New("not found in vocabulary")
	// ErrDivisionByZero is returned when a vocabulary function has no recorded calls.
	ErrDivisionByZero = errors.New("function has zero recorded calls")
)

// FrequencyModel is the normalised co-occurrence table of one call sequence.
type FrequencyModel struct {
	vocab  *vocab.Vocabulary
	table  [][]float64
	counts []int
}

// Build counts keyword occurrences per function and normalises every row
// by that function's call count. A keyword repeated inside one call counts
// once for that call, so every entry stays within [0,1].
//
// functions and keywords must be sorted and deduplicated (see package vocab).
// A call naming anything outside them fails with ErrNotFound, and a function
// that no call uses fails with ErrDivisionByZero.
func Build(functions, keywords []string, calls []extract.Call) (*FrequencyModel, error) {
	v := vocab.FromNames(functions, keywords)

	table := make([][]float64, len(functions))
	for i := range table {
		table[i] = make([]float64, len(keywords))
	}
	counts := make([]int, len(functions))
	// seenIn[j] holds 1+index of the last call that counted keyword j, so a
	// keyword repeated inside one call counts once and entries stay in [0,1].
	seenIn := make([]int, len(keywords))

	for n, call := range calls {
		fi, ok := v.FunctionIndex(call.Function)
		if !ok {
			return nil, fmt.Errorf("function %q: %w", call.Function, ErrNotFound)
		}
		counts[fi]++
		for _, kw := range call.Keywords {
			ki, ok := v.KeywordIndex(kw)
			if !ok {
				return nil, fmt.Errorf("keyword %q of function %q: %w", kw, call.Function, ErrNotFound)
			}
			if seenIn[ki] == n+1 {
				continue
			}
			seenIn[ki] = n + 1
			table[fi][ki]++
		}
	}

	for i, row := range table {
		if counts[i] == 0 {
			return nil, fmt.Errorf("normalising %q: %w", functions[i], ErrDivisionByZero)
		}
		n := float64(counts[i])
		for j := range row {
			row[j] /= n
		}
	}

	return &FrequencyModel{vocab: v, table: table, counts: counts}, nil
}

// FromCalls derives the vocabulary from calls and builds the model.
func FromCalls(calls []extract.Call) (*FrequencyModel, error) {
	return Build(vocab.Functions(calls), vocab.Keywords(calls), calls)
}

// Functions returns the sorted function vocabulary.
func (m *FrequencyModel) Functions() []string { return m.vocab.Functions() }

// Keywords returns the sorted keyword vocabulary.
func (m *FrequencyModel) Keywords() []string { return m.vocab.Keywords() }

// Vocabulary exposes the model's index, e.g. for completion.
func (m *FrequencyModel) Vocabulary() *vocab.Vocabulary { return m.vocab }

// Row returns a copy of function's frequencies, aligned with Keywords.
func (m *FrequencyModel) Row(function string) ([]float64, error) {
	i, ok := m.vocab.FunctionIndex(function)
	if !ok {
		return nil, fmt.Errorf("function %q: %w", function, ErrNotFound)
	}
	row := make([]float64, len(m.table[i]))
	copy(row, m.table[i])
	return row, nil
}

// Frequency returns the fraction of function's calls that used keyword.
func (m *FrequencyModel) Frequency(function, keyword string) (float64, error) {
	i, ok := m.vocab.FunctionIndex(function)
	if !ok {
		return 0, fmt.Errorf("function %q: %w", function, ErrNotFound)
	}
	j, ok := m.vocab.KeywordIndex(keyword)
	if !ok {
		return 0, fmt.Errorf("keyword %q: %w", keyword, ErrNotFound)
	}
	return m.table[i][j], nil
}

// Calls returns how many calls of function the model was built from.
func (m *FrequencyModel) Calls(function string) (int, error) {
	i, ok := m.vocab.FunctionIndex(function)
	if !ok {
		return 0, fmt.Errorf("function %q: %w", function, ErrNotFound)
	}
	return m.counts[i], nil
}

// Stats summarises the model size.
func (m *FrequencyModel) Stats() map[string]int {
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return map[string]int{
		"functions": len(m.counts),
		"keywords":  len(m.vocab.Keywords()),
		"calls":     total,
	}
}
