// Package vocab derives the sorted function and keyword vocabularies from
// a sequence of calls and indexes them for lookup.
package vocab

import (
	"sort"

	"github.com/bastiangx/kwserve/pkg/extract"
)

// Functions returns every distinct function name, sorted.
func Functions(calls []extract.Call) []string {
	seen := make(map[string]struct{}, len(calls))
	for _, c := range calls {
		seen[c.Function] = struct{}{}
	}
	return sortedKeys(seen)
}

// Keywords returns every distinct keyword name across all calls, sorted.
func Keywords(calls []extract.Call) []string {
	seen := make(map[string]struct{})
	for _, c := range calls {
		for _, kw := range c.Keywords {
			seen[kw] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Vocabulary is the pair of sorted name sets derived from one call
// sequence. It is read-only after New.
type Vocabulary struct {
	functions []string
	keywords  []string
	funcIdx   *Index
	kwIdx     *Index
}

// New derives both vocabularies from calls.
func New(calls []extract.Call) *Vocabulary {
	return FromNames(Functions(calls), Keywords(calls))
}

// FromNames wraps already sorted, deduplicated name lists.
func FromNames(functions, keywords []string) *Vocabulary {
	return &Vocabulary{
		functions: functions,
		keywords:  keywords,
		funcIdx:   NewIndex(functions),
		kwIdx:     NewIndex(keywords),
	}
}

// Functions returns the sorted function names. The slice must not be modified.
func (v *Vocabulary) Functions() []string { return v.functions }

// Keywords returns the sorted keyword names. The slice must not be modified.
func (v *Vocabulary) Keywords() []string { return v.keywords }

// FunctionIndex returns the position of name in Functions.
func (v *Vocabulary) FunctionIndex(name string) (int, bool) { return v.funcIdx.Lookup(name) }

// KeywordIndex returns the position of name in Keywords.
func (v *Vocabulary) KeywordIndex(name string) (int, bool) { return v.kwIdx.Lookup(name) }

// FunctionsWithPrefix lists function names starting with prefix, sorted.
func (v *Vocabulary) FunctionsWithPrefix(prefix string) []string {
	return v.funcIdx.WithPrefix(prefix)
}
