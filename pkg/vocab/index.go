package vocab

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index maps names to their position in a sorted vocabulary and answers
// prefix queries for completion.
type Index struct {
	trie *patricia.Trie
	size int
}

// NewIndex indexes names by position. Duplicate names keep the first position.
func NewIndex(names []string) *Index {
	ix := &Index{trie: patricia.NewTrie()}
	for i, name := range names {
		if !ix.trie.Insert(patricia.Prefix(name), i) {
			log.Debugf("Duplicate vocabulary entry %q ignored", name)
			continue
		}
		ix.size++
	}
	return ix
}

// Lookup returns the position stored for name.
func (ix *Index) Lookup(name string) (int, bool) {
	item := ix.trie.Get(patricia.Prefix(name))
	if item == nil {
		return 0, false
	}
	pos, ok := item.(int)
	return pos, ok
}

// Len returns the number of distinct indexed names.
func (ix *Index) Len() int { return ix.size }

// WithPrefix returns every indexed name starting with prefix, sorted.
// An empty prefix lists everything.
func (ix *Index) WithPrefix(prefix string) []string {
	var out []string
	err := ix.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		out = append(out, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting vocabulary subtree: %v", err)
		return nil
	}
	sort.Strings(out)
	return out
}
