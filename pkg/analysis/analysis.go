// Package analysis ties extraction, vocabulary and frequency modelling
// together: Train builds a model from one document, Analyze compares
// another document's keyword usage with it.
package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bastiangx/kwserve/pkg/extract"
	"github.com/bastiangx/kwserve/pkg/model"
	"github.com/bastiangx/kwserve/pkg/suggest"
)

// Usage pairs what a document did with one function and what the trained
// model recommends for it. A nil Trained means "no recommendation".
type Usage struct {
	Function string                   `json:"function" msgpack:"function"`
	Calls    int                      `json:"calls" msgpack:"calls"`
	Local    []suggest.Recommendation `json:"local" msgpack:"local"`
	Trained  []suggest.Recommendation `json:"trained" msgpack:"trained"`
}

// Report is the analysis of one document, one Usage per distinct function
// in sorted order.
type Report struct {
	Document string  `json:"document" msgpack:"document"`
	Prefix   string  `json:"prefix" msgpack:"prefix"`
	Usages   []Usage `json:"usages" msgpack:"usages"`
}

// Lookup returns the Usage for function.
func (r *Report) Lookup(function string) (Usage, bool) {
	i := sort.Search(len(r.Usages), func(i int) bool { return r.Usages[i].Function >= function })
	if i < len(r.Usages) && r.Usages[i].Function == function {
		return r.Usages[i], true
	}
	return Usage{}, false
}

// Train scans lines for prefix calls and builds the frequency model.
// There is no partial model: any error fails the whole training.
func Train(prefix string, lines []string, opts extract.Options) (*model.FrequencyModel, error) {
	calls := extract.Scan(prefix, lines, opts)
	m, err := model.FromCalls(calls)
	if err != nil {
		return nil, fmt.Errorf("training model: %w", err)
	}
	return m, nil
}

// Analyze builds a model of lines alone and, for every function it uses,
// reports the local recommendation next to the trained one. trained may be
// nil. Functions the trained model never saw get a nil Trained list.
func Analyze(prefix string, lines []string, trained suggest.Source, opts extract.Options) (*Report, error) {
	calls := extract.Scan(prefix, lines, opts)
	local, err := model.FromCalls(calls)
	if err != nil {
		return nil, fmt.Errorf("building local model: %w", err)
	}

	functions := local.Functions()
	report := &Report{Prefix: prefix, Usages: make([]Usage, 0, len(functions))}
	for _, fn := range functions {
		u := Usage{Function: fn}
		if u.Calls, err = local.Calls(fn); err != nil {
			return nil, err
		}
		if u.Local, err = suggest.Recommend(local, fn); err != nil {
			return nil, fmt.Errorf("local recommendation for %q: %w", fn, err)
		}
		if trained != nil {
			u.Trained, err = suggest.Recommend(trained, fn)
			switch {
			case errors.Is(err, model.ErrNotFound):
				u.Trained = nil
			case err != nil:
				return nil, fmt.Errorf("trained recommendation for %q: %w", fn, err)
			}
		}
		report.Usages = append(report.Usages, u)
	}
	return report, nil
}

// Truncate caps both recommendation lists of every usage at n (n <= 0 keeps all).
func (r *Report) Truncate(n int) {
	if n <= 0 {
		return
	}
	for i := range r.Usages {
		r.Usages[i].Local = suggest.Limit(r.Usages[i].Local, n)
		r.Usages[i].Trained = suggest.Limit(r.Usages[i].Trained, n)
	}
}
