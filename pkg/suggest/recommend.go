package suggest

import (
	"fmt"
	"sort"

	"github.com/bastiangx/kwserve/pkg/model"
)

// ErrNotFound is model.ErrNotFound, re-exported for callers that only
// deal with recommendations.
var ErrNotFound = model.ErrNotFound

// Recommendation is one keyword and the fraction of calls that used it.
type Recommendation struct {
	Keyword   string  `json:"keyword" msgpack:"k"`
	Frequency float64 `json:"frequency" msgpack:"f"`
}

// Recommend pairs function's row with the keyword vocabulary, sorts by
// descending frequency (ties keep vocabulary order) and drops zeros.
//
// A nil slice with a nil error means "no recommendation": the function is
// known but none of its keywords has a non-zero frequency.
func Recommend(src Source, function string) ([]Recommendation, error) {
	row, err := src.Row(function)
	if err != nil {
		return nil, err
	}
	keywords := src.Keywords()
	if len(row) != len(keywords) {
		return nil, fmt.Errorf("row for %q has %d entries, vocabulary has %d", function, len(row), len(keywords))
	}

	var recs []Recommendation
	for j, f := range row {
		if f == 0.0 {
			continue
		}
		recs = append(recs, Recommendation{Keyword: keywords[j], Frequency: f})
	}
	if len(recs) == 0 {
		return nil, nil
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].Frequency > recs[b].Frequency
	})
	return recs, nil
}

// Limit truncates recs to at most n entries; n <= 0 keeps everything.
func Limit(recs []Recommendation, n int) []Recommendation {
	if n > 0 && len(recs) > n {
		return recs[:n]
	}
	return recs
}

// Recommender binds a model to the IRecommender interface.
type Recommender struct {
	model *model.FrequencyModel
	limit int
}

// NewRecommender wraps m; limit caps every answer (0 = unlimited).
func NewRecommender(m *model.FrequencyModel, limit int) *Recommender {
	return &Recommender{model: m, limit: limit}
}

// Recommend ranks keywords for function.
func (r *Recommender) Recommend(function string) ([]Recommendation, error) {
	recs, err := Recommend(r.model, function)
	if err != nil {
		return nil, err
	}
	return Limit(recs, r.limit), nil
}

// Complete lists known function names starting with prefix.
func (r *Recommender) Complete(prefix string, limit int) []string {
	names := r.model.Vocabulary().FunctionsWithPrefix(prefix)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}

// Model returns the wrapped model.
func (r *Recommender) Model() *model.FrequencyModel { return r.model }
