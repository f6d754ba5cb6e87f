// Package suggest ranks the keywords a frequency model associates with a function.
package suggest

// Source is anything that can hand out a keyword-aligned frequency row
// for a function. *model.FrequencyModel implements it; a sparse table
// with the same contract works too.
type Source interface {
	// Keywords returns the keyword vocabulary that rows are aligned with.
	Keywords() []string

	// Row returns the frequencies for function, or an error wrapping
	// model.ErrNotFound when the function is unknown.
	Row(function string) ([]float64, error)
}

// IRecommender is what the servers and the CLI query.
type IRecommender interface {
	// Recommend returns ranked keywords for function, nil when there are none.
	Recommend(function string) ([]Recommendation, error)

	// Complete lists known function names starting with prefix.
	Complete(prefix string, limit int) []string
}
