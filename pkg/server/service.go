package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bastiangx/kwserve/internal/logger"
	"github.com/bastiangx/kwserve/internal/utils"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/model"
	"github.com/bastiangx/kwserve/pkg/suggest"
)

const (
	maxNameLen   = 128
	defaultLimit = 10
)

// ErrInvalidRequest marks client mistakes (bad names, missing fields).
var ErrInvalidRequest = errors.New("invalid request")

// Service answers queries against the orchestrator's current model. It is
// safe for concurrent use; a train swaps the model atomically.
type Service struct {
	orch  *analysis.Orchestrator
	cache *lru.Cache[string, *model.FrequencyModel]
	limit int
	log   *log.Logger
}

// NewService wraps orch. cacheSize bounds the number of models kept from
// train requests; limit caps recommendations when a request sets none.
func NewService(orch *analysis.Orchestrator, cacheSize, limit int) (*Service, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *model.FrequencyModel](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating model cache: %w", err)
	}
	return &Service{orch: orch, cache: cache, limit: limit, log: logger.New("server")}, nil
}

func (s *Service) recommender(limit int) (suggest.IRecommender, error) {
	m := s.orch.Model()
	if m == nil {
		return nil, analysis.ErrNotTrained
	}
	if limit <= 0 {
		limit = s.limit
	}
	return suggest.NewRecommender(m, limit), nil
}

// Recommend ranks keywords for function.
func (s *Service) Recommend(function string, limit int) ([]Suggestion, error) {
	if !utils.IsLookupName(function, maxNameLen) {
		return nil, fmt.Errorf("%w: function name %q", ErrInvalidRequest, function)
	}
	r, err := s.recommender(limit)
	if err != nil {
		return nil, err
	}
	recs, err := r.Recommend(function)
	if err != nil {
		return nil, err
	}
	ranks := utils.CreateRankList(len(recs))
	out := make([]Suggestion, len(recs))
	for i, rec := range recs {
		out[i] = Suggestion{Keyword: rec.Keyword, Frequency: rec.Frequency, Rank: ranks[i]}
	}
	return out, nil
}

// Complete lists known function names starting with prefix.
func (s *Service) Complete(prefix string, limit int) ([]string, error) {
	if prefix != "" && !utils.IsLookupName(prefix, maxNameLen) {
		return nil, fmt.Errorf("%w: prefix %q", ErrInvalidRequest, prefix)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	r, err := s.recommender(0)
	if err != nil {
		return nil, err
	}
	return r.Complete(prefix, limit), nil
}

// Analyze compares lines with the current model.
func (s *Service) Analyze(lines []string) (*analysis.Report, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines to analyze", ErrInvalidRequest)
	}
	return s.orch.AnalyzeLines(lines)
}

// Snapshot returns the current model's table and size.
func (s *Service) Snapshot() (model.Snapshot, map[string]int, error) {
	m := s.orch.Model()
	if m == nil {
		return model.Snapshot{}, nil, analysis.ErrNotTrained
	}
	return m.Snapshot(), m.Stats(), nil
}

// Train switches to a model trained from path, reusing a cached one unless
// reload is set. The previous model stays in place if training fails.
func (s *Service) Train(path string, reload bool) (*TrainResponse, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: missing path", ErrInvalidRequest)
	}
	key, err := filepath.Abs(path)
	if err != nil {
		key = path
	}

	m, cached := s.cache.Get(key)
	if !cached || reload {
		m, err = s.orch.TrainFileDetached(path)
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, m)
		cached = false
	}
	s.orch.SetModel(m)
	s.log.Debug("Model switched", "path", key, "cached", cached)

	return &TrainResponse{
		Status:    "ok",
		Path:      key,
		Cached:    cached,
		Functions: len(m.Functions()),
		Keywords:  len(m.Keywords()),
	}, nil
}

// Remember puts an already trained model into the cache under path.
func (s *Service) Remember(path string, m *model.FrequencyModel) {
	if key, err := filepath.Abs(path); err == nil {
		path = key
	}
	s.cache.Add(path, m)
}

// errorCode maps an error to the code used by both transports.
func errorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrNotTrained):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
