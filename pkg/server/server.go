package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the msgpack IPC loop.
type Server struct {
	svc      *Service
	decoder  *msgpack.Decoder
	encoder  *msgpack.Encoder
	mu       sync.Mutex
	requests int
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(svc *Service) *Server {
	return NewServerWithIO(svc, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing
// responses to w.
func NewServerWithIO(svc *Service, r io.Reader, w io.Writer) *Server {
	return &Server{
		svc:     svc,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
	}
}

// Start signals readiness and then serves requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting IPC server")

	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debugf("IPC input closed after %d requests", s.requests)
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return fmt.Errorf("decoding request: %w", err)
		}
		s.requests++
		if err := s.handleRequest(req); err != nil {
			return err
		}
	}
}

// Requests returns how many requests were handled.
func (s *Server) Requests() int { return s.requests }

func (s *Server) handleRequest(req Request) error {
	start := time.Now()

	switch req.Action {
	case ActionRecommend:
		recs, err := s.svc.Recommend(req.Function, req.Limit)
		if err != nil {
			return s.sendError(req.ID, err)
		}
		return s.send(RecommendResponse{
			ID:          req.ID,
			Function:    req.Function,
			Suggestions: recs,
			Count:       len(recs),
			TimeTaken:   time.Since(start).Microseconds(),
		})
	case ActionComplete:
		names, err := s.svc.Complete(req.Prefix, req.Limit)
		if err != nil {
			return s.sendError(req.ID, err)
		}
		return s.send(CompleteResponse{
			ID:        req.ID,
			Functions: names,
			Count:     len(names),
			TimeTaken: time.Since(start).Microseconds(),
		})
	case ActionAnalyze:
		report, err := s.svc.Analyze(req.Lines)
		if err != nil {
			return s.sendError(req.ID, err)
		}
		return s.send(AnalyzeResponse{ID: req.ID, Report: report, TimeTaken: time.Since(start).Microseconds()})
	case ActionTrain:
		resp, err := s.svc.Train(req.Path, req.Reload)
		if err != nil {
			return s.sendError(req.ID, err)
		}
		resp.ID = req.ID
		return s.send(resp)
	case ActionModel:
		snap, stats, err := s.svc.Snapshot()
		if err != nil {
			return s.sendError(req.ID, err)
		}
		return s.send(ModelResponse{ID: req.ID, Model: snap, Stats: stats})
	case ActionHealth:
		return s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Errorf("%w: unknown action %q", ErrInvalidRequest, req.Action))
	}
}

func (s *Server) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(v); err != nil {
		log.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encoding response: %w", err)
	}
	return nil
}

func (s *Server) sendError(id string, err error) error {
	code := errorCode(err)
	log.Debugf("Request %s failed (%d): %v", id, code, err)
	return s.send(ErrorResponse{ID: id, Error: err.Error(), Code: code})
}
