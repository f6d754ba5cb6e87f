package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/kwserve/internal/logger"
	"github.com/bastiangx/kwserve/pkg/extract"
	"github.com/bastiangx/kwserve/pkg/model"
	"github.com/bastiangx/kwserve/pkg/prefix"
	"github.com/bastiangx/kwserve/pkg/source"
)

// ErrNotTrained is returned when analysis is requested before any model
// was trained or set.
var ErrNotTrained = errors.New("no trained model")

// DefaultWorkers bounds AnalyzeFiles when Options.Workers is not set.
const DefaultWorkers = 4

// Options configures an Orchestrator.
type Options struct {
	Prefix       string
	DetectPrefix bool
	ImportModule string
	Extract      extract.Options
	Limit        int
	Workers      int
}

// DocumentResult is the outcome of analyzing one document. Err is set
// instead of Report when the document could not be read or analyzed.
type DocumentResult struct {
	Path   string
	Report *Report
	Err    error
}

// Orchestrator trains once and then analyzes any number of documents
// against the shared model.
type Orchestrator struct {
	opts    Options
	reader  source.Reader
	trained atomic.Pointer[model.FrequencyModel]
	log     *log.Logger
}

// New creates an orchestrator reading documents through reader
// (source.FileReader when nil).
func New(opts Options, reader source.Reader) *Orchestrator {
	if reader == nil {
		reader = source.FileReader{}
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Orchestrator{opts: opts, reader: reader, log: logger.New("analysis")}
}

// Options returns the orchestrator's configuration.
func (o *Orchestrator) Options() Options { return o.opts }

// Model returns the trained model, or nil.
func (o *Orchestrator) Model() *model.FrequencyModel { return o.trained.Load() }

// SetModel replaces the trained model. Analyses already running keep the
// model they started with.
func (o *Orchestrator) SetModel(m *model.FrequencyModel) { o.trained.Store(m) }

// PrefixFor resolves the call prefix used for a document's lines.
func (o *Orchestrator) PrefixFor(lines []string) string {
	return prefix.Resolve(lines, o.opts.Prefix, o.opts.DetectPrefix, o.opts.ImportModule)
}

// TrainFile reads path, trains a model from it and makes it the current one.
func (o *Orchestrator) TrainFile(path string) (*model.FrequencyModel, error) {
	m, err := o.TrainFileDetached(path)
	if err != nil {
		return nil, err
	}
	o.SetModel(m)
	return m, nil
}

// TrainFileDetached trains from path without touching the current model.
func (o *Orchestrator) TrainFileDetached(path string) (*model.FrequencyModel, error) {
	lines, err := o.reader.ReadLines(path)
	if err != nil {
		return nil, err
	}
	return o.TrainLines(lines)
}

// TrainLines trains from lines already in memory without storing the result.
func (o *Orchestrator) TrainLines(lines []string) (*model.FrequencyModel, error) {
	p := o.PrefixFor(lines)
	m, err := Train(p, lines, o.opts.Extract)
	if err != nil {
		return nil, err
	}
	stats := m.Stats()
	o.log.Debug("Trained model", "prefix", p, "functions", stats["functions"], "keywords", stats["keywords"], "calls", stats["calls"])
	return m, nil
}

// AnalyzeFile analyzes one document against the current model.
func (o *Orchestrator) AnalyzeFile(path string) (*Report, error) {
	lines, err := o.reader.ReadLines(path)
	if err != nil {
		return nil, err
	}
	r, err := o.AnalyzeLines(lines)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	r.Document = path
	return r, nil
}

// AnalyzeLines analyzes lines already in memory against the current model.
func (o *Orchestrator) AnalyzeLines(lines []string) (*Report, error) {
	trained := o.Model()
	if trained == nil {
		return nil, ErrNotTrained
	}
	r, err := Analyze(o.PrefixFor(lines), lines, trained, o.opts.Extract)
	if err != nil {
		return nil, err
	}
	r.Truncate(o.opts.Limit)
	return r, nil
}

// AnalyzeFiles analyzes paths in parallel, at most Options.Workers at a
// time. Results come back in the order of paths; a failing document only
// sets its own Err. Documents not started before ctx is done get ctx's error.
func (o *Orchestrator) AnalyzeFiles(ctx context.Context, paths []string) []DocumentResult {
	results := make([]DocumentResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			r, err := o.AnalyzeFile(path)
			if err != nil {
				o.log.Warn("Document failed", "path", path, "err", err)
				results[i].Err = err
				return nil
			}
			results[i].Report = r
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Run analyzes paths and writes every result to sink in input order. It
// returns the number of failed documents; err is only set when the sink
// itself fails.
func (o *Orchestrator) Run(ctx context.Context, paths []string, sink Sink) (failed int, err error) {
	for _, res := range o.AnalyzeFiles(ctx, paths) {
		if res.Err != nil {
			failed++
		}
		if err := sink.Write(res); err != nil {
			return failed, fmt.Errorf("writing result for %s: %w", res.Path, err)
		}
	}
	return failed, nil
}
