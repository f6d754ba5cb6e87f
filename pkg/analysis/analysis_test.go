package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/kwserve/pkg/extract"
	"github.com/bastiangx/kwserve/pkg/source"
	"github.com/bastiangx/kwserve/pkg/suggest"
)

var trainingLines = []string{
	"plt.plot(x,y,markersize=20)",
	"plt.plot(x,y,linewidth=2)",
	"plt.plot(x,y,markersize=5)",
}

func TestTrainScenario(t *testing.T) {
	m, err := Train("plt", trainingLines, extract.Options{})
	require.NoError(t, err)

	recs, err := suggest.Recommend(m, "plot")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "markersize", recs[0].Keyword)
	assert.InDelta(t, 0.667, recs[0].Frequency, 0.001)
	assert.Equal(t, "linewidth", recs[1].Keyword)
	assert.InDelta(t, 0.333, recs[1].Frequency, 0.001)
}

func TestAnalyzeUnknownFunction(t *testing.T) {
	m, err := Train("plt", trainingLines, extract.Options{})
	require.NoError(t, err)

	report, err := Analyze("plt", []string{"plt.scatter(x,y,alpha=0.5)"}, m, extract.Options{})
	require.NoError(t, err)

	u, ok := report.Lookup("scatter")
	require.True(t, ok)
	assert.Equal(t, 1, u.Calls)
	assert.Equal(t, []suggest.Recommendation{{Keyword: "alpha", Frequency: 1.0}}, u.Local)
	assert.Nil(t, u.Trained)
}

func TestAnalyzeKnownFunction(t *testing.T) {
	m, err := Train("plt", trainingLines, extract.Options{})
	require.NoError(t, err)

	lines := []string{
		"import matplotlib.pyplot as plt",
		"plt.plot(a, b, color='r')",
		"plt.show()",
	}
	report, err := Analyze("plt", lines, m, extract.Options{})
	require.NoError(t, err)

	var names []string
	for _, u := range report.Usages {
		names = append(names, u.Function)
	}
	assert.Equal(t, []string{"plot", "show"}, names)

	plot, _ := report.Lookup("plot")
	assert.Equal(t, []suggest.Recommendation{{Keyword: "color", Frequency: 1.0}}, plot.Local)
	require.Len(t, plot.Trained, 2)
	assert.Equal(t, "markersize", plot.Trained[0].Keyword)

	show, _ := report.Lookup("show")
	assert.Nil(t, show.Local)
	assert.Nil(t, show.Trained)

	_, ok := report.Lookup("figure")
	assert.False(t, ok)
}

func TestAnalyzeWithoutTrainedModel(t *testing.T) {
	report, err := Analyze("plt", []string{"plt.plot(x, lw=1)"}, nil, extract.Options{})
	require.NoError(t, err)
	require.Len(t, report.Usages, 1)
	assert.Nil(t, report.Usages[0].Trained)
}

func TestTrainEmptyDocument(t *testing.T) {
	m, err := Train("plt", []string{"x = 1", ""}, extract.Options{})
	require.NoError(t, err)
	assert.Empty(t, m.Functions())
	assert.Empty(t, m.Keywords())
}

func TestReportTruncate(t *testing.T) {
	m, err := Train("plt", trainingLines, extract.Options{})
	require.NoError(t, err)
	report, err := Analyze("plt", []string{"plt.plot(x, a=1, b=2, c=3)"}, m, extract.Options{})
	require.NoError(t, err)

	report.Truncate(1)
	u, _ := report.Lookup("plot")
	assert.Len(t, u.Local, 1)
	assert.Len(t, u.Trained, 1)
}

func newTestOrchestrator(t *testing.T, opts Options) (*Orchestrator, *source.MemoryReader) {
	t.Helper()
	reader := source.NewMemoryReader(map[string]string{
		"train.py": strings.Join(trainingLines, "\n"),
	})
	o := New(opts, reader)
	_, err := o.TrainFile("train.py")
	require.NoError(t, err)
	return o, reader
}

func TestOrchestratorAnalyzeFile(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt"})
	reader.Put("doc.py", "plt.scatter(x,y,alpha=0.5)\n")

	report, err := o.AnalyzeFile("doc.py")
	require.NoError(t, err)
	assert.Equal(t, "doc.py", report.Document)
	assert.Equal(t, "plt", report.Prefix)
	require.Len(t, report.Usages, 1)
	assert.Nil(t, report.Usages[0].Trained)
}

func TestOrchestratorNotTrained(t *testing.T) {
	o := New(Options{}, source.NewMemoryReader(map[string]string{"doc.py": "plt.plot(x)"}))
	_, err := o.AnalyzeFile("doc.py")
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestOrchestratorTrainMissing(t *testing.T) {
	o := New(Options{}, source.NewMemoryReader(nil))
	_, err := o.TrainFile("nope.py")

	var readErr *source.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Nil(t, o.Model())
}

func TestOrchestratorDetectPrefix(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt", DetectPrefix: true})
	reader.Put("alias.py", "import matplotlib.pyplot as mp\nmp.plot(x, linewidth=3)\n")

	report, err := o.AnalyzeFile("alias.py")
	require.NoError(t, err)
	assert.Equal(t, "mp", report.Prefix)
	u, ok := report.Lookup("plot")
	require.True(t, ok)
	assert.Equal(t, "linewidth", u.Local[0].Keyword)
}

func TestAnalyzeFilesKeepsOrderAndErrors(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt", Workers: 3})

	var paths []string
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("doc%02d.py", i)
		if i%5 == 0 {
			name = fmt.Sprintf("missing%02d.py", i)
		} else {
			reader.Put(name, fmt.Sprintf("plt.plot(x, k%d=1)", i))
		}
		paths = append(paths, name)
	}

	results := o.AnalyzeFiles(context.Background(), paths)
	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		if i%5 == 0 {
			assert.Error(t, res.Err)
			assert.Nil(t, res.Report)
			continue
		}
		require.NoError(t, res.Err)
		u, ok := res.Report.Lookup("plot")
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("k%d", i), u.Local[0].Keyword)
		assert.Len(t, u.Trained, 2)
	}
}

func TestAnalyzeFilesCancelled(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt"})
	reader.Put("doc.py", "plt.plot(x)")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := o.AnalyzeFiles(ctx, []string{"doc.py", "doc.py"})
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestRunJSONSink(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt"})
	reader.Put("a.py", "plt.plot(x, markersize=1)")

	var buf bytes.Buffer
	failed, err := o.Run(context.Background(), []string{"a.py", "b.py"}, NewJSONSink(&buf))
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	dec := json.NewDecoder(&buf)
	var first, second Record
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, "a.py", first.Path)
	require.NotNil(t, first.Report)
	assert.Empty(t, first.Error)
	assert.Equal(t, "b.py", second.Path)
	assert.Nil(t, second.Report)
	assert.NotEmpty(t, second.Error)
}

func TestRunMsgpackSink(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt"})
	reader.Put("a.py", "plt.plot(x, markersize=1)")

	var buf bytes.Buffer
	_, err := o.Run(context.Background(), []string{"a.py"}, NewMsgpackSink(&buf))
	require.NoError(t, err)

	var rec Record
	require.NoError(t, msgpack.NewDecoder(&buf).Decode(&rec))
	require.NotNil(t, rec.Report)
	u, ok := rec.Report.Lookup("plot")
	require.True(t, ok)
	assert.Equal(t, "markersize", u.Trained[0].Keyword)
}

func TestRunSinkError(t *testing.T) {
	o, reader := newTestOrchestrator(t, Options{Prefix: "plt"})
	reader.Put("a.py", "plt.plot(x)")

	boom := errors.New("boom")
	_, err := o.Run(context.Background(), []string{"a.py"}, SinkFunc(func(DocumentResult) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

func TestNewSink(t *testing.T) {
	_, err := NewSink("json", &bytes.Buffer{})
	assert.NoError(t, err)
	_, err = NewSink("msgpack", &bytes.Buffer{})
	assert.NoError(t, err)
	_, err = NewSink("yaml", &bytes.Buffer{})
	assert.Error(t, err)
}
