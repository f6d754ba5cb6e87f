package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/kwserve/internal/cli"
	"github.com/bastiangx/kwserve/pkg/analysis"
	"github.com/bastiangx/kwserve/pkg/model"
	"github.com/bastiangx/kwserve/pkg/server"
)

type fixture struct {
	dir    string
	train  string
	doc    string
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KWSERVE_PREFIX", "")
	t.Setenv("KWSERVE_FORMAT", "")

	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		train:  filepath.Join(dir, "train.py"),
		doc:    filepath.Join(dir, "doc.py"),
		config: filepath.Join(dir, "config.toml"),
	}
	require.NoError(t, os.WriteFile(f.train, []byte("plt.plot(x,y,markersize=20)\nplt.plot(x,y,linewidth=2)\nplt.plot(x,y,markersize=5)\n"), 0o644))
	require.NoError(t, os.WriteFile(f.doc, []byte("plt.scatter(x,y,alpha=0.5)\n"), 0o644))
	require.NoError(t, os.WriteFile(f.config, []byte("[extract]\nprefix = \"plt\"\n"), 0o644))
	return f
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, "", "--config", f.config, "analyze", f.train, f.doc)
	require.NoError(t, err)
	assert.Contains(t, out, "You used function scatter with keywords and frequency:\nalpha  1.000\n")
	assert.Contains(t, out, "We recommend these keywords with frequency:\nNone!\n")
}

func TestAnalyzeJSONWithMissingDocument(t *testing.T) {
	f := newFixture(t)
	missing := filepath.Join(f.dir, "missing.py")
	out, err := run(t, "", "--config", f.config, "--format", "json", "analyze", f.train, f.doc, missing)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var first, second analysis.Record
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, f.doc, first.Path)
	require.NotNil(t, first.Report)
	assert.Equal(t, missing, second.Path)
	assert.NotEmpty(t, second.Error)
}

func TestTrainingFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "", "--config", f.config, "analyze", filepath.Join(f.dir, "nope.py"), f.doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training failed")
}

func TestInvalidFormat(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "", "--config", f.config, "--format", "xml", "train", f.train)
	assert.Error(t, err)
}

func TestTrainSummary(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, "", "--config", f.config, "train", f.train)
	require.NoError(t, err)
	assert.Contains(t, out, "plot (3) 0.333 0.667")

	out, err = run(t, "", "--config", f.config, "--format", "json", "train", f.train)
	require.NoError(t, err)
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []string{"linewidth", "markersize"}, snap.Keywords)
}

func TestPrefixFlag(t *testing.T) {
	f := newFixture(t)
	doc := filepath.Join(f.dir, "ax.py")
	require.NoError(t, os.WriteFile(doc, []byte("ax.plot(x, color=1)\nplt.plot(x, lw=1)\n"), 0o644))

	out, err := run(t, "", "--config", f.config, "--prefix", "ax", "analyze", doc, doc)
	require.NoError(t, err)
	assert.Contains(t, out, "You used function plot with keywords and frequency:\ncolor  1.000\n")
	assert.NotContains(t, out, "lw")
}

func TestTrimParensFlag(t *testing.T) {
	f := newFixture(t)
	train := filepath.Join(f.dir, "legend.py")
	require.NoError(t, os.WriteFile(train, []byte("plt.legend(loc='best')\n"), 0o644))

	out, err := run(t, "", "--config", f.config, "--format", "json", "train", train)
	require.NoError(t, err)
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []string{"(loc"}, snap.Keywords)

	out, err = run(t, "", "--config", f.config, "--format", "json", "--trim-parens", "train", train)
	require.NoError(t, err)
	snap = model.Snapshot{}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []string{"loc"}, snap.Keywords)
}

func TestInteractiveRoot(t *testing.T) {
	f := newFixture(t)
	prev := newPrompter
	defer func() { newPrompter = prev }()
	newPrompter = func() cli.Prompter {
		return cli.PrompterFunc(func(string) (string, error) { return "", nil })
	}

	out, err := run(t, "", "--config", f.config, f.train, f.doc)
	require.NoError(t, err)
	assert.Contains(t, out, "Functions:")
	assert.Contains(t, out, "You used function scatter")
	assert.True(t, strings.HasSuffix(out, "Done!\n"))
}

func TestServeIPC(t *testing.T) {
	f := newFixture(t)

	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	require.NoError(t, enc.Encode(server.Request{ID: "1", Action: server.ActionRecommend, Function: "plot"}))
	require.NoError(t, enc.Encode(server.Request{ID: "2", Action: server.ActionTrain, Path: f.train}))

	out, err := run(t, in.String(), "--config", f.config, "serve", f.train)
	require.NoError(t, err)

	dec := msgpack.NewDecoder(strings.NewReader(out))
	var ready server.StatusResponse
	require.NoError(t, dec.Decode(&ready))
	assert.Equal(t, "ready", ready.Status)

	var rec server.RecommendResponse
	require.NoError(t, dec.Decode(&rec))
	assert.Equal(t, 2, rec.Count)

	var tr server.TrainResponse
	require.NoError(t, dec.Decode(&tr))
	assert.True(t, tr.Cached)
}

func TestServeNothing(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "", "--config", f.config, "serve", "--ipc=false", f.train)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestConfigCommand(t *testing.T) {
	f := newFixture(t)
	out, err := run(t, "", "--config", f.config, "--limit", "4", "config")
	require.NoError(t, err)
	assert.Contains(t, out, f.config)
	assert.Contains(t, out, "[report]")
	assert.Contains(t, out, "limit = 4")
}
