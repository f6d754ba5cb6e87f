package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFold(t *testing.T) {
	testCases := []struct {
		s, substr   string
		want        int
		description string
	}{
		{"plt.plot(x)", "plt.", 0, "match at start"},
		{"  PLT.plot(x)", "plt.", 2, "upper case haystack"},
		{"y = Plt.show()", "plt.", 4, "mixed case"},
		{"pltx plt.plot()", "plt.", 5, "skips partial match"},
		{"result = 5", "plt.", -1, "no match"},
		{"é plt.x", "plt.", 3, "multi-byte rune before match"},
		{"anything", "", 0, "empty needle"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, IndexFold(tc.s, tc.substr))
		})
	}
}

func TestStripSpace(t *testing.T) {
	assert.Equal(t, "markersize", StripSpace(" marker size =", "="))
	assert.Equal(t, "", StripSpace(" \t=", "="))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("plot", 60))
	assert.True(t, IsValidName("cm.jet", 60))
	assert.True(t, IsValidName("set_xlabel", 60))
	assert.False(t, IsValidName("", 60))
	assert.False(t, IsValidName("plot(x)", 60))
	assert.False(t, IsValidName("toolongname", 4))
}

func TestIsLookupName(t *testing.T) {
	assert.True(t, IsLookupName("plot", 60))
	assert.True(t, IsLookupName("show # done", 60))
	assert.True(t, IsLookupName("bad name!", 60))
	assert.False(t, IsLookupName("", 60))
	assert.False(t, IsLookupName("toolongname", 4))
	assert.False(t, IsLookupName("a\x00b", 60))
	assert.False(t, IsLookupName("\xff", 60))
}

func TestFormatFrequency(t *testing.T) {
	assert.Equal(t, "0.667", FormatFrequency(2.0/3.0, 3))
	assert.Equal(t, "1.000", FormatFrequency(1, 3))
	assert.Equal(t, "  0.3", FormatFrequency(1.0/3.0, 1))
}

func TestCreateRankList(t *testing.T) {
	assert.Equal(t, []uint16{1, 2, 3}, CreateRankList(3))
	assert.Empty(t, CreateRankList(0))
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	result := CheckDirStatus(dir)
	require.NoError(t, result.Error)
	assert.True(t, result.Exists)
	assert.True(t, result.Writable)
	assert.True(t, FileExists(dir))
}

func TestSaveAndLoadTOML(t *testing.T) {
	type section struct {
		Prefix string `toml:"prefix"`
		Limit  int    `toml:"limit"`
	}
	type doc struct {
		Extract section `toml:"extract"`
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOMLFile(doc{Extract: section{Prefix: "mpl", Limit: 4}}, path))

	var loaded doc
	require.NoError(t, LoadTOMLFile(path, &loaded))
	assert.Equal(t, "mpl", loaded.Extract.Prefix)

	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	sec, ok := ExtractSection(raw, "extract")
	require.True(t, ok)
	prefix, ok := ExtractString(sec, "prefix")
	assert.True(t, ok)
	assert.Equal(t, "mpl", prefix)
	limit, ok := ExtractInt64(sec, "limit")
	assert.True(t, ok)
	assert.Equal(t, 4, limit)
	_, ok = ExtractBool(sec, "limit")
	assert.False(t, ok)
}
