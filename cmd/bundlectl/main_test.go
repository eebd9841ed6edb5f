package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/graphbundle/bundle/codec"
)

const unitJSON = `{"type":"DocumentaryUnit","data":{"identifier":"c1"},` +
	`"relations":{"describes":[{"type":"DocumentaryUnitDescription","data":{"name":"Papers","languageCode":"eng"},"relations":{}}]}}`

const unitsYAML = `type: DocumentaryUnit
data:
  identifier: c1
relations:
  describes:
    - type: DocumentaryUnitDescription
      data:
        name: Papers
        languageCode: eng
---
type: DocumentaryUnit
data:
  identifier: c2
relations:
  describes:
    - type: DocumentaryUnitDescription
      data:
        name: Letters
        languageCode: eng
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConvert(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := writeFile(t, dir, "unit.json", unitJSON)
	packed := filepath.Join(dir, "unit.msgpack")

	_, err := run(t, "convert", in, packed)
	require.NoError(t, err)
	out, err := run(t, "convert", packed, "-", "--to", "json")
	require.NoError(t, err)
	assert.Equal(t, unitJSON+"\n", out)

	_, err = run(t, "convert", in, filepath.Join(dir, "unit.txt"))
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	t.Parallel()
	in := writeFile(t, t.TempDir(), "unit.json", unitJSON)

	out, err := run(t, "get", in, "describes[0]/name")
	require.NoError(t, err)
	assert.Equal(t, "\"Papers\"\n", out)

	out, err = run(t, "get", in, "describes[0]")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"type":"DocumentaryUnitDescription"`), out)

	_, err = run(t, "get", in, "describes[3]")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	out, err := run(t, "validate", writeFile(t, dir, "units.yaml", unitsYAML))
	require.NoError(t, err)
	assert.Equal(t, "bundle 0: ok\nbundle 1: ok\n", out)

	invalid := strings.Replace(unitJSON, `"identifier":"c1"`, `"scope":"wide"`, 1)
	out, err = run(t, "validate", writeFile(t, dir, "bad.json", invalid))
	require.Error(t, err)
	assert.Contains(t, out, "missing mandatory field")
	assert.Contains(t, out, `"relations"`)

	_, err = run(t, "validate", "--watch", writeFile(t, dir, "again.json", unitJSON))
	assert.ErrorContains(t, err, "--watch requires --schema")
}

func TestImportSerialize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "graph.db")

	out, err := run(t, "--dsn", dsn, "import", writeFile(t, dir, "units.yaml", unitsYAML))
	require.NoError(t, err)
	ids := strings.Fields(out)
	require.Len(t, ids, 2)

	out, err = run(t, "--dsn", dsn, "serialize", ids[1], ids[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	for i, want := range []string{"c2", "c1"} {
		b, err := codec.JSON{}.Unmarshal([]byte(lines[i]))
		require.NoError(t, err)
		assert.Equal(t, ids[1-i], b.ID())
		identifier, err := b.Get("identifier")
		require.NoError(t, err)
		assert.Equal(t, want, identifier)
	}

	// A second import of the same identifiers collides.
	_, err = run(t, "--dsn", dsn, "import", filepath.Join(dir, "units.yaml"))
	assert.ErrorContains(t, err, "integrity violation")

	_, err = run(t, "--dsn", dsn, "serialize", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestLibraryLogger(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.InfoLevel)
	e := &env{log: zap.New(core)}

	l := e.slog().With("component", "store")
	l.Debug("dropped")
	l.Warn("slow query", "rows", 3, slog.Group("sql", "op", "select"))

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "slow query", entry.Message)
	assert.Equal(t, map[string]any{
		"component": "store",
		"rows":      int64(3),
		"sql":       map[string]any{"op": "select"},
	}, entry.ContextMap())
	require.True(t, entry.Caller.Defined)
	assert.Equal(t, "main_test.go", filepath.Base(entry.Caller.File))
}
