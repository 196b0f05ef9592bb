package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/parser"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func messages(errs []*parser.Error) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func TestRedefinition(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "THR_MIN, 0\nTHR_MIN, 5\n"})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"THR_MIN redefined"}, messages(f.Errors))
	assert.Equal(t, 2, f.Errors[0].Line)

	require.Len(t, f.Params, 1)
	assert.Equal(t, 5.0, f.Params[0].Value)
}

func TestRedefinitionDisabled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "THR_MIN, 0\nTHR_MIN, 5\n"})

	checks := config.AllChecks()
	checks.Redefinition = false
	f, err := New(checks).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	assert.Empty(t, f.Errors)
	assert.Equal(t, 5.0, f.Params[0].Value)
}

func TestRedefinitionKeepsFirstPosition(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "A, 1\nB, 2\nA, 3 # DISABLE_CHECKS: bench value\n"})

	checks := config.AllChecks()
	checks.Redefinition = false
	f, err := New(checks).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	require.Len(t, f.Params, 2)
	assert.Equal(t, "A", f.Params[0].Name)
	assert.Equal(t, 3.0, f.Params[0].Value)
	assert.True(t, f.Params[0].Suppressed)
	assert.Equal(t, "B", f.Params[1].Name)
}

func TestBadValueStillCountsAsDefined(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "A, x\nA, 1\n"})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Error parsing line: `A, x`", "A redefined"}, messages(f.Errors))
}

func TestDeleteThenRedefine(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "COMPASS_ENABLE, 1\n@delete COMPASS_*\nCOMPASS_ENABLE, 0\n"})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	assert.Empty(t, f.Errors)
	assert.Equal(t, 0.0, f.Params[0].Value)
}

func TestIncludeThenRedefine(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"common/base.parm": "THR_MIN, 0\nTHR_MAX, 100\n",
		"vehicle.parm":     "@include common/base.parm\nTHR_MAX, 80\nARSPD_USE, 1\n",
	})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "vehicle.parm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"THR_MAX redefined"}, messages(f.Errors))
	assert.Equal(t, []string{"ARSPD_USE", "THR_MAX", "THR_MIN"}, f.Names.Sorted())

	// Included values are not part of this file's own entries.
	require.Len(t, f.Params, 2)
	assert.Equal(t, "THR_MAX", f.Params[0].Name)
}

func TestIncludeThenDeleteAll(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"base.parm":    "A, 1\nB, 2\nC, 3\n",
		"vehicle.parm": "@include base.parm\n@delete *\nA, 4\nB, 5\n",
	})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "vehicle.parm"))
	require.NoError(t, err)
	assert.Empty(t, f.Errors)
	assert.Equal(t, []string{"A", "B"}, f.Names.Sorted())
}

func TestNestedIncludesAreRelative(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a/b/leaf.parm": "LEAF, 1\nDROPPED, 2\n@delete DROP?ED\n",
		"a/middle.parm": "@include b/leaf.parm\nMIDDLE, 1\n",
		"top.parm":      "@include a/middle.parm\nDROPPED, 3\nLEAF, 2\n",
	})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "top.parm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"LEAF redefined"}, messages(f.Errors))
}

func TestIncludedErrorsAreNotReported(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"base.parm":    "BROKEN\nX, 1\nX, 2\n",
		"vehicle.parm": "@include base.parm\nY, 1\n",
	})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "vehicle.parm"))
	require.NoError(t, err)
	assert.Empty(t, f.Errors)
}

func TestDeletePatterns(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.parm": "SERVO1_MIN, 1\nSERVO2_MIN, 1\nSERVO10_MIN, 1\nSERVO1_MAX, 1\n" +
			"@delete SERVO[12]_MIN\n@delete SERVO?0_*\n",
	})

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, "a.parm"))
	require.NoError(t, err)
	assert.Equal(t, []string{"SERVO1_MAX"}, f.Names.Sorted())
}

func TestIncludeDepthExceeded(t *testing.T) {
	dir := writeFiles(t, map[string]string{"loop.parm": "@include loop.parm\nA, 1\n"})

	_, err := New(config.AllChecks()).Load(filepath.Join(dir, "loop.parm"))
	assert.ErrorIs(t, err, ErrIncludeDepth)
}

func TestIncludeDepthLimit(t *testing.T) {
	files := map[string]string{}
	// f0 includes f1 ... f9 includes f10: exactly MaxIncludeDepth levels.
	for i := 0; i < MaxIncludeDepth; i++ {
		files[name(i)] = "@include " + name(i+1) + "\n"
	}
	files[name(MaxIncludeDepth)] = "LAST, 1\n"
	dir := writeFiles(t, files)

	f, err := New(config.AllChecks()).Load(filepath.Join(dir, name(0)))
	require.NoError(t, err)
	assert.True(t, f.Names.Has("LAST"))

	files[name(MaxIncludeDepth)] = "@include extra.parm\n"
	files["extra.parm"] = "EXTRA, 1\n"
	dir = writeFiles(t, files)
	_, err = New(config.AllChecks()).Load(filepath.Join(dir, name(0)))
	assert.ErrorIs(t, err, ErrIncludeDepth)
}

func name(i int) string {
	return "f" + string(rune('a'+i)) + ".parm"
}

func TestMissingInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.parm": "@include nope.parm\n"})

	_, err := New(config.AllChecks()).Load(filepath.Join(dir, "a.parm"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "@include nope.parm")
}

func TestLoadContentReadsIncludesFromDisk(t *testing.T) {
	dir := writeFiles(t, map[string]string{"base.parm": "A, 1\n"})

	f, err := New(config.AllChecks()).LoadContent(filepath.Join(dir, "unsaved.parm"), "@include base.parm\nA, 2\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"A redefined"}, messages(f.Errors))
}
