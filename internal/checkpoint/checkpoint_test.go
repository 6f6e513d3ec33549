package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "A.txt"), filepath.Join(dir, "B.txt"))

	want := State{Workunit: 42, P: 1000, PrimeCount: 5, Checksum: 0xdead, FactorCount: 2, LastTrickle: 123}
	require.NoError(t, s.Save(want))

	got, ok := New(filepath.Join(dir, "A.txt"), filepath.Join(dir, "B.txt")).Load(42)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestAlternationPicksLargerP(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "A.txt")
	pathB := filepath.Join(dir, "B.txt")

	s := New(pathA, pathB)
	require.NoError(t, s.Save(State{Workunit: 1, P: 100}))
	require.NoError(t, s.Save(State{Workunit: 1, P: 200}))

	got, ok := New(pathA, pathB).Load(1)
	require.True(t, ok)
	require.EqualValues(t, 200, got.P)
}

func TestLoadDiscardsMismatchedWorkunit(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "A.txt")
	pathB := filepath.Join(dir, "B.txt")

	s := New(pathA, pathB)
	require.NoError(t, s.Save(State{Workunit: 1, P: 100}))

	_, ok := New(pathA, pathB).Load(999)
	require.False(t, ok)
}

func TestLoadMissingFilesIsFreshStart(t *testing.T) {
	dir := t.TempDir()
	_, ok := New(filepath.Join(dir, "A.txt"), filepath.Join(dir, "B.txt")).Load(1)
	require.False(t, ok)
}

func TestSaveAlternatesFiles(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "A.txt")
	pathB := filepath.Join(dir, "B.txt")
	s := New(pathA, pathB)

	require.NoError(t, s.Save(State{Workunit: 1, P: 1}))
	require.NoError(t, s.Save(State{Workunit: 1, P: 2}))
	require.NoError(t, s.Save(State{Workunit: 1, P: 3}))

	a, aok := readState(pathA)
	b, bok := readState(pathB)
	require.True(t, aok)
	require.True(t, bok)
	require.EqualValues(t, 3, a.P)
	require.EqualValues(t, 2, b.P)
}
