package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFingerprintDependsOnBothInputs(t *testing.T) {
	a := Fingerprint([]byte("source-a"), []byte("config-1"))
	b := Fingerprint([]byte("source-b"), []byte("config-1"))
	c := Fingerprint([]byte("source-a"), []byte("config-2"))

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Fingerprint([]byte("source-a"), []byte("config-1")))
}

func TestStoreMissReturnsNotOK(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Get("deadbeef")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorePutThenGetRoundTrips(t *testing.T) {
	s := openTestStore(t)
	fp := Fingerprint([]byte("image-bytes"), []byte("config-bytes"))

	entry := Entry{
		BAT:       []byte{0x01, 0x02},
		Tiles:     []byte{0x00, 0xFF},
		Palettes:  []byte{0xAA, 0xBB},
		VRAMBase:  0x4000,
		BATWidth:  32,
		BATHeight: 28,
		Overflow:  false,
	}
	require.NoError(t, s.Put(fp, entry))

	got, ok, err := s.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestStorePutReplacesExistingEntry(t *testing.T) {
	s := openTestStore(t)
	fp := Fingerprint([]byte("image-bytes"), []byte("config-bytes"))

	require.NoError(t, s.Put(fp, Entry{BAT: []byte{1}, Tiles: []byte{1}, Palettes: []byte{1}}))
	require.NoError(t, s.Put(fp, Entry{BAT: []byte{2}, Tiles: []byte{2}, Palettes: []byte{2}, Overflow: true}))

	got, ok, err := s.Get(fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{2}, got.BAT)
	assert.True(t, got.Overflow)
}

func TestStoreDeleteRemovesEntry(t *testing.T) {
	s := openTestStore(t)
	fp := Fingerprint([]byte("x"), []byte("y"))
	require.NoError(t, s.Put(fp, Entry{BAT: []byte{1}, Tiles: []byte{1}, Palettes: []byte{1}}))

	require.NoError(t, s.Delete(fp))
	_, ok, err := s.Get(fp)
	require.NoError(t, err)
	assert.False(t, ok)
}
