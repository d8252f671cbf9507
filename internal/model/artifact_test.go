package model

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affair-radar/internal/features"
)

func TestBundleSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	b.Training.SourceCounts = map[string]int{"fair_1978": 120, "synthetic": 130}
	path := filepath.Join(t.TempDir(), "models", "model.json")

	require.NoError(t, b.Save(path))

	loaded, err := LoadBundle(path)
	require.NoError(t, err)

	assert.Equal(t, b.Version, loaded.Version)
	assert.Equal(t, b.Schema, loaded.Schema)
	assert.Equal(t, b.Imputer, loaded.Imputer)
	assert.Equal(t, b.Forest, loaded.Forest)
	assert.Equal(t, b.Training, loaded.Training)
	assert.True(t, loaded.CreatedAt.Equal(b.CreatedAt))

	in := map[string]float64{features.SatisfactionRating: 0.9, features.Age: 0.4}
	assert.Equal(t, NewScorer(b, 0).Score(in), NewScorer(loaded, 0).Score(in),
		"a reloaded bundle must score identically")
}

func TestLoadBundleMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadBundle(filepath.Join(t.TempDir(), "nope", "model.json"))
	require.Error(t, err)

	var nf *ModelNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Contains(t, nf.Error(), "model.json")
}

func TestLoadBundleCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadBundle(path)
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*ModelNotFoundError))
}

func TestLoadBundleSchemaMismatch(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	b.Schema[0], b.Schema[1] = b.Schema[1], b.Schema[0]
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, b.Save(path))

	_, err := LoadBundle(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema position")
}

func TestLoadBundleImputerWidth(t *testing.T) {
	t.Parallel()

	b := testBundle(t)
	b.Imputer.Medians = b.Imputer.Medians[:3]
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, b.Save(path))

	_, err := LoadBundle(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imputer")
}

func TestLoaderSharedResult(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, testBundle(t).Save(path))

	l := NewLoader(path)

	var wg sync.WaitGroup
	got := make([]*Bundle, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := l.Get()
			assert.NoError(t, err)
			got[i] = b
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(got); i++ {
		assert.Same(t, got[0], got[i], "every caller must see the same bundle")
	}
}

func TestLoaderCachesFailure(t *testing.T) {
	t.Parallel()

	l := NewLoader(filepath.Join(t.TempDir(), "absent.json"))

	_, err1 := l.Get()
	_, err2 := l.Get()
	require.Error(t, err1)
	assert.True(t, errors.Is(err2, err1), "the failed load is cached, not retried")

	var nf *ModelNotFoundError
	assert.ErrorAs(t, err1, &nf)
}
