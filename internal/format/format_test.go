// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/femcite/internal/generate"
	"github.com/pdiddy/femcite/pkg/types"
)

func entries() []types.SourceEntry {
	return []types.SourceEntry{
		types.SourceEntry{Title: "Femme theory", Authors: "Blair, K. L., & Hoskin, R. A.", Year: 2019, DOI: "10.1/ft"}.WithCitation(),
		types.SourceEntry{Title: "Femmephobia", Authors: "Hoskin, R. A.", Year: 2017}.WithCitation(),
	}
}

func countingGen(out string) (*atomic.Int64, generate.Generator) {
	var n atomic.Int64
	return &n, generate.GeneratorFunc(func(context.Context, string) (string, error) {
		n.Add(1)
		return out, nil
	})
}

func TestRenderPrompt(t *testing.T) {
	got, err := RenderPrompt(entries(), types.StyleMLA)
	require.NoError(t, err)

	want := "Format the following references in MLA style. Do not add any references. Only return formatted references.\n" +
		"Do not omit or reorder any references.\n\n" +
		"References:\n" +
		"1. Femme theory (2019) by Blair, K. L., & Hoskin, R. A. — [DOI link](https://doi.org/10.1/ft)\n" +
		"2. Femmephobia (2017) by Hoskin, R. A.\n"
	assert.Equal(t, want, got)
}

func TestFormatCachesValueEqualArguments(t *testing.T) {
	n, gen := countingGen("Blair, K. L., & Hoskin, R. A. (2019). Femme theory.")
	f := New(gen, nil)

	first, err := f.Format(context.Background(), entries(), types.StyleAPA)
	require.NoError(t, err)

	// A fresh, value-equal slice must hit the cache.
	second, err := f.Format(context.Background(), entries(), types.StyleAPA)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, n.Load())
	assert.EqualValues(t, 1, f.Calls())
	assert.Equal(t, 1, f.Len())
}

func TestFormatKeyDependsOnStyleAndContent(t *testing.T) {
	n, gen := countingGen("formatted")
	f := New(gen, nil)
	ctx := context.Background()

	_, err := f.Format(ctx, entries(), types.StyleAPA)
	require.NoError(t, err)
	_, err = f.Format(ctx, entries(), types.StyleChicago)
	require.NoError(t, err)

	changed := entries()
	changed[1].Year = 2018
	_, err = f.Format(ctx, changed, types.StyleAPA)
	require.NoError(t, err)

	assert.EqualValues(t, 3, n.Load())
	assert.Equal(t, 3, f.Len())
}

func TestFormatFailureIsNotCached(t *testing.T) {
	boom := errors.New("timeout")
	var calls int
	gen := generate.GeneratorFunc(func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	})
	f := New(gen, nil)

	_, err := f.Format(context.Background(), entries(), types.StyleAPA)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.Len())

	text, err := f.Format(context.Background(), entries(), types.StyleAPA)
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, 2, calls)
}

func TestFormatEmptyOutput(t *testing.T) {
	_, gen := countingGen("   ")
	f := New(gen, nil)
	_, err := f.Format(context.Background(), entries(), types.StyleAPA)
	assert.ErrorIs(t, err, generate.ErrEmptyResponse)
	assert.Equal(t, 0, f.Len())
}

func TestFormatConcurrent(t *testing.T) {
	_, gen := countingGen("same")
	f := New(gen, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := f.Format(context.Background(), entries(), types.StyleMLA)
			assert.NoError(t, err)
			assert.Equal(t, "same", text)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.Len())
	assert.LessOrEqual(t, f.Calls(), int64(16))
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(entries(), types.StyleAPA)
	assert.Len(t, a, 64)
	assert.Equal(t, a, CacheKey(entries(), types.StyleAPA))
	assert.NotEqual(t, a, CacheKey(entries(), types.StyleMLA))
	assert.NotEqual(t, a, CacheKey(entries()[:1], types.StyleAPA))

	// Field boundaries are part of the key.
	x := []types.SourceEntry{{Title: "ab", Authors: "c"}}
	y := []types.SourceEntry{{Title: "a", Authors: "bc"}}
	assert.NotEqual(t, CacheKey(x, types.StyleAPA), CacheKey(y, types.StyleAPA))
}
