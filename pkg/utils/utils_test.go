package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"
)

func TestRuneSlice(t *testing.T) {
	assert := assert.New(t)
	assertPanic := func() {
		r := recover()
		assert.NotNil(r, "panicked")
	}
	t.Run("empty string sliced with its min and max returns nothing", func(t *testing.T) {
		RuneSlice("", 0, 0)
	})
	t.Run("negative index panics", func(t *testing.T) {
		defer assertPanic()
		RuneSlice("hey", -1, 2)
	})
	t.Run("stop < start panics", func(t *testing.T) {
		defer assertPanic()
		RuneSlice("hey", 2, 1)
	})
	t.Run("start == stop returns nothing", func(t *testing.T) {
		val := RuneSlice("hey", 1, 1)
		assert.Empty(val)
	})
	t.Run("stop larger than length panics", func(t *testing.T) {
		defer assertPanic()
		RuneSlice("hey", 0, 4)
	})
	t.Run("stop equals length returns the whole string", func(t *testing.T) {
		val := RuneSlice("hey", 0, 3)
		assert.Equal("hey", val)
	})
	t.Run("normal ascii", func(t *testing.T) {
		tc := "ab"
		for ndx := 0; ndx < 2; ndx++ {
			assert.Equal("", RuneSlice(tc, ndx, ndx))
		}
		assert.Equal("a", RuneSlice(tc, 0, 1))
		assert.Equal("b", RuneSlice(tc, 1, 2))
		assert.Equal("ab", RuneSlice(tc, 0, 2))
	})
	t.Run("normal utf-8", func(t *testing.T) {
		tc := norm.NFC.String("ðŸ˜„eÌä¸–")
		tcRunes := []rune(tc)
		for ndx := 0; ndx < len(tcRunes); ndx++ {
			assert.Equal("", RuneSlice(tc, ndx, ndx))
		}
		assert.Equal(norm.NFC.String("ðŸ˜„"), RuneSlice(tc, 0, 1))
		assert.Equal(norm.NFC.String("eÌ"), RuneSlice(tc, 1, 2))
		assert.Equal(norm.NFC.String("ä¸–"), RuneSlice(tc, 2, 3))
		assert.Equal(norm.NFC.String("ðŸ˜„eÌ"), RuneSlice(tc, 0, 2))
		assert.Equal(norm.NFC.String("eÌä¸–"), RuneSlice(tc, 1, 3))
		assert.Equal(norm.NFC.String("ðŸ˜„eÌä¸–"), RuneSlice(tc, 0, 3))
	})
	t.Run("default stop value", func(t *testing.T) {
		tc := norm.NFC.String("ðŸ˜„eÌä¸–")
		assert.Equal(tc, RuneSlice(tc, 0))
		assert.Equal("ab", RuneSlice("ab", 0))
	})
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)
	t.Run("short strings pass through", func(t *testing.T) {
		assert.Equal("hey", Truncate("hey", 10))
		assert.Equal("hey", Truncate("hey", 3))
	})
	t.Run("long strings end in an ellipsis", func(t *testing.T) {
		assert.Equal("abcd…", Truncate("abcdefgh", 5))
		assert.Equal(5, RuneCount(Truncate("abcdefgh", 5)))
	})
	t.Run("counts runes not bytes", func(t *testing.T) {
		tc := norm.NFC.String("世界世界世界")
		assert.Equal(norm.NFC.String("世界世界")+"…", Truncate(tc, 5))
	})
	t.Run("tiny width is a no-op", func(t *testing.T) {
		assert.Equal("abcdefgh", Truncate("abcdefgh", 1))
	})
}
