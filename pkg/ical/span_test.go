package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanCover(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Span{2, 10}, Span{2, 5}.Cover(Span{7, 10}))
	assert.Equal(Span{2, 5}, Span{}.Cover(Span{2, 5}))
	assert.Equal(Span{2, 5}, Span{2, 5}.Cover(Span{}))
	assert.True(Span{3, 3}.Empty())
	assert.Equal(3, Span{2, 5}.Len())
}

func TestPosition(t *testing.T) {
	assert := assert.New(t)
	src := "aaa\r\nbb\r\nc"
	line, col := Position(src, 0)
	assert.Equal(1, line)
	assert.Equal(1, col)
	line, col = Position(src, 6)
	assert.Equal(2, line)
	assert.Equal(2, col)
	line, col = Position(src, 9)
	assert.Equal(3, line)
	assert.Equal(1, col)
	// past-the-end offsets clamp
	line, _ = Position(src, 100)
	assert.Equal(3, line)
}

func TestSegments(t *testing.T) {
	assert := assert.New(t)
	segs := Segments{
		{Text: "Hello", Span: Span{8, 13}},
		{Text: "World", Span: Span{16, 21}},
	}
	assert.Equal("HelloWorld", segs.String())
	assert.Equal(10, segs.Len())
	assert.Equal(Span{8, 21}, segs.Span())
	assert.Equal(4, segs.IndexByte('o'))
	assert.Equal(-1, segs.IndexByte('z'))

	t.Run("split inside a segment", func(t *testing.T) {
		left, right := segs.SplitAt(7)
		assert.Equal("HelloWo", left.String())
		assert.Equal("rld", right.String())
		assert.Equal(Span{16, 18}, left[1].Span)
		assert.Equal(Span{18, 21}, right[0].Span)
	})
	t.Run("split on a boundary", func(t *testing.T) {
		left, right := segs.SplitAt(5)
		assert.Equal("Hello", left.String())
		assert.Equal("World", right.String())
	})
	t.Run("owned detaches from the source", func(t *testing.T) {
		owned := segs.Owned()
		assert.Equal(segs.String(), owned.String())
		assert.Equal(segs.Span(), owned.Span())
	})
}
