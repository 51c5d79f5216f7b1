package utils

import (
	"unicode/utf8"
)

// only one extra variable can be provided as stop, otherwise the function panics
func RuneSlice(s string, start int, stops ...int) string {
	if len(stops) > 1 {
		panic("runtime error: extra unsupported values provided")
	}
	var stop int
	if len(stops) == 1 {
		stop = stops[0]
	} else {
		if start < 0 {
			panic("runtime error: slice bounds out of range")
		}
		return string([]rune(s)[start:])
	}

	if start < 0 || stop < start {
		panic("runtime error: slice bounds out of range")
	}
	length := stop - start
	out := make([]rune, length)
	runeNdx := 0
	writeNdx := 0
	for bytePos := 0; bytePos < len(s) && runeNdx < stop; {
		r, size := utf8.DecodeRuneInString(s[bytePos:])
		bytePos += size
		if runeNdx >= start {
			out[writeNdx] = r
			writeNdx++
		}
		runeNdx++
	}
	if runeNdx < stop {
		panic("runtime error: slice bounds out of range")
	}
	return string(out)
}

func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate shortens s to at most width runes, appending an ellipsis
// when anything was cut. width < 2 returns s unchanged.
func Truncate(s string, width int) string {
	if width < 2 || RuneCount(s) <= width {
		return s
	}
	return RuneSlice(s, 0, width-1) + "…"
}
