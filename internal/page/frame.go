package page

import (
	"fmt"

	"github.com/danmuck/savestate/internal/layout"
)

const (
	BitsPerPage          = 16 * 16
	MaxPageCount         = 256
	MaxBitCount          = BitsPerPage * MaxPageCount
	BitsPerWord          = 16
	WordsPerPage         = BitsPerPage / BitsPerWord
	DefaultParameterName = "parameter"
)

// Frame is one sealed group of slots. It is not modified after packing.
type Frame struct {
	Index        int
	Slots        []layout.VariableSlot
	BitCount     int
	CapacityBits int
}

// ChannelCount is the number of byte channels the frame occupies.
func (f Frame) ChannelCount() int {
	return (f.BitCount + 7) / 8
}

// WordCount is the number of accumulator words, two channels per word.
func (f Frame) WordCount() int {
	return (f.ChannelCount() + 1) / 2
}

// WordBase is the global index of the frame's first word.
func (f Frame) WordBase() int {
	return f.Index * wordsPerFrame(f.CapacityBits)
}

// WordName names local word w of the frame under prefix.
func (f Frame) WordName(prefix string, w int) string {
	return ParameterName(prefix, f.WordBase()+w)
}

// Offsets returns the starting bit of each slot within the frame.
func (f Frame) Offsets() []int {
	offsets := make([]int, len(f.Slots))
	at := 0
	for i, s := range f.Slots {
		offsets[i] = at
		at += s.BitWidth
	}
	return offsets
}

// ParameterName is the synced parameter for a global word index.
func ParameterName(prefix string, word int) string {
	return fmt.Sprintf("%s_%d", prefix, word)
}

func wordsPerFrame(capacityBits int) int {
	if capacityBits <= 0 {
		return WordsPerPage
	}
	return (capacityBits + BitsPerWord - 1) / BitsPerWord
}
