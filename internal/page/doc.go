// Package page packs planned slots into capacity-bounded frames.
//
// A frame is the unit one carrier session transmits. Its bytes are the codec
// channels and every two channels share one accumulator word, so the word
// naming scheme "{prefix}_{word}" is derived here from the frame index.
package page
