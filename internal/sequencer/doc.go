// Package sequencer gates which channels of a frame may latch on a tick.
//
// The sequencer is a table-driven state machine: Default, then Batch 1..N.
// There is no tick event on the carrier, so the X motion crossing
// codec.ClockThreshold is the clock: odd batches are entered on a sample
// above the threshold, even batches on a sample below it. Leaving Default
// additionally requires an active capture context. Batch N is terminal until
// Reset. A motion signal that never crosses the threshold leaves the machine
// where it is; that is not reported as an error.
package sequencer
