// Package session runs carrier transfers tick by tick.
//
// A Receiver owns one sequencer and one codec per frame and consumes one
// Signal per tick. Frames share the carrier lane and are transferred one at
// a time: the frame is chosen by a page-select Y motion while the sequencer
// sits in Default. A Transmitter produces the Signal sequence for a frame's
// bytes. Host mirrors the writes into the named synced values a runtime
// would expose.
package session
