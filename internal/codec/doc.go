// Package codec implements the bit-serial carrier protocol for one frame.
//
// Each byte of a frame is a channel. A channel first latches a transfer
// sample from one motion lane, then resolves its byte most significant bit
// first, one threshold decision per tick:
//
//	sample <  1/2^(p+1)  ignore: accumulator untouched, sample kept
//	sample >= 1/2^(p+1)  write:  sample -= 1/2^(p+1), word += 1/2^(p+1+offset)
//
// Two channels share one accumulator word. Odd channels add with offset 0
// and form the high byte; even channels add with offset 8 and form the low
// byte. Words are kept as scaled integers in units of 2^-16 so repeated
// additions never drift.
//
// Lanes: channel c reads motion component c%3 and belongs to batch c/3+1.
// Channels with c%6 == 0 ride on the X lane of an odd batch, where the X
// component also carries the batch clock bit (1/32). Their transfer maps
// the motion sample onto -1..31 instead of 0..32 so the clock bit is
// removed before bit 0 is compared.
package codec
