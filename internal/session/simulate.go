package session

import (
	"errors"
	"fmt"

	"github.com/danmuck/savestate/internal/codec"
	"github.com/danmuck/savestate/internal/page"
	"github.com/danmuck/savestate/internal/payload"
	"github.com/rs/zerolog/log"
)

var (
	ErrIncomplete   = errors.New("session: frame transfer did not finish")
	ErrHostMismatch = errors.New("session: host word disagrees with received bytes")
)

// Result is the outcome of a simulated transfer.
type Result struct {
	Values payload.Values
	Host   *Host
	Ticks  int
}

// Simulate encodes values into every frame, transmits the frames in order
// through one Receiver and decodes them again. The host's word values are
// checked against the received bytes.
func Simulate(frames []page.Frame, prefix string, values payload.Values, tx Transmitter) (Result, error) {
	rx := NewReceiver(frames, prefix)
	res := Result{Values: make(payload.Values), Host: NewHost()}

	for i, f := range frames {
		data, err := payload.Encode(f, values)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", i, err)
		}
		for _, sig := range tx.Signals(i, data) {
			writes, err := rx.OnTick(sig)
			if err != nil {
				return res, err
			}
			res.Host.Apply(writes)
			res.Ticks++
		}
		if !rx.Done(i) {
			return res, fmt.Errorf("frame %d: %w", i, ErrIncomplete)
		}
		got, err := rx.Bytes(i)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", i, err)
		}
		for w := 0; w < f.WordCount(); w++ {
			high, low := codec.DecodeWord(res.Host.Value(f.WordName(prefix, w)))
			if low != got[2*w] || (2*w+1 < len(got) && high != got[2*w+1]) {
				return res, fmt.Errorf("frame %d word %d: %w", i, w, ErrHostMismatch)
			}
		}
		decoded, err := payload.Decode(f, got)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", i, err)
		}
		for k, v := range decoded {
			res.Values[k] = v
		}
		log.Debug().Int("frame", i).Int("channels", len(got)).Int("ticks", res.Ticks).Msg("frame received")
	}
	return res, nil
}
