package payload

import (
	"github.com/danmuck/savestate/internal/page"
)

// Values maps slot names to values.
type Values map[string]any

// Encode writes values into the channel bytes of frame. Every slot of the
// frame needs a value.
func Encode(frame page.Frame, values Values) ([]byte, error) {
	w := newBitWriter(frame.BitCount)
	for _, s := range frame.Slots {
		v, ok := values[s.Name]
		if !ok {
			return nil, SlotError{Slot: s.Name, Err: ErrMissingValue}
		}
		if s.IsFlag() {
			b, ok := v.(bool)
			if !ok {
				return nil, SlotError{Slot: s.Name, Err: ErrValueType}
			}
			bit := uint64(0)
			if b {
				bit = 1
			}
			w.writeBits(bit, 1)
			continue
		}
		raw, err := encodeValue(s.Kind, v)
		if err != nil {
			return nil, SlotError{Slot: s.Name, Err: err}
		}
		w.writeBytes(raw)
	}
	return w.buf, nil
}

// Decode reads the slot values of frame from its channel bytes.
func Decode(frame page.Frame, data []byte) (Values, error) {
	if len(data) < frame.ChannelCount() {
		return nil, ErrShortData
	}
	r := &bitReader{buf: data}
	out := make(Values, len(frame.Slots))
	for _, s := range frame.Slots {
		if s.IsFlag() {
			out[s.Name] = r.readBits(1) == 1
			continue
		}
		v, err := decodeValue(s.Kind, r.readBytes(s.BitWidth/8))
		if err != nil {
			return nil, SlotError{Slot: s.Name, Err: err}
		}
		out[s.Name] = v
	}
	return out, nil
}
