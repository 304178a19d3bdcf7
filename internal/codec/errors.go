package codec

import "errors"

var (
	ErrDecodeNotReady = errors.New("codec: decode before channel pair finished")
	ErrChannelRange   = errors.New("codec: channel or word out of range")
	ErrBitRange       = errors.New("codec: bit position or byte offset out of range")
)
