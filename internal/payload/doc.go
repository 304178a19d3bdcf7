// Package payload converts typed variable values to a frame's channel bytes
// and back.
//
// Slots are written in frame order as one MSB-first bit stream; byte i of
// the stream is channel i. Multi-byte kinds are big-endian, floats are their
// IEEE-754 bits, vectors and colors are consecutive float32 components and
// color32 is four bytes RGBA.
//
// Decoded values use one canonical Go type per kind:
//
//	bool     bool        char     uint16     float       float32
//	byte     uint8       short    int16      double      float64
//	sbyte    int8        ushort   uint16     vector2     [2]float32
//	int      int32       long     int64      vector3     [3]float32
//	uint     uint32      ulong    uint64     vector4, quaternion, color [4]float32
//	color32  [4]uint8
package payload
