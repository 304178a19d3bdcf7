package payload

type bitWriter struct {
	buf []byte
	pos int
}

func newBitWriter(bits int) *bitWriter {
	return &bitWriter{buf: make([]byte, (bits+7)/8)}
}

// writeBits appends the low n bits of v, most significant first.
func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		if v>>i&1 == 1 {
			w.buf[w.pos/8] |= 0x80 >> (w.pos % 8)
		}
		w.pos++
	}
}

func (w *bitWriter) writeBytes(b []byte) {
	for _, v := range b {
		w.writeBits(uint64(v), 8)
	}
}

type bitReader struct {
	buf []byte
	pos int
}

func (r *bitReader) readBits(n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		bit := r.buf[r.pos/8] >> (7 - r.pos%8) & 1
		v = v<<1 | uint64(bit)
		r.pos++
	}
	return v
}

func (r *bitReader) readBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.readBits(8))
	}
	return out
}
