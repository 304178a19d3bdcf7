package codec

// ChannelState is where a channel is in its transfer.
type ChannelState int

const (
	StateTransfer ChannelState = iota
	StateBit
	StateFinished
)

func (s ChannelState) String() string {
	switch s {
	case StateTransfer:
		return "transfer"
	case StateBit:
		return "bit"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Channel resolves one byte of a frame.
type Channel struct {
	index    int
	state    ChannelState
	position int
	residual float64
	value    byte
}

func NewChannel(index int) *Channel {
	return &Channel{index: index}
}

func (c *Channel) Index() int          { return c.index }
func (c *Channel) State() ChannelState { return c.state }

// Position is the next bit position to resolve while in StateBit.
func (c *Channel) Position() int { return c.position }

// Value is the byte resolved so far.
func (c *Channel) Value() byte { return c.value }

func (c *Channel) Finished() bool { return c.state == StateFinished }

// Reset returns the channel to its transfer state for a new session.
func (c *Channel) Reset() {
	c.state = StateTransfer
	c.position = 0
	c.residual = 0
	c.value = 0
}

// Step advances the channel by one tick. In the transfer state the channel
// tracks its lane and leaves it once batch reaches the channel's own batch.
// In the bit state it resolves exactly one position into acc. The returned
// bool is false when no bit was resolved this tick.
func (c *Channel) Step(motion [LaneCount]float64, batch int, acc *Accumulator) (TransmissionStep, bool, error) {
	switch c.state {
	case StateTransfer:
		c.residual = Transfer(c.index, motion[Lane(c.index)])
		if batch == BatchOf(c.index) {
			c.state = StateBit
			c.position = 0
		}
		return TransmissionStep{}, false, nil
	case StateBit:
		p := c.position
		step := TransmissionStep{Channel: c.index, BitPosition: p, Threshold: Threshold(p)}
		if c.residual >= step.Threshold {
			if err := acc.ApplyBit(p, ByteOffset(c.index)); err != nil {
				return TransmissionStep{}, false, err
			}
			c.residual -= step.Threshold
			c.value |= 1 << (StepsPerChannel - 1 - p)
			step.Decision = DecisionWrite
		}
		c.position++
		if c.position == StepsPerChannel {
			c.state = StateFinished
		}
		return step, true, nil
	default:
		return TransmissionStep{}, false, nil
	}
}
