package codec

const (
	LaneCount        = 3
	ChannelsPerBatch = LaneCount
	TransferScale    = 32
	// ClockThreshold is the X motion boundary the batch clock toggles across.
	ClockThreshold = 1.0 / TransferScale
)

// Lane is the motion component channel c reads: 0=X, 1=Y, 2=Z.
func Lane(channel int) int {
	return channel % LaneCount
}

// BatchOf is the batch during which channel c latches its transfer sample.
func BatchOf(channel int) int {
	return channel/ChannelsPerBatch + 1
}

// BatchCount is the number of batches needed for channels channels.
func BatchCount(channels int) int {
	return (channels + ChannelsPerBatch - 1) / ChannelsPerBatch
}

// IsControlLane reports whether channel c shares its lane with the batch
// clock bit.
func IsControlLane(channel int) bool {
	return channel%6 == 0
}

// Transfer maps a motion sample in [0,1] to the channel's residual:
// -1..31 on control lanes, 0..32 otherwise.
func Transfer(channel int, motion float64) float64 {
	if IsControlLane(channel) {
		return motion*TransferScale - 1
	}
	return motion * TransferScale
}

// LaneSample is the motion value a sender presents so that a channel
// latches byte v. The half step centres the sample inside v's bucket.
func LaneSample(v byte, control bool) float64 {
	frac := (float64(v) + 0.5) / 256
	if control {
		frac++
	}
	return frac / TransferScale
}

// BatchMotion composes the X/Y/Z motion a sender holds during batch
// for a frame whose channel bytes are data. Missing channels send zero.
func BatchMotion(data []byte, batch int) [LaneCount]float64 {
	var motion [LaneCount]float64
	first := (batch - 1) * ChannelsPerBatch
	for lane := 0; lane < LaneCount; lane++ {
		c := first + lane
		var v byte
		if c >= 0 && c < len(data) {
			v = data[c]
		}
		motion[lane] = LaneSample(v, IsControlLane(c))
	}
	return motion
}

// Decision is the outcome of one threshold comparison.
type Decision int

const (
	DecisionIgnore Decision = iota
	DecisionWrite
)

func (d Decision) String() string {
	if d == DecisionWrite {
		return "write"
	}
	return "ignore"
}

// TransmissionStep is one resolved bit of one channel.
type TransmissionStep struct {
	Channel     int
	BitPosition int
	Threshold   float64
	Decision    Decision
}

// Decompose is the decision sequence that transmits v, most significant bit
// first.
func Decompose(v byte) [StepsPerChannel]Decision {
	var out [StepsPerChannel]Decision
	for p := 0; p < StepsPerChannel; p++ {
		if v>>(StepsPerChannel-1-p)&1 == 1 {
			out[p] = DecisionWrite
		}
	}
	return out
}
