package simlog

import (
	"errors"
	"fmt"

	"github.com/qnetlab/qne-adk/pkg/topology"
)

// ErrUnmappedChannel is returned when an instruction references a logical
// channel the reduction never produced. The reducer and decoder consumed the
// same experiment asset, so this should never happen; it indicates a
// topology mismatch, not a recoverable condition.
var ErrUnmappedChannel = errors.New("no channel mapping for logical channel")

// channelCarrier is implemented by the instruction kinds that reference
// logical channels.
type channelCarrier interface {
	logicalChannels() []string
	setChannels([]string)
}

// RewriteChannels replaces each instruction's logical channel reference with
// the ordered physical channel sequence that realizes it. The instruction
// list is updated in place and returned.
func RewriteChannels(instructions []Instruction, mapping topology.ChannelMapping) ([]Instruction, error) {
	for _, instruction := range instructions {
		carrier, ok := instruction.(channelCarrier)
		if !ok {
			continue
		}
		channels := carrier.logicalChannels()
		if len(channels) == 0 {
			continue
		}

		physical, ok := mapping[channels[0]]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnmappedChannel, channels[0])
		}
		carrier.setChannels(physical)
	}
	return instructions, nil
}
