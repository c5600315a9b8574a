package gps

import "strings"

// PairState is the state of the line pairing loop.
type PairState int

const (
	AwaitingGGA PairState = iota
	AwaitingRMC
)

func (s PairState) String() string {
	switch s {
	case AwaitingGGA:
		return "awaiting GPGGA"
	case AwaitingRMC:
		return "awaiting GPRMC"
	default:
		return "unknown"
	}
}

// Pair is a GPGGA sentence and the line that followed it.
type Pair struct {
	GGA string
	RMC string
}

// Pairer matches each GPGGA line with the next non-comment line.
//
// A second GPGGA while one is pending replaces it and counts as Dropped.
// A non-GPGGA line with nothing pending is an orphan and is skipped.
// The zero value is ready to use.
type Pairer struct {
	state   PairState
	pending string

	Orphans int
	Dropped int
}

func (p *Pairer) State() PairState { return p.state }

// Feed consumes one raw input line. It returns a Pair when the line
// completes one.
func (p *Pairer) Feed(line string) (Pair, bool) {
	line = strings.TrimSpace(line)
	if line == "" || IsComment(line) {
		return Pair{}, false
	}

	if IsGGA(line) {
		if p.state == AwaitingRMC {
			p.Dropped++
		}
		p.pending = line
		p.state = AwaitingRMC
		return Pair{}, false
	}

	if p.state == AwaitingGGA {
		p.Orphans++
		return Pair{}, false
	}

	pair := Pair{GGA: p.pending, RMC: line}
	p.pending = ""
	p.state = AwaitingGGA
	return pair, true
}
