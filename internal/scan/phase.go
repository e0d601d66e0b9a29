// Package scan runs the hold-to-scan experience: it turns a stream of hand
// poses into a one-way walk through scanning, transition, sequence and reveal.
package scan

import "fmt"

// Phase is the stage of a scan session. Phases only ever advance.
type Phase int

const (
	// Scanning waits for the hand to be held still.
	Scanning Phase = iota
	// Transitioning hides the scanner before the sequence starts.
	Transitioning
	// SequencePlaying shows the scripted lines.
	SequencePlaying
	// RevealPending primes the reveal video and waits for a tap.
	RevealPending
	// RevealPlaying is terminal.
	RevealPlaying
)

var phaseNames = [...]string{
	Scanning:        "scanning",
	Transitioning:   "transitioning",
	SequencePlaying: "sequence_playing",
	RevealPending:   "reveal_pending",
	RevealPlaying:   "reveal_playing",
}

func (p Phase) String() string {
	if p < Scanning || p > RevealPlaying {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool {
	return p == RevealPlaying
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if p < Scanning || p > RevealPlaying {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	parsed, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePhase returns the phase with the given name.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return Scanning, fmt.Errorf("unknown phase %q", s)
}
