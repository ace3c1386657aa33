// Package timing converts line lengths and words-per-minute targets into
// display durations, including the optional warm-up ramp that eases a
// reading session up to its target speed.
package timing

import "time"

// CharsPerWord is the fixed characters-per-word convention used for
// density-based timing. It is deliberately not a true word count: dividing
// by a constant keeps durations consistent across ragged extraction
// artifacts.
const CharsPerWord = 5

// Sane WPM bounds; out-of-range inputs saturate at the API boundary.
const (
	MinWPM = 10
	MaxWPM = 3000
)

// SaccadeLineDuration returns how long a line of charCount characters should
// stay on screen at the given WPM. Non-positive inputs yield zero, which the
// scheduler treats as a clean end-of-content signal.
func SaccadeLineDuration(charCount int, wpm float64) time.Duration {
	if charCount <= 0 || wpm <= 0 {
		return 0
	}
	ms := (float64(charCount) / CharsPerWord) * (60000 / wpm)
	return time.Duration(ms * float64(time.Millisecond))
}

// ClampWPM saturates a WPM value into the supported range.
func ClampWPM(wpm float64) float64 {
	switch {
	case wpm < MinWPM:
		return MinWPM
	case wpm > MaxWPM:
		return MaxWPM
	default:
		return wpm
	}
}

// Curve selects the warm-up growth shape.
type Curve string

const (
	CurveLinear  Curve = "linear"
	CurveEaseIn  Curve = "ease-in"
	CurveEaseOut Curve = "ease-out"
)

// Ramp configures the effective-WPM warm-up within one continuous play
// session. The zero value disables ramping.
type Ramp struct {
	Rate         float64       `json:"rate"`          // WPM gained per interval
	Interval     time.Duration `json:"interval"`      // elapsed play time per Rate step
	Curve        Curve         `json:"curve"`         // warm-up shape; linear when empty
	StartPercent float64       `json:"start_percent"` // starting share of base WPM
}

// Enabled reports whether the ramp has any effect.
func (r Ramp) Enabled() bool {
	return r.Rate > 0 && r.Interval > 0
}

// EffectiveWPM returns the paced WPM after elapsed play time within one
// continuous session. It starts at StartPercent of base, climbs to base
// following the configured curve, then continues past base linearly at Rate
// per Interval. The result is monotonic non-decreasing in elapsed time; the
// caller owns resetting elapsed across a pause/resume boundary.
func EffectiveWPM(base float64, elapsed time.Duration, r Ramp) float64 {
	if base <= 0 {
		return 0
	}
	if !r.Enabled() {
		return base
	}
	if elapsed < 0 {
		elapsed = 0
	}

	sp := r.StartPercent
	if sp <= 0 || sp > 100 {
		sp = 100
	}
	start := base * sp / 100

	gain := r.Rate * (float64(elapsed) / float64(r.Interval))
	need := base - start
	if need <= 0 {
		return base + gain
	}
	if gain >= need {
		return base + (gain - need)
	}

	p := gain / need
	switch r.Curve {
	case CurveEaseIn:
		p = p * p
	case CurveEaseOut:
		p = 1 - (1-p)*(1-p)
	}
	return start + need*p
}
