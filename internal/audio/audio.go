// Package audio renders trajectories as sound.
package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	"github.com/san-kum/dampsim/internal/dynamo"
)

const (
	SampleRate = beep.SampleRate(44100)

	// BaseFreq is the pitch at the centre of the motion; the extremes of
	// the displacement sit one octave above and below.
	BaseFreq = 220.0
	cutoff   = 1200.0
	volume   = 0.5

	// maxSeconds is the longest playback a time.Duration can hold.
	maxSeconds = float64(math.MaxInt64) / float64(time.Second)
)

// Sonifier streams a trajectory as sound: pitch follows displacement and
// loudness follows the square root of mechanical energy.
type Sonifier struct {
	x, total []float64
	t0, t1   float64
	rate     beep.SampleRate
	speed    float64
	center   float64
	scale    float64
	peak     float64

	frames int
	pos    int
	phase  float64
	filter float64
}

// NewSonifier prepares tr for playback at speed simulated seconds per
// second of audio. Playback stops at the first non-finite sample. e may be
// nil, in which case the loudness is constant.
func NewSonifier(tr *dynamo.Trajectory, e *dynamo.EnergySeries, rate beep.SampleRate, speed float64) (*Sonifier, error) {
	if speed <= 0 || !dynamo.IsFinite(speed) {
		return nil, fmt.Errorf("playback speed must be positive, got %g", speed)
	}

	n := tr.Len()
	if i, diverged := tr.Diverged(); diverged {
		n = i
	}
	var total []float64
	if e != nil {
		n = min(n, e.Len())
		for i := 0; i < n; i++ {
			if !dynamo.IsFinite(e.Total[i]) {
				n = i
				break
			}
		}
		total = e.Total[:n]
	}
	if n < 2 {
		return nil, fmt.Errorf("need at least two finite samples, got %d", n)
	}

	s := &Sonifier{
		x:     tr.X[:n],
		total: total,
		t0:    tr.T[0],
		t1:    tr.T[n-1],
		rate:  rate,
		speed: speed,
	}

	for _, x := range s.x {
		s.center += x
	}
	s.center /= float64(n)
	for _, x := range s.x {
		s.scale = math.Max(s.scale, math.Abs(x-s.center))
	}
	if s.scale == 0 {
		s.scale = 1
	}
	for _, v := range s.total {
		s.peak = math.Max(s.peak, v)
	}

	secs := (s.t1 - s.t0) / speed
	if secs >= maxSeconds {
		return nil, fmt.Errorf("playback of %g s exceeds the %g s limit, raise the speed", secs, maxSeconds)
	}
	s.frames = rate.N(time.Duration(secs * float64(time.Second)))
	if s.frames < 1 {
		return nil, fmt.Errorf("playback of %g s is shorter than one sample, lower the speed", secs)
	}
	return s, nil
}

// Len is the number of audio frames the sonifier produces.
func (s *Sonifier) Len() int { return s.frames }

// at linearly interpolates v at fractional index f.
func at(v []float64, f float64) float64 {
	i := int(f)
	if i >= len(v)-1 {
		return v[len(v)-1]
	}
	frac := f - float64(i)
	return v[i]*(1-frac) + v[i+1]*frac
}

// Triangle Wave: Smooth, flute-like, no harsh buzz
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

func (s *Sonifier) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= s.frames {
		return 0, false
	}

	dt := 1.0 / float64(s.rate)
	last := float64(len(s.x) - 1)
	for i := range samples {
		if s.pos >= s.frames {
			return i, true
		}

		tSim := s.t0 + float64(s.pos)*dt*s.speed
		f := (tSim - s.t0) / (s.t1 - s.t0) * last

		freq := BaseFreq * math.Pow(2, (at(s.x, f)-s.center)/s.scale)
		amp := 1.0
		if s.total != nil {
			amp = 0
			if s.peak > 0 {
				amp = math.Sqrt(math.Max(at(s.total, f), 0) / s.peak)
			}
		}

		s.filter = lpf(triangle(s.phase)*amp, cutoff, dt, s.filter)
		samples[i][0] = s.filter * volume
		samples[i][1] = s.filter * volume

		s.phase += freq * dt
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *Sonifier) Err() error { return nil }

// WriteWAV encodes the sonified trajectory as 16-bit stereo WAV.
func WriteWAV(w io.WriteSeeker, tr *dynamo.Trajectory, e *dynamo.EnergySeries, speed float64) error {
	s, err := NewSonifier(tr, e, SampleRate, speed)
	if err != nil {
		return err
	}
	return wav.Encode(w, s, beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
}
