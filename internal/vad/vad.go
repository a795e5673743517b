// Package vad implements the streaming silence detector (voice activity
// detection) used to decide when a dictation recording should stop.
package vad

import "sort"

const (
	defaultThreshold         = 0.02
	defaultSilenceDuration   = 1.5
	defaultMinSpeechDuration = 0.5
	adaptiveMultiplier       = 2.0
)

// Params configures a Detector's decision thresholds.
type Params struct {
	Threshold         float64
	SilenceDuration   float64
	MinSpeechDuration float64
}

// DefaultParams returns the default threshold/duration set.
func DefaultParams() Params {
	return Params{
		Threshold:         defaultThreshold,
		SilenceDuration:   defaultSilenceDuration,
		MinSpeechDuration: defaultMinSpeechDuration,
	}
}

// Detector is a single-threaded, pure streaming VAD. It is not safe for
// concurrent use; the capture pipeline feeds it from one goroutine.
//
// Fires at most once per contiguous silence episode: once Update returns
// true, it will not return true again until a non-silent sample is
// observed and a new episode of qualifying silence accumulates. Firing
// repeatedly for the same silence episode would otherwise let the caller
// finalize a recording more than once for a single utterance boundary.
type Detector struct {
	params Params

	backgroundNoise float64

	silenceStart     *float64
	lastSpeech       *float64
	recordingStart   *float64
	firstUpdate      bool
	firedThisEpisode bool
}

// New constructs a Detector with the given parameters.
func New(params Params) *Detector {
	return &Detector{params: params, firstUpdate: true}
}

// Update feeds one (rms, timestamp) sample and reports whether end-of-
// utterance should fire. Timestamps must be non-decreasing within a session.
func (d *Detector) Update(rms float64, timestamp float64) bool {
	if d.firstUpdate {
		t := timestamp
		d.recordingStart = &t
		d.firstUpdate = false
	}

	threshold := d.effectiveThreshold()
	isSilent := rms < threshold

	if !isSilent {
		d.silenceStart = nil
		t := timestamp
		d.lastSpeech = &t
		d.firedThisEpisode = false
		return false
	}

	if d.silenceStart == nil {
		t := timestamp
		d.silenceStart = &t
	}

	if d.firedThisEpisode {
		return false
	}

	silenceElapsed := timestamp - *d.silenceStart
	if silenceElapsed < d.params.SilenceDuration {
		return false
	}

	if d.lastSpeech != nil {
		timeSinceSpeech := timestamp - *d.lastSpeech
		if timeSinceSpeech < d.params.MinSpeechDuration {
			return false
		}
	}

	if d.recordingStart != nil {
		recordingDuration := timestamp - *d.recordingStart
		if recordingDuration < d.params.MinSpeechDuration {
			return false
		}
	}

	d.firedThisEpisode = true
	return true
}

// Calibrate seeds the adaptive threshold from the mean of the lower half
// (by value) of a sample window, excluding speech outliers from the
// background-noise estimate.
func (d *Detector) Calibrate(samples []float64) {
	if len(samples) == 0 {
		return
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	lowerHalf := sorted[:len(sorted)/2]
	if len(lowerHalf) == 0 {
		lowerHalf = sorted
	}

	var sum float64
	for _, v := range lowerHalf {
		sum += v
	}
	d.backgroundNoise = sum / float64(len(lowerHalf))
}

// Reset clears all per-session state, returning the detector to its initial
// configuration ahead of a new recording.
func (d *Detector) Reset() {
	d.silenceStart = nil
	d.lastSpeech = nil
	d.recordingStart = nil
	d.firstUpdate = true
	d.firedThisEpisode = false
}

func (d *Detector) effectiveThreshold() float64 {
	if d.backgroundNoise > 0 {
		adaptive := d.backgroundNoise * adaptiveMultiplier
		if adaptive > d.params.Threshold {
			return adaptive
		}
		return d.params.Threshold
	}
	return d.params.Threshold
}
