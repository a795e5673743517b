package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRMSOfSilenceIsZero(t *testing.T) {
	samples := make([]int16, 1024)
	require.Equal(t, 0.0, rms(samples))
}

func TestRMSOfFullScaleIsOne(t *testing.T) {
	samples := make([]int16, 1024)
	for i := range samples {
		samples[i] = math.MaxInt16
	}
	require.InDelta(t, 1.0, rms(samples), 0.001)
}

func TestRMSIsWithinUnitBounds(t *testing.T) {
	samples := []int16{-32768, 32767, 0, 1000, -1000, 16000}
	v := rms(samples)
	require.GreaterOrEqual(t, v, 0.0)
	require.LessOrEqual(t, v, 1.0)
}

func TestRMSEmptyChunkIsZero(t *testing.T) {
	require.Equal(t, 0.0, rms(nil))
}

func TestBytesToInt16LERoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(uint16(s))
		buf[i*2+1] = byte(uint16(s) >> 8)
	}

	got := bytesToInt16LE(buf)
	require.Equal(t, samples, got)
}
