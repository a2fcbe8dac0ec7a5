package sensor

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Analyser defaults, matching a browser AnalyserNode.
const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	DefaultMinDB     = -100.0
	DefaultMaxDB     = -30.0
)

// Analyser keeps the most recent fftSize time-domain samples and converts
// them into a smoothed byte magnitude spectrum on demand.
//
// Write is called from the audio callback, the spectrum is pulled from the
// render loop; both are serialized by mu.
type Analyser struct {
	mu sync.Mutex

	fftSize   int
	smoothing float64
	minDB     float64
	maxDB     float64

	ring  []float64 // Circular time-domain history
	head  int       // Next write index in ring
	fft   *fourier.FFT
	frame []float64    // Windowed copy of ring, oldest sample first
	coeff []complex128 // FFT output (fftSize/2+1)
	mag   []float64    // Smoothed magnitude per bin (fftSize/2)
	bytes []uint8      // Byte spectrum, length fftSize; upper half stays zero
}

// NewAnalyser creates an analyser for the given power-of-two FFT size.
func NewAnalyser(fftSize int) *Analyser {
	if fftSize < 32 || fftSize&(fftSize-1) != 0 {
		fftSize = DefaultFFTSize
	}
	return &Analyser{
		fftSize:   fftSize,
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDB,
		maxDB:     DefaultMaxDB,
		ring:      make([]float64, fftSize),
		fft:       fourier.NewFFT(fftSize),
		frame:     make([]float64, fftSize),
		coeff:     make([]complex128, fftSize/2+1),
		mag:       make([]float64, fftSize/2),
		bytes:     make([]uint8, fftSize),
	}
}

// FFTSize returns the analysis window length.
func (a *Analyser) FFTSize() int {
	return a.fftSize
}

// Write appends mono samples in [-1,1] to the history.
func (a *Analyser) Write(samples []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, s := range samples {
		a.ring[a.head] = float64(s)
		a.head++
		if a.head == a.fftSize {
			a.head = 0
		}
	}
}

// ByteFrequencyData computes the spectrum of the current history and copies
// it into dst. The buffer has fftSize entries: the first fftSize/2 hold the
// bins, the rest are zero. Returns the number of bytes copied.
func (a *Analyser) ByteFrequencyData(dst []uint8) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyse()
	return copy(dst, a.bytes)
}

// Level returns the normalized mean magnitude (mean/128) of the current
// byte spectrum.
func (a *Analyser) Level() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.analyse()
	return NormalizeLevel(a.bytes)
}

// analyse runs one smoothing step. Caller holds mu.
func (a *Analyser) analyse() {
	n := a.fftSize
	for i := 0; i < n; i++ {
		a.frame[i] = a.ring[(a.head+i)%n]
	}
	window.Blackman(a.frame)
	a.fft.Coefficients(a.coeff, a.frame)

	scale := 1.0 / float64(n)
	dbRange := a.maxDB - a.minDB
	for k := range a.mag {
		m := cmplx.Abs(a.coeff[k]) * scale
		a.mag[k] = a.smoothing*a.mag[k] + (1-a.smoothing)*m

		db := math.Inf(-1)
		if a.mag[k] > 0 {
			db = 20 * math.Log10(a.mag[k])
		}
		v := 255 * (db - a.minDB) / dbRange
		switch {
		case v <= 0 || math.IsNaN(v):
			a.bytes[k] = 0
		case v >= 255:
			a.bytes[k] = 255
		default:
			a.bytes[k] = uint8(v)
		}
	}
}
