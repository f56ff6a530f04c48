package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	SampleRate   = 44100
	NumChannels  = 1
	SampleFormat = 32 // float32

	// DefaultFramesPerBuf is used when a caller builds an AudioIO
	// without a codec-derived buffer size in hand.
	DefaultFramesPerBuf = 576
)

// AudioIO wraps PortAudio for audio input/output. framesPerBuf is
// sized by the caller to match one (or a small multiple of) the
// codec's native symbol length, so a single stream callback never
// splits a framed OFDM symbol across two buffers.
type AudioIO struct {
	inputStream  *portaudio.Stream
	outputStream *portaudio.Stream
	inputBuf     []float32
	outputBuf    []float32
	framesPerBuf int
	mu           sync.Mutex
}

// Init initializes PortAudio.
func Init() error {
	return portaudio.Initialize()
}

// Terminate cleans up PortAudio.
func Terminate() error {
	return portaudio.Terminate()
}

// NewAudioIO creates a new AudioIO instance with the given per-buffer
// frame count. framesPerBuf <= 0 selects DefaultFramesPerBuf.
func NewAudioIO(framesPerBuf int) *AudioIO {
	if framesPerBuf <= 0 {
		framesPerBuf = DefaultFramesPerBuf
	}
	return &AudioIO{
		framesPerBuf: framesPerBuf,
		inputBuf:     make([]float32, framesPerBuf),
		outputBuf:    make([]float32, framesPerBuf),
	}
}

// OpenInput opens the default input stream.
func (a *AudioIO) OpenInput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		NumChannels, // input channels
		0,           // output channels
		float64(SampleRate),
		a.framesPerBuf,
		a.inputBuf,
	)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	a.inputStream = stream
	return nil
}

// OpenOutput opens the default output stream.
func (a *AudioIO) OpenOutput() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	stream, err := portaudio.OpenDefaultStream(
		0,           // input channels
		NumChannels, // output channels
		float64(SampleRate),
		a.framesPerBuf,
		a.outputBuf,
	)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	a.outputStream = stream
	return nil
}

// OpenDuplex opens a default input stream and a separate default
// output stream.
func (a *AudioIO) OpenDuplex() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	inBuf := make([]float32, a.framesPerBuf)
	outBuf := make([]float32, a.framesPerBuf)
	a.inputBuf = inBuf
	a.outputBuf = outBuf

	// Open separate streams for half-duplex operation
	inStream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRate), a.framesPerBuf, inBuf)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	a.inputStream = inStream

	outStream, err := portaudio.OpenDefaultStream(0, 1, float64(SampleRate), a.framesPerBuf, outBuf)
	if err != nil {
		inStream.Close()
		return fmt.Errorf("open output stream: %w", err)
	}
	a.outputStream = outStream
	return nil
}

// StartInput starts the input stream.
func (a *AudioIO) StartInput() error {
	if a.inputStream == nil {
		return fmt.Errorf("input stream not opened")
	}
	return a.inputStream.Start()
}

// StartOutput starts the output stream.
func (a *AudioIO) StartOutput() error {
	if a.outputStream == nil {
		return fmt.Errorf("output stream not opened")
	}
	return a.outputStream.Start()
}

// Read reads samples from the input stream.
func (a *AudioIO) Read() ([]float32, error) {
	if a.inputStream == nil {
		return nil, fmt.Errorf("input stream not opened")
	}
	err := a.inputStream.Read()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	out := make([]float32, len(a.inputBuf))
	copy(out, a.inputBuf)
	return out, nil
}

// Write writes samples to the output stream.
func (a *AudioIO) Write(samples []float32) error {
	if a.outputStream == nil {
		return fmt.Errorf("output stream not opened")
	}
	copy(a.outputBuf, samples)
	return a.outputStream.Write()
}

// WriteSamples writes a large buffer of samples in framesPerBuf chunks.
func (a *AudioIO) WriteSamples(samples []float32) error {
	for i := 0; i < len(samples); i += a.framesPerBuf {
		end := i + a.framesPerBuf
		if end > len(samples) {
			// Pad with zeros
			chunk := make([]float32, a.framesPerBuf)
			copy(chunk, samples[i:])
			if err := a.Write(chunk); err != nil {
				return err
			}
		} else {
			if err := a.Write(samples[i:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadSamples reads n samples from the input stream.
func (a *AudioIO) ReadSamples(n int) ([]float32, error) {
	result := make([]float32, 0, n)
	for len(result) < n {
		chunk, err := a.Read()
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)
	}
	return result[:n], nil
}

// StopInput stops the input stream.
func (a *AudioIO) StopInput() error {
	if a.inputStream == nil {
		return nil
	}
	return a.inputStream.Stop()
}

// StopOutput stops the output stream.
func (a *AudioIO) StopOutput() error {
	if a.outputStream == nil {
		return nil
	}
	return a.outputStream.Stop()
}

// Close closes all streams.
func (a *AudioIO) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.inputStream != nil {
		if err := a.inputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.inputStream = nil
	}
	if a.outputStream != nil {
		if err := a.outputStream.Close(); err != nil {
			errs = append(errs, err)
		}
		a.outputStream = nil
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
