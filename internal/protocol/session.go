package protocol

import (
	"fmt"
	"log"
	"time"

	"github.com/davidkwon/ofdm-codec/internal/audio"
	"github.com/davidkwon/ofdm-codec/internal/codec"
)

// SessionMode represents the operating mode.
type SessionMode int

const (
	ModeSend SessionMode = iota
	ModeReceive
	ModeDuplex
)

// SessionStatus represents the session state.
type SessionStatus int

const (
	StatusDisconnected SessionStatus = iota
	StatusConnecting
	StatusConnected
	StatusTransferring
	StatusCompleted
	StatusError
)

// String returns the status name.
func (s SessionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusTransferring:
		return "transferring"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SessionEvent is sent to listeners when session state changes.
type SessionEvent struct {
	Status   SessionStatus
	Message  string
	Progress float64 // 0.0 to 1.0
	Error    error
}

// Session manages an audio-carried OFDM communication session. It owns
// the PortAudio handle and the codec, and turns protocol frames into
// native signal domain samples: complex baseband must be
// Nyquist-modulated to real PCM before it can ride an audio channel;
// the legacy profile's codec.Encode already emits real samples.
type Session struct {
	audioIO   *audio.AudioIO
	cd        *codec.Codec
	transport *Transport
	mode      SessionMode

	status    SessionStatus
	eventChan chan SessionEvent

	hasInput  bool
	hasOutput bool
}

// NewSession creates a new communication session bound to cfg.
func NewSession(cfg *codec.Config, mode SessionMode) (*Session, error) {
	cd := codec.NewCodec(cfg)

	s := &Session{
		audioIO:   audio.NewAudioIO(cd.SymbolSampleLen() * 2),
		cd:        cd,
		mode:      mode,
		eventChan: make(chan SessionEvent, 100),
	}

	s.transport = NewTransport(s.sendFrame, s.receiveFrame)

	return s, nil
}

// Open initializes the audio I/O based on the session mode.
func (s *Session) Open() error {
	s.setStatus(StatusConnecting, "Opening audio devices...")

	switch s.mode {
	case ModeSend:
		if err := s.audioIO.OpenOutput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio output open failed: %v", err))
			return err
		}
		s.hasOutput = true

		if err := s.audioIO.OpenInput(); err != nil {
			log.Printf("Warning: No input device available. ACK reception disabled: %v", err)
			s.hasInput = false
		} else {
			s.hasInput = true
		}

	case ModeReceive:
		if err := s.audioIO.OpenInput(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio input open failed: %v", err))
			return err
		}
		s.hasInput = true

		if err := s.audioIO.OpenOutput(); err != nil {
			log.Printf("Warning: No output device available. ACK sending disabled: %v", err)
			s.hasOutput = false
		} else {
			s.hasOutput = true
		}

	case ModeDuplex:
		if err := s.audioIO.OpenDuplex(); err != nil {
			s.setStatus(StatusError, fmt.Sprintf("Audio open failed: %v", err))
			return err
		}
		s.hasInput = true
		s.hasOutput = true
	}

	s.setStatus(StatusConnected, "Audio devices ready")
	return nil
}

// Close releases all resources.
func (s *Session) Close() error {
	s.setStatus(StatusDisconnected, "Session closed")
	return s.audioIO.Close()
}

// Events returns the event channel for monitoring session state.
func (s *Session) Events() <-chan SessionEvent {
	return s.eventChan
}

// Transport returns the transport layer for file transfer operations.
func (s *Session) Transport() *Transport {
	return s.transport
}

// sendFrame encodes and transmits a protocol frame over the channel.
func (s *Session) sendFrame(frame *Frame) error {
	if !s.hasOutput {
		return fmt.Errorf("no output device available")
	}

	framed := frame.Encode()

	samples, err := s.cd.EncodeStream(framed)
	if err != nil {
		return fmt.Errorf("codec encode: %w", err)
	}

	pcm := toRealPCM(s.cd.Config(), samples)
	samples32 := samplesToFloat32(pcm)

	if err := s.audioIO.StartOutput(); err != nil {
		return fmt.Errorf("start output: %w", err)
	}
	defer s.audioIO.StopOutput()

	return s.audioIO.WriteSamples(samples32)
}

// receiveFrame captures audio, synchronises onto the first framed
// symbol, and decodes consecutive symbols until a complete protocol
// frame has been assembled.
func (s *Session) receiveFrame(timeout time.Duration) (*Frame, error) {
	if !s.hasInput {
		return nil, fmt.Errorf("no input device available")
	}

	if err := s.audioIO.StartInput(); err != nil {
		return nil, fmt.Errorf("start input: %w", err)
	}
	defer s.audioIO.StopInput()

	symLen := s.cd.SymbolSampleLen()
	minSamples := 4 * symLen
	totalSamples := minSamples + 10*symLen

	deadline := time.Now().Add(timeout)
	var allSamples []float64

	for time.Now().Before(deadline) {
		samples32, err := s.audioIO.Read()
		if err != nil {
			return nil, fmt.Errorf("read audio: %w", err)
		}
		allSamples = append(allSamples, float32ToSamples(samples32)...)

		if len(allSamples) >= totalSamples {
			break
		}
	}

	if len(allSamples) < minSamples {
		return nil, fmt.Errorf("timeout: insufficient samples (%d < %d)", len(allSamples), minSamples)
	}

	buf := fromRealPCM(s.cd.Config(), allSamples)

	_, _, offset, err := s.cd.FindSymbolStart(buf, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	dec := s.cd.InitDecode(buf, offset)
	var payload []byte
	for !dec.Exhausted() {
		chunk, _, err := dec.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		payload = append(payload, chunk...)

		if frame, err := DecodeFrame(payload); err == nil {
			return frame, nil
		}
	}

	return nil, fmt.Errorf("demodulate: frame never completed within captured buffer")
}

func (s *Session) setStatus(status SessionStatus, message string) {
	s.status = status
	event := SessionEvent{
		Status:  status,
		Message: message,
	}
	select {
	case s.eventChan <- event:
	default:
		log.Printf("Event channel full, dropping: %s - %s", status, message)
	}
}

// toRealPCM converts a codec.Samples buffer into real-valued PCM,
// Nyquist-modulating complex baseband (modern profile) since it
// cannot itself ride a single-channel audio signal.
func toRealPCM(cfg *codec.Config, s codec.Samples) []float64 {
	if s.IsReal() {
		return s.Real
	}
	return cfg.NyquistMod(s.Complex)
}

// fromRealPCM is the receive-side counterpart to toRealPCM: it
// rebuilds the codec's native sample domain from captured real PCM.
func fromRealPCM(cfg *codec.Config, pcm []float64) codec.Samples {
	if cfg.Profile() == codec.ProfileLegacy {
		return codec.Samples{Real: pcm}
	}
	return codec.Samples{Complex: cfg.NyquistDemod(pcm)}
}

func samplesToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

func float32ToSamples(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
