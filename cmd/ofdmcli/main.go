// Command ofdmcli drives the OFDM codec library from the shell:
// encode/decode a file through one framed symbol stream, list audio
// devices, or run the browser-facing transfer server.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/davidkwon/ofdm-codec/internal/audio"
	"github.com/davidkwon/ofdm-codec/internal/codec"
	"github.com/davidkwon/ofdm-codec/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "encode":
		err = runEncode(args)
	case "decode":
		err = runDecode(args)
	case "devices":
		err = runDevices(args)
	case "serve":
		err = runServe(args)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ofdmcli <encode|decode|devices|serve> [flags]")
}

func codecFlags(fs *flag.FlagSet) (profile *string, qam *int, fftSize *int, nData *int, seed *uint64) {
	profile = fs.String("profile", "modern", "profile: modern or legacy")
	qam = fs.Int("qam", 0, "bits per QAM symbol (0 = profile default)")
	fftSize = fs.Int("fft", 0, "FFT size N (0 = profile default)")
	nData = fs.Int("ndata", 0, "payload bytes per symbol (0 = profile default)")
	seed = fs.Uint64("seed", 0, "scrambler seed (0 = profile default of 1)")
	return
}

func buildConfig(profile string, qam, fftSize, nData int, seed uint64) (*codec.Config, error) {
	var opts []codec.Option
	if qam > 0 {
		opts = append(opts, codec.WithQAM(qam))
	}
	if fftSize > 0 {
		opts = append(opts, codec.WithFFTSize(fftSize))
	}
	if nData > 0 {
		opts = append(opts, codec.WithNData(nData))
	}
	if seed > 0 {
		opts = append(opts, codec.WithSeed(seed))
	}

	switch profile {
	case "legacy":
		return codec.NewLegacy(opts...)
	case "modern":
		return codec.New(opts...)
	default:
		return nil, fmt.Errorf("unknown profile %q", profile)
	}
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	in := fs.String("in", "", "input payload file (required)")
	out := fs.String("out", "", "output signal file, float64 little-endian (required)")
	profile, qam, fftSize, nData, seed := codecFlags(fs)
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	cfg, err := buildConfig(*profile, *qam, *fftSize, *nData, *seed)
	if err != nil {
		return err
	}
	cd := codec.NewCodec(cfg)

	payload, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	samples, err := cd.EncodeStream(payload)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	real := toReal(cfg, samples)
	return writeFloat64(*out, real)
}

func runDecode(args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	in := fs.String("in", "", "input signal file, float64 little-endian (required)")
	out := fs.String("out", "", "output payload file (required)")
	profile, qam, fftSize, nData, seed := codecFlags(fs)
	fs.Parse(args)

	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	cfg, err := buildConfig(*profile, *qam, *fftSize, *nData, *seed)
	if err != nil {
		return err
	}
	cd := codec.NewCodec(cfg)

	real, err := readFloat64(*in)
	if err != nil {
		return fmt.Errorf("read signal: %w", err)
	}

	buf := fromReal(cfg, real)

	_, _, offset, err := cd.FindSymbolStart(buf, 0, 0)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	dec := cd.InitDecode(buf, offset)
	var payload []byte
	for !dec.Exhausted() {
		chunk, score, err := dec.Decode()
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		log.Printf("decoded symbol at cursor, pilot score %.6f", score)
		payload = append(payload, chunk...)
	}

	return os.WriteFile(*out, payload, 0644)
}

func runDevices(args []string) error {
	if err := audio.Init(); err != nil {
		return fmt.Errorf("init portaudio: %w", err)
	}
	defer audio.Terminate()
	return audio.PrintDevices()
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "0.0.0.0:8080", "server address")
	uploadDir := fs.String("upload-dir", "./uploads", "upload directory")
	receiveDir := fs.String("receive-dir", "./received", "receive directory")
	fs.Parse(args)

	if err := audio.Init(); err != nil {
		return fmt.Errorf("init portaudio: %w", err)
	}
	defer audio.Terminate()

	os.MkdirAll(*uploadDir, 0755)
	os.MkdirAll(*receiveDir, 0755)

	handlers := server.NewHandlers(*uploadDir, *receiveDir)
	srv := server.NewServer(*addr, handlers, "./web/static")
	return srv.Start()
}

// toReal folds a Samples buffer down to the real signal domain that
// would actually ride a transmission channel, Nyquist-modulating
// complex baseband for the modern profile.
func toReal(cfg *codec.Config, s codec.Samples) []float64 {
	if s.IsReal() {
		return s.Real
	}
	return cfg.NyquistMod(s.Complex)
}

func fromReal(cfg *codec.Config, real []float64) codec.Samples {
	if cfg.Profile() == codec.ProfileLegacy {
		return codec.Samples{Real: real}
	}
	return codec.Samples{Complex: cfg.NyquistDemod(real)}
}

func writeFloat64(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return binary.Write(f, binary.LittleEndian, data)
}

func readFloat64(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw)%8 != 0 {
		return nil, fmt.Errorf("file length %d is not a multiple of 8 bytes", len(raw))
	}
	out := make([]float64, len(raw)/8)
	for i := range out {
		bits := binary.LittleEndian.Uint64(raw[i*8 : i*8+8])
		out[i] = math.Float64frombits(bits)
	}
	return out, nil
}
