package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTripModern(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	data := make([]byte, cfg.nData)
	for i := range data {
		data[i] = byte(i*37 + 11)
	}

	samples, err := cd.Encode(data)
	require.NoError(t, err)
	require.False(t, samples.IsReal())
	require.Equal(t, cd.SymbolSampleLen(), samples.Len())

	got, score, consumed, err := cd.decodeAt(samples, 0)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.InDelta(t, 0, score, 1e-9)
	require.Equal(t, cd.SymbolSampleLen(), consumed)
}

func TestEncodeDecodeRoundTripLegacy(t *testing.T) {
	cfg, err := NewLegacy()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	data := make([]byte, cfg.nData)
	for i := range data {
		data[i] = byte(i * 3)
	}

	samples, err := cd.Encode(data)
	require.NoError(t, err)
	require.True(t, samples.IsReal())
	require.Equal(t, cd.SymbolSampleLen(), samples.Len())

	got, _, _, err := cd.decodeAt(samples, 0)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestEncodeRejectsWrongLength(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	_, err = cd.Encode(make([]byte, cfg.nData+1))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestEncodeStreamAndDecoderStateMachine(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	payload := make([]byte, cfg.nData*3+4) // not a multiple: final symbol zero-padded
	for i := range payload {
		payload[i] = byte(i)
	}

	samples, err := cd.EncodeStream(payload)
	require.NoError(t, err)

	dec := cd.InitDecode(samples, 0)
	var recovered []byte
	for !dec.Exhausted() {
		data, score, err := dec.Decode()
		require.NoError(t, err)
		require.GreaterOrEqual(t, score, 0.0)
		recovered = append(recovered, data...)
	}

	require.Len(t, recovered, cfg.nData*4)
	require.Equal(t, payload, recovered[:len(payload)])
	for _, b := range recovered[len(payload):] {
		require.Equal(t, byte(0), b)
	}
}

func TestDecodeAtRejectsShortBuffer(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	cd := NewCodec(cfg)

	short := Samples{Complex: make([]complex128, 4)}
	_, _, _, err = cd.decodeAt(short, 0)
	require.Error(t, err)
}

func TestDecodeMismatchedScramblerCorruptsData(t *testing.T) {
	tx, err := New(WithSeed(1))
	require.NoError(t, err)
	rx, err := New(WithSeed(2))
	require.NoError(t, err)

	cdTx := NewCodec(tx)
	cdRx := NewCodec(rx)

	data := make([]byte, tx.nData)
	for i := range data {
		data[i] = byte(i + 1)
	}

	samples, err := cdTx.Encode(data)
	require.NoError(t, err)

	got, _, _, err := cdRx.decodeAt(samples, 0)
	require.NoError(t, err)
	require.NotEqual(t, data, got, "mismatched scrambler seeds must not round-trip")
}
