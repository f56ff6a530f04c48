package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewModernDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, ProfileModern, cfg.profile)
	require.Equal(t, 64, cfg.n)
	require.Equal(t, 12, cfg.nData)
	require.Equal(t, 2, cfg.mQAM)
	require.Equal(t, 16, cfg.cyclic) // round(0.25*64)
}

func TestNewLegacyDefaults(t *testing.T) {
	cfg, err := NewLegacy()
	require.NoError(t, err)
	require.Equal(t, ProfileLegacy, cfg.profile)
	require.Equal(t, 2048, cfg.n)
	require.Equal(t, 256, cfg.nData)
	require.Equal(t, 512, cfg.cyclic)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want Kind
	}{
		{
			name: "negative fft size",
			opts: []Option{WithFFTSize(-1)},
			want: KindConfigInvalid,
		},
		{
			name: "odd mQAM",
			opts: []Option{WithQAM(3)},
			want: KindConfigInvalid,
		},
		{
			name: "mQAM evenly divides nData bits",
			opts: []Option{WithQAM(4), WithNData(1)},
			want: 0,
		},
		{
			name: "zero nData",
			opts: []Option{WithNData(0)},
			want: KindConfigInvalid,
		},
		{
			name: "cyclic out of range",
			opts: []Option{WithCyclicLen(1000)},
			want: KindConfigInvalid,
		},
		{
			name: "pilot index collides with DC",
			opts: []Option{WithExplicitPilots([]int{0}, 1)},
			want: KindConfigInvalid,
		},
		{
			name: "pilot index out of range",
			opts: []Option{WithExplicitPilots([]int{100}, 1)},
			want: KindConfigInvalid,
		},
		{
			name: "legacy distance too small",
			opts: []Option{WithDistancePilots(1, 1)},
			want: KindConfigInvalid,
		},
		{
			name: "nData too large for N",
			opts: []Option{WithNData(1000)},
			want: KindConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.want == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ce *Error
			require.True(t, errors.As(err, &ce))
			require.Equal(t, tt.want, ce.Kind)
		})
	}
}

func TestConfigErrorsIsSentinel(t *testing.T) {
	_, err := New(WithFFTSize(0))
	require.True(t, errors.Is(err, ErrConfigInvalid))
	require.False(t, errors.Is(err, ErrSyncFailed))
}
