package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type freq string

const (
	freqDaily  freq = "daily"
	freqWeekly freq = "weekly"
)

func newFreqNormalizer() *Normalizer[freq] {
	return NewNormalizer(map[string]freq{
		"daily":  freqDaily,
		"Weekly": freqWeekly,
	}, freqWeekly)
}

func TestNormalize(t *testing.T) {
	n := newFreqNormalizer()
	tests := []struct {
		in   string
		want freq
	}{
		{"daily", freqDaily},
		{"  DAILY ", freqDaily},
		{"weekly", freqWeekly},
		{"hourly", freqWeekly},
		{"", freqWeekly},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeWithError(t *testing.T) {
	n := newFreqNormalizer()

	v, err := n.NormalizeWithError("Daily")
	require.NoError(t, err)
	assert.Equal(t, freqDaily, v)

	_, err = n.NormalizeWithError("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily, weekly")
}

func TestValidKeysIsACopy(t *testing.T) {
	n := newFreqNormalizer()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"daily", "weekly"}, n.ValidKeys())
}
