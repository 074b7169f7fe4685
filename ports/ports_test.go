package ports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	cases := map[string]Range{
		"22":          {22},
		" 443 ":       {443},
		"80,443,8080": {80, 443, 8080},
		"443,80":      {443, 80},
		"22,22,80":    {22, 80},
		"1-5":         {1, 2, 3, 4, 5},
		"5-1":         {1, 2, 3, 4, 5},
		"80-80":       {80},
	}
	for spec, want := range cases {
		t.Run(spec, func(t *testing.T) {
			got, err := Parse(spec)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_RangeCardinality(t *testing.T) {
	got, err := Parse("1-1024")
	require.NoError(t, err)
	require.Len(t, got, 1024)
	for i, p := range got {
		require.Equal(t, i+1, p)
	}
}

func TestParse_ReversedRangeEquivalence(t *testing.T) {
	fwd, err := Parse("1-1024")
	require.NoError(t, err)
	rev, err := Parse("1024-1")
	require.NoError(t, err)
	assert.Equal(t, fwd, rev)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]ErrorKind{
		"":          KindMalformed,
		"   ":       KindMalformed,
		"abc":       KindMalformed,
		"-5":        KindMalformed,
		"1-2-3":     KindMalformed,
		"a-b":       KindMalformed,
		"80000":     KindOutOfRange,
		"0":         KindOutOfRange,
		"0-100":     KindOutOfRange,
		"1-70000":   KindOutOfRange,
		"80,abc":    KindInvalidPort,
		"80,":       KindInvalidPort,
		"80,1-1024": KindInvalidPort,
		"22,0":      KindOutOfRange,
	}
	for spec, kind := range cases {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, kind, perr.Kind)
		})
	}
}

func TestParse_NoSideEffectsOnError(t *testing.T) {
	got, err := Parse("22,80,bad")
	assert.Nil(t, got)
	assert.Error(t, err)
}
