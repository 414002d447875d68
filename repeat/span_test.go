package repeat_test

import (
	"testing"

	"github.com/repeatlabs/trview/repeat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSpans(t *testing.T) {
	tests := []struct {
		encoding string
		want     []repeat.Span
	}{
		{".", nil},
		{"0(0-20)", []repeat.Span{{0, 0, 20}}},
		{"0(0-20)_0(25-45)", []repeat.Span{{0, 0, 20}, {0, 25, 45}}},
		{"1(3-9)_0(9-30)_2(31-40)", []repeat.Span{{1, 3, 9}, {0, 9, 30}, {2, 31, 40}}},
	}
	for _, tt := range tests {
		got, err := repeat.DecodeSpans(tt.encoding)
		require.NoError(t, err, tt.encoding)
		assert.Equal(t, tt.want, got, tt.encoding)
	}
}

func TestDecodeSpansErrors(t *testing.T) {
	bad := []string{
		"",
		"0(0-20",
		"0)0-20(",
		"(0-20)",
		"x(0-20)",
		"0(a-20)",
		"0(0-b)",
		"0(-1-20)",
		"0(0-20)_",
		"0(0--20)",
	}
	for _, encoding := range bad {
		_, err := repeat.DecodeSpans(encoding)
		assert.Error(t, err, "encoding %q", encoding)
	}
}

// Re-encoding a decoded span list must reproduce the original encoding.
func TestSpanEncodingRoundTrip(t *testing.T) {
	encodings := []string{
		".",
		"0(0-20)",
		"0(0-20)_0(25-45)",
		"2(0-6)_1(6-12)_0(15-33)",
	}
	for _, encoding := range encodings {
		spans, err := repeat.DecodeSpans(encoding)
		require.NoError(t, err)
		assert.Equal(t, encoding, repeat.EncodeSpans(spans))
	}
}

func TestDecodeMotifSpans(t *testing.T) {
	spansByAllele, err := repeat.DecodeMotifSpans("0(0-20)_0(25-45),.")
	require.NoError(t, err)
	require.Len(t, spansByAllele, 2)
	assert.Equal(t, []repeat.Span{{0, 0, 20}, {0, 25, 45}}, spansByAllele[0])
	assert.Nil(t, spansByAllele[1])

	_, err = repeat.DecodeMotifSpans("0(0-20),oops")
	assert.Error(t, err)
}
