package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCodeShape(t *testing.T) {
	t.Parallel()

	for i := 0; i < 200; i++ {
		code, err := GenerateNumericCode(CodeDigits)
		require.NoError(t, err)
		require.Len(t, code, CodeDigits)
		for _, c := range code {
			require.GreaterOrEqual(t, c, '0')
			require.LessOrEqual(t, c, '9')
		}
	}
}

func TestGenerateNumericCodeDigitDistribution(t *testing.T) {
	t.Parallel()

	// Rough uniformity check: each digit should land near 10% over a large
	// sample. Wide tolerance to keep the test deterministic in practice.
	const samples = 2000
	counts := make(map[rune]int)
	for i := 0; i < samples; i++ {
		code, err := GenerateNumericCode(CodeDigits)
		require.NoError(t, err)
		for _, c := range code {
			counts[c]++
		}
	}

	total := samples * CodeDigits
	for d := '0'; d <= '9'; d++ {
		freq := float64(counts[d]) / float64(total)
		require.InDelta(t, 0.1, freq, 0.03, "digit %c frequency %f", d, freq)
	}
}

func TestGenerateNumericCodeRejectsBadLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -1} {
		_, err := GenerateNumericCode(n)
		require.Error(t, err)
	}
}

func TestFingerprintCodeIsDeterministic(t *testing.T) {
	t.Parallel()

	fp1 := FingerprintCode("483920")
	fp2 := FingerprintCode("483920")
	require.Equal(t, fp1, fp2)
	require.NotEqual(t, fp1, FingerprintCode("483921"))
	require.Len(t, fp1, 43) // base64url of 32 bytes, no padding
}

func TestConstantTimeEquals(t *testing.T) {
	t.Parallel()

	require.True(t, ConstantTimeEquals("abc", "abc"))
	require.False(t, ConstantTimeEquals("abc", "abd"))
	require.False(t, ConstantTimeEquals("abc", "abcd"))
}
