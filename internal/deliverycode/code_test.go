package deliverycode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	for i := 0; i < 2000; i++ {
		code := Generate()
		require.Len(t, code, Length)
		for _, c := range code {
			require.Truef(t, strings.ContainsRune(Alphabet, c), "unexpected character %q in %q", c, code)
		}
		assert.NotContainsf(t, code, "0", "code %q", code)
		assert.NotContainsf(t, code, "1", "code %q", code)
		assert.NotContainsf(t, code, "I", "code %q", code)
		assert.NotContainsf(t, code, "O", "code %q", code)
		assert.Equal(t, strings.ToUpper(code), code)
	}
}

func TestGenerateUsesWholeAlphabet(t *testing.T) {
	seen := make(map[rune]bool)
	for i := 0; i < 1000; i++ {
		for _, c := range Generate() {
			seen[c] = true
		}
	}
	assert.Len(t, seen, len(Alphabet))
}

func TestGenerateN(t *testing.T) {
	codes, err := GenerateN(3)
	require.NoError(t, err)
	require.Len(t, codes, 3)
	for _, c := range codes {
		assert.Len(t, c, Length)
		assert.Equal(t, Normalize(c), c)
	}
}

func TestHashKnownValue(t *testing.T) {
	h := Hash("AB12CD")
	assert.Equal(t, "f655ab61b1ead34b8294f96cdbeca9aa2ceacb42560d1f2b8f724075f26da5e5", h)
	assert.True(t, IsValidHash(h))
}

func TestHashIsCaseAndWhitespaceInsensitive(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := Generate()
		assert.Equal(t, Hash(code), Hash(strings.ToLower(code)))
		assert.Equal(t, Hash(code), Hash("  "+strings.ToLower(code)+"\n"))
	}
}

func TestMatches(t *testing.T) {
	stored := Hash("AB12CD")
	assert.True(t, Matches("ab12cd", stored))
	assert.True(t, Matches(" AB12CD ", stored))
	assert.True(t, Matches("AB12CD", strings.ToUpper(stored)))
	assert.False(t, Matches("ZZZZZZ", stored))
	assert.False(t, Matches("", stored))
	assert.False(t, Matches("AB12CD", ""))
}

func TestIsValidHash(t *testing.T) {
	assert.False(t, IsValidHash(""))
	assert.False(t, IsValidHash("abc"))
	assert.False(t, IsValidHash(strings.Repeat("G", HashLength)))
	assert.False(t, IsValidHash(strings.ToUpper(Hash("X"))))
	assert.True(t, IsValidHash(Hash("X")))
}
