package commitment

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umbra/pkg/domain"
	"umbra/pkg/errors"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func fixedSalt(b byte) []byte {
	return bytes.Repeat([]byte{b}, SaltSize)
}

func TestCommitWithSalt_Deterministic(t *testing.T) {
	a, err := CommitWithSalt(big.NewInt(1_000_000), usdcMint, fixedSalt(7))
	require.NoError(t, err)
	b, err := CommitWithSalt(big.NewInt(1_000_000), usdcMint, fixedSalt(7))
	require.NoError(t, err)

	assert.Equal(t, a.Commitment, b.Commitment)
	assert.Len(t, a.Commitment, 64)
	assert.Equal(t, NullifierOf(a.Commitment), NullifierOf(b.Commitment))
	assert.NotEqual(t, a.Commitment, NullifierOf(a.Commitment))
}

func TestCommitWithSalt_BindsEveryInput(t *testing.T) {
	base, err := CommitWithSalt(big.NewInt(500), usdcMint, fixedSalt(1))
	require.NoError(t, err)

	otherValue, err := CommitWithSalt(big.NewInt(501), usdcMint, fixedSalt(1))
	require.NoError(t, err)
	otherAsset, err := CommitWithSalt(big.NewInt(500), "", fixedSalt(1))
	require.NoError(t, err)
	otherSalt, err := CommitWithSalt(big.NewInt(500), usdcMint, fixedSalt(2))
	require.NoError(t, err)

	assert.NotEqual(t, base.Commitment, otherValue.Commitment)
	assert.NotEqual(t, base.Commitment, otherAsset.Commitment)
	assert.NotEqual(t, base.Commitment, otherSalt.Commitment)
}

func TestCommit_FreshSaltsNeverCollide(t *testing.T) {
	engine := NewEngine()
	commitments := make(map[string]struct{})
	nullifiers := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		note, err := engine.Commit(big.NewInt(42), usdcMint)
		require.NoError(t, err)
		commitments[note.Commitment] = struct{}{}
		nullifiers[engine.NullifierOf(note.Commitment)] = struct{}{}
	}

	assert.Len(t, commitments, 200)
	assert.Len(t, nullifiers, 200)
}

func TestCommit_RejectsInvalidValues(t *testing.T) {
	engine := NewEngine()
	tooBig := new(big.Int).Lsh(big.NewInt(1), MaxValueBits)

	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5), tooBig} {
		_, err := engine.Commit(v, usdcMint)
		assert.ErrorIs(t, err, errors.ErrInvalidAmount)
	}

	maxOK := new(big.Int).Sub(tooBig, big.NewInt(1))
	_, err := engine.Commit(maxOK, usdcMint)
	assert.NoError(t, err)
}

func TestCommit_SaltSourceFailure(t *testing.T) {
	engine := NewEngineWithRand(iotest.ErrReader(assert.AnError))

	_, err := engine.Commit(big.NewInt(1), usdcMint)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCommitWithSalt_WrongSaltSize(t *testing.T) {
	_, err := CommitWithSalt(big.NewInt(1), usdcMint, []byte{1, 2, 3})
	assert.Error(t, err)
}

func TestNote_CopiesInputs(t *testing.T) {
	value := big.NewInt(10)
	salt := fixedSalt(3)
	note, err := CommitWithSalt(value, "", salt)
	require.NoError(t, err)

	value.SetInt64(99)
	salt[0] = 0xff

	assert.Equal(t, int64(10), note.Value.Int64())
	assert.Equal(t, byte(3), note.Salt[0])
	assert.Equal(t, domain.NativeMint, note.Asset)
	assert.Len(t, note.SaltHex(), SaltSize*2)
}

func TestNullifierOf_ArbitraryString(t *testing.T) {
	a := NullifierOf("not-a-commitment")
	b := NullifierOf("not-a-commitment")

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, NullifierOf("another"))
}

func TestValid(t *testing.T) {
	note, err := CommitWithSalt(big.NewInt(77), usdcMint, fixedSalt(9))
	require.NoError(t, err)

	assert.True(t, Valid(note.Commitment))
	assert.True(t, Valid(NullifierOf(note.Commitment)))

	assert.False(t, Valid(""))
	assert.False(t, Valid("not-a-commitment"))
	assert.False(t, Valid(note.Commitment[:62]))
	assert.False(t, Valid(strings.ToUpper(note.Commitment)))
	assert.False(t, Valid(strings.Repeat("f", 64)), "above the field modulus")
}

func TestToBigInt_RoundTripsCommitment(t *testing.T) {
	note, err := CommitWithSalt(big.NewInt(77), usdcMint, fixedSalt(9))
	require.NoError(t, err)

	n := ToBigInt(note.Commitment)
	assert.Equal(t, note.Commitment, leftPad(n.Text(16), 64))
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
