package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := New(CodeInvalidAddress, "invalid recipient address")

	assert.True(t, Is(err, ErrInvalidAddress))
	assert.False(t, Is(err, ErrInvalidAmount))
}

func TestError_IsThroughWrap(t *testing.T) {
	err := Wrap(WithCause(CodeNetworkError, "simulate", stderrors.New("dial tcp: refused")), "build transfer")

	assert.True(t, Is(err, ErrNetwork))
	assert.Equal(t, CodeNetworkError, CodeOf(err))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("constraint not satisfied")
	err := WithCause(CodeProofGenerationFailed, "proof generation failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PROOF_GENERATION_FAILED")
	assert.Contains(t, err.Error(), "constraint not satisfied")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
}

func TestNewf(t *testing.T) {
	err := Newf(CodeInvalidSlippage, "slippage %d bps outside [%d, %d]", 900, 10, 500)
	assert.Equal(t, "INVALID_SLIPPAGE: slippage 900 bps outside [10, 500]", err.Error())
}
