package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NotFound("order"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "loading order: order not found", err.Error())
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestMissingFields(t *testing.T) {
	err := MissingFields("phone", "city")

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, []string{"phone", "city"}, err.Fields)
	assert.Equal(t, "missing required fields: phone, city", err.Error())
}

func TestUpstream_KeepsDetailVerbatim(t *testing.T) {
	cause := errors.New("status 400")
	err := Upstream("payment verification failed", `{"detail":"Invalid token."}`, cause)

	e, ok := As(fmt.Errorf("verify: %w", err))
	assert.True(t, ok)
	assert.Equal(t, `{"detail":"Invalid token."}`, e.Detail)
	assert.ErrorIs(t, err, cause)
}

func TestIs_NilError(t *testing.T) {
	assert.False(t, Is(nil, KindInternal))
	assert.True(t, Is(Unauthorized("invalid credentials"), KindAuth))
}
