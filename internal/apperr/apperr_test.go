package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	err := Validation(MsgMissingConstraints)

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, Body{Error: MsgMissingConstraints}, err.Body())
	assert.Equal(t, KindValidation, From(fmt.Errorf("wrapped: %w", err)).Kind)
}

func TestGeneration(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Generation(cause)

	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
	assert.Equal(t, Body{Error: MsgGenerationFailed, Details: "unexpected end of JSON input"}, err.Body())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindGeneration, From(err).Kind)
}

func TestFrom(t *testing.T) {
	v := Validation("bad")
	assert.Same(t, v, From(fmt.Errorf("ctx: %w", v)))

	g := From(errors.New("boom"))
	assert.Equal(t, KindGeneration, g.Kind)
	assert.Equal(t, "boom", g.Detail)
}
