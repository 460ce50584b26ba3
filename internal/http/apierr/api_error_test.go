package apierr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/http/apierr"
	"github.com/studentalliance/catalog-gateway/pkg/validator"
)

func TestNew(t *testing.T) {
	t.Run("Should map zerrors onto their HTTP status", func(t *testing.T) {
		res := apierr.New(apperr.ProductNotFoundErr)

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, apperr.ProductNotFoundCode, res.Code)
		assert.Equal(t, "product not found", res.Message)
	})

	t.Run("Should map remote taxonomy errors", func(t *testing.T) {
		assert.Equal(t, http.StatusServiceUnavailable, apierr.New(apperr.RemoteUnavailableErr).StatusCode)
		assert.Equal(t, http.StatusBadGateway, apierr.New(apperr.RemoteFaultErr).StatusCode)
		assert.Equal(t, http.StatusConflict, apierr.New(apperr.UploadInFlightErr).StatusCode)
		assert.Equal(t, http.StatusUnauthorized, apierr.New(apperr.UnauthorizedErr).StatusCode)
	})

	t.Run("Should expand field errors from the validator", func(t *testing.T) {
		v, err := validator.NewDefaultValidator()
		require.NoError(t, err)

		type form struct {
			Email string `validate:"required,email"`
		}
		verr := v.Validate(form{Email: "nope"})
		require.Error(t, verr)

		res := apierr.New(verr)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.NotNil(t, res.Details)
		require.Len(t, *res.Details, 1)
		assert.Equal(t, "Email", (*res.Details)[0].Field)
	})

	t.Run("Should hide unknown errors behind a 500", func(t *testing.T) {
		res := apierr.New(errors.New("database exploded"))

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Equal(t, "an unknown error occurred", res.Message)
	})
}
