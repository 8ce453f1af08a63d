package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "markethub/internal/errors"
)

func TestProductsClient_DeactivateByUser(t *testing.T) {
	t.Run("success on 2xx", func(t *testing.T) {
		var gotMethod, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := NewProductsClient(srv.URL)
		err := c.DeactivateByUser(context.Background(), 42)

		assert.NoError(t, err)
		assert.Equal(t, http.MethodPatch, gotMethod)
		assert.Equal(t, "/api/products/deactivate-by-user/42", gotPath)
	})

	t.Run("server error maps to upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewProductsClient(srv.URL)
		err := c.DeactivateByUser(context.Background(), 42)

		assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	})

	t.Run("unreachable host maps to upstream unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		c := NewProductsClient(srv.URL)
		err := c.DeactivateByUser(context.Background(), 42)

		assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	})

	t.Run("missing base URL", func(t *testing.T) {
		c := NewProductsClient("")
		err := c.DeactivateByUser(context.Background(), 42)

		assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
	})

	t.Run("trailing slash on base URL is trimmed", func(t *testing.T) {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		c := NewProductsClient(srv.URL + "/")
		err := c.DeactivateByUser(context.Background(), 7)

		assert.NoError(t, err)
		assert.Equal(t, "/api/products/deactivate-by-user/7", gotPath)
	})
}
