package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/cart"
	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/lists"
	"shopease_back_end/internal/shop"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shop.ErrProductNotFound, http.StatusNotFound},
		{shop.ErrNotInCart, http.StatusNotFound},
		{checkout.ErrOrderNotFound, http.StatusNotFound},
		{shop.ErrInvalidQuantity, http.StatusBadRequest},
		{cart.ErrUnknownShippingMethod, http.StatusBadRequest},
		{checkout.ErrEmptyCart, http.StatusBadRequest},
		{auth.ErrEmailTaken, http.StatusConflict},
		{lists.ErrCompareFull, http.StatusConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", auth.ErrInvalidToken), http.StatusUnauthorized},
		{context.Canceled, http.StatusRequestTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusOf(tc.err), tc.err.Error())
	}
}
