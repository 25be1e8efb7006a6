package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"lead-backend/internal/distribution"
	"lead-backend/internal/repositories"
	"lead-backend/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestServiceErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"repo not found", repositories.ErrNotFound, http.StatusNotFound},
		{"lead not found", distribution.ErrLeadNotFound, http.StatusNotFound},
		{"already assigned", distribution.ErrAlreadyAssigned, http.StatusConflict},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serviceErrorStatus(tc.err))
		})
	}
}

func TestServiceErrorStatusUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("distributing lead 7: %w", distribution.ErrAlreadyAssigned)
	assert.Equal(t, http.StatusConflict, serviceErrorStatus(wrapped))

	wrapped = fmt.Errorf("loading lead 7: %w", distribution.ErrLeadNotFound)
	assert.Equal(t, http.StatusNotFound, serviceErrorStatus(wrapped))
}
