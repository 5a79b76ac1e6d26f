package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"VALIDATION_ERROR", http.StatusBadRequest},
		{"AUTHORIZATION_ERROR", http.StatusForbidden},
		{"REGISTER_NOT_FOUND", http.StatusNotFound},
		{"DUPLICATE_SUBMISSION", http.StatusConflict},
		{"CONCURRENT_MODIFICATION", http.StatusConflict},
		{"ALREADY_EXISTS", http.StatusConflict},
		{"INSUFFICIENT_BALANCE", http.StatusUnprocessableEntity},
		{"CHANGE_INFEASIBLE", http.StatusUnprocessableEntity},
		{"PERSISTENCE_ERROR", http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestListRequestApplyDefaults(t *testing.T) {
	var req ListRequest
	req.ApplyDefaults()

	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)
	assert.Equal(t, "created_at", req.OrderBy)
	assert.Equal(t, "desc", req.OrderDir)
}
