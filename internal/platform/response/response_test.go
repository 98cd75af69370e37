package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"validation", apperr.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", apperr.NewNotFoundError("Wizard", "1"), http.StatusNotFound, "NOT_FOUND"},
		{"invalid state", apperr.NewInvalidStateError("step_1", "submitting"), http.StatusConflict, "INVALID_STATE"},
		{"forbidden", apperr.NewForbiddenError("no"), http.StatusForbidden, "FORBIDDEN"},
		{"unavailable", apperr.NewUnavailableError("catalog unavailable", errors.New("eof")), http.StatusBadGateway, "UNAVAILABLE"},
		{"wrapped", errors.Join(errors.New("ctx"), apperr.NewConflictError("dup")), http.StatusConflict, "CONFLICT"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			Error(c, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			var env Envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantBody, env.Error.Code)
		})
	}
}

func TestPaginated_Meta(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Paginated(c, []int{1, 2}, 5, 1, 2)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Meta)
	assert.Equal(t, 3, env.Meta.TotalPages)
}
