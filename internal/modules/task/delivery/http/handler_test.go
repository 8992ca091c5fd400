package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolibri.dev/communityquest/internal/catalog"
)

func TestGetTasks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/tasks", NewTaskHandler(catalog.Default()).GetTasks)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []catalog.Task `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 18)
	assert.Equal(t, "on1", resp.Data[0].ID)
	assert.Equal(t, "s3", resp.Data[len(resp.Data)-1].ID)
}
