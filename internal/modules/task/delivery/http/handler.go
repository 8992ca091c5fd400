package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"kolibri.dev/communityquest/internal/catalog"
)

type TaskHandler struct {
	catalog *catalog.Catalog
}

func NewTaskHandler(cat *catalog.Catalog) *TaskHandler {
	return &TaskHandler{catalog: cat}
}

// GetTasks returns the full immutable catalog in insertion order.
func (h *TaskHandler) GetTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.catalog.All()})
}
