package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vegasq/insight/dataset"
	"github.com/vegasq/insight/internal/service"
)

type handlers struct {
	service *service.Service
	maxBody int64
}

func resultResponse(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func errorResponse(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *handlers) readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"datasets": len(h.service.ListDatasets()),
	})
}

// addDataset handles PUT /dataset/:id/:kind with the dataset content as body
func (h *handlers) addDataset(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	ids, err := h.service.AddDataset(c.Param("id"), c.Param("kind"), body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	resultResponse(c, ids)
}

// removeDataset handles DELETE /dataset/:id
func (h *handlers) removeDataset(c *gin.Context) {
	id, err := h.service.RemoveDataset(c.Param("id"))
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		errorResponse(c, http.StatusNotFound, err)
	case err != nil:
		errorResponse(c, http.StatusBadRequest, err)
	default:
		resultResponse(c, id)
	}
}

func (h *handlers) listDatasets(c *gin.Context) {
	resultResponse(c, h.service.ListDatasets())
}

// performQuery handles POST /query with a JSON query document as body
func (h *handlers) performQuery(c *gin.Context) {
	body, err := h.readBody(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}

	res, err := h.service.PerformQueryJSON(body)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err)
		return
	}
	resultResponse(c, res.Rows)
}
