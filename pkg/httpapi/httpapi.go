// Package httpapi exposes the document models as a JSON HTTP API.
//
//	GET  /api/v1/models        lists the models and their input schemas
//	POST /api/v1/models/:name  runs a model over the posted document
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/germanamz/docpipe/pkg/tools/toolbox"
	"github.com/gin-gonic/gin"
)

// maxBody bounds the size of a posted document.
const maxBody = 4 << 20

// ModelInfo describes a model in the listing.
type ModelInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// NewRouter returns a gin engine serving tb. A nil log uses slog.Default.
func NewRouter(tb *toolbox.ToolBox, log *slog.Logger) *gin.Engine {
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/models", listModels(tb))
		v1.POST("/models/:name", runModel(tb))
	}

	return router
}

func listModels(tb *toolbox.ToolBox) gin.HandlerFunc {
	return func(c *gin.Context) {
		tools := tb.Tools()
		out := make([]ModelInfo, len(tools))
		for i, t := range tools {
			out[i] = ModelInfo{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
		}
		c.IndentedJSON(http.StatusOK, out)
	}
}

func runModel(tb *toolbox.ToolBox) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.IndentedJSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
				return
			}
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "reading request body failed"})
			return
		}

		result, err := tb.Call(c.Request.Context(), name, body)
		switch {
		case errors.Is(err, toolbox.ErrToolNotFound):
			c.IndentedJSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		case errors.Is(err, toolbox.ErrInvalidInput):
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		case err != nil:
			c.IndentedJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(result))
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.InfoContext(c.Request.Context(), "httpapi.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}
