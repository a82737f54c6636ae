package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response shape every endpoint returns. Status is 1
// for success and 0 for any failure; Code carries the HTTP-like result code.
type Envelope struct {
	Status    int      `json:"status"`
	Code      int      `json:"code"`
	Message   string   `json:"message"`
	Errors    []string `json:"errors,omitempty"`
	Data      any      `json:"data,omitempty"`
	TotalPage int64    `json:"total_page"`
	Total     int64    `json:"total"`
}

func respondList(c *gin.Context, rows any, totalPage, total int64) {
	c.JSON(http.StatusOK, Envelope{
		Status:    1,
		Code:      http.StatusOK,
		Message:   "success",
		Data:      rows,
		TotalPage: totalPage,
		Total:     total,
	})
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{
		Status:  1,
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// respondConflict reports a user-facing business failure (booking not found,
// already assigned, ...). No retry is implied; the transport status stays 200.
func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{
		Status:  0,
		Code:    http.StatusConflict,
		Message: message,
	})
}

// respondValidation reports missing/malformed required fields. Nothing was
// executed.
func respondValidation(c *gin.Context, fieldErrors ...string) {
	c.JSON(http.StatusUnprocessableEntity, Envelope{
		Status:  0,
		Code:    http.StatusUnprocessableEntity,
		Message: "validation failed",
		Errors:  fieldErrors,
	})
}

// respondServerError hides infrastructure failures behind a generic message;
// the handler logs the full context separately.
func respondServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Envelope{
		Status:  0,
		Code:    http.StatusInternalServerError,
		Message: "something went wrong, please try again",
	})
}
