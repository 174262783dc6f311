// Package handler implements the HTTP API endpoints.
package handler

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body shape for every endpoint.
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

func errorJSON(c *gin.Context, status int, code, message string, err error) {
	resp := ErrorResponse{
		Code:    code,
		Message: message,
	}
	if err != nil {
		resp.Details = stringPtr(err.Error())
	}
	c.JSON(status, resp)
}

func stringPtr(s string) *string {
	return &s
}
