package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message is the body of every error and acknowledgement response.
type Message struct {
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error sends status with a {"message": msg} body.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, Message{Message: msg})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, msg)
}
