// Package response holds the wire shapes of the record service. Errors are
// always {"error": msg} so clients can distinguish structured rejections from
// transport failures.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Err sends an error payload with the given status.
func Err(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func BadRequest(c *gin.Context, msg string) {
	Err(c, http.StatusBadRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	Err(c, http.StatusNotFound, msg)
}

func ServerError(c *gin.Context, msg string) {
	Err(c, http.StatusInternalServerError, msg)
}

// Message sends a 200 OK acknowledgement.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// CreatedRecord sends a 201 Created acknowledgement carrying the record id.
func CreatedRecord(c *gin.Context, id string) {
	c.JSON(http.StatusCreated, gin.H{"message": "Created", "id": id})
}
