package response

import (
	"errors"
	"net/http"
	"reflect"

	custom_error "assetdb/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Success writes {success: true, data, count} where count is set for slices.
func Success(c *gin.Context, status int, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice {
		body["count"] = v.Len()
	}
	c.JSON(status, body)
}

func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

// Message writes a success envelope with a human readable message.
func Message(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

func ErrorWithCode(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message, "code": code})
}

// FromError maps domain errors to status codes.
func FromError(c *gin.Context, err error) {
	switch {
	case custom_error.IsValidation(err):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, custom_error.ErrNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, custom_error.ErrConflict),
		custom_error.IsUniqueViolation(err),
		custom_error.IsForeignKeyViolation(err):
		Error(c, http.StatusConflict, err.Error())
	default:
		Error(c, http.StatusInternalServerError, err.Error())
	}
}
