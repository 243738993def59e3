package httpx

import (
	"net/http"

	platformservice "bicarb-server/internal/platform/service"

	"github.com/gin-gonic/gin"
)

// WriteServiceError writes a standardized HTTP error response for service-layer errors.
func WriteServiceError(c *gin.Context, err error, fallbackMessage string) {
	if serviceErr, ok := platformservice.AsServiceError(err); ok {
		body := gin.H{"error": serviceErr.Message}
		if len(serviceErr.Reasons) > 0 {
			body["errors"] = serviceErr.Reasons
		}
		c.JSON(serviceErrorStatus(serviceErr.Code), body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMessage})
}

func serviceErrorStatus(code platformservice.ErrorCode) int {
	switch code {
	// 请求格式错误由 handler 直接回 400；语义校验失败一律 422
	case platformservice.ErrorCodeValidation, platformservice.ErrorCodeUnprocessable:
		return http.StatusUnprocessableEntity
	case platformservice.ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case platformservice.ErrorCodeForbidden:
		return http.StatusForbidden
	case platformservice.ErrorCodeConflict:
		return http.StatusConflict
	case platformservice.ErrorCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
