package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
)

// BodyLimit rejects documents larger than maxBytes. A declared Content-Length over
// the limit is refused before the handler runs; a streamed body is cut off by
// http.MaxBytesReader and surfaces as *http.MaxBytesError from the decoder.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			SetErrorCode(c, dto.ErrCodeRequestTooLarge)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
