package httpserver

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// uploadHandler relays a multipart form byte for byte, boundary included.
func uploadHandler(rl *relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.Query("endpoint")
		if !rl.checkEndpoint(c, endpoint) {
			return
		}

		contentType := c.GetHeader("Content-Type")
		mediaType, params, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "multipart/form-data" || params["boundary"] == "" {
			rl.logger.Printf("upload %s rejected (request %s): content type %q", endpoint, requestID(c), contentType)
			writeFailure(c, http.StatusInternalServerError, "Upload failed")
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			rl.logger.Printf("upload %s read body (request %s): %v", endpoint, requestID(c), err)
			writeFailure(c, http.StatusInternalServerError, "Upload failed")
			return
		}

		rl.forward(c, outbound{
			method:      http.MethodPost,
			endpoint:    endpoint,
			body:        body,
			contentType: contentType,
			identity:    c.Request.Header,
		}, "Upload failed")
	}
}
