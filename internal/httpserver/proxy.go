package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// proxyHandler relays JSON requests to the endpoint named in the query string.
func proxyHandler(rl *relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.Query("endpoint")
		if !rl.checkEndpoint(c, endpoint) {
			return
		}

		var body []byte
		method := c.Request.Method
		if method == http.MethodPost || method == http.MethodPut {
			raw, err := readJSONBody(c)
			if err != nil {
				rl.logger.Printf("proxy %s %s rejected (request %s): %v", method, endpoint, requestID(c), err)
				writeFailure(c, http.StatusInternalServerError, "Proxy request failed")
				return
			}
			body = raw
		}

		rl.forward(c, outbound{
			method:      method,
			endpoint:    endpoint,
			body:        body,
			contentType: "application/json",
			identity:    c.Request.Header,
		}, "Proxy request failed")
	}
}
