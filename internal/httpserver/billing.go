package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errEmptyBody = errors.New("empty request body")

// billingHandler relays a JSON body to a fixed billing endpoint.
// Billing relays do not forward identity headers; the body carries user_id.
func billingHandler(rl *relay, endpoint, failMsg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readJSONBody(c)
		if err == nil && body == nil {
			err = errEmptyBody
		}
		if err != nil {
			rl.logger.Printf("billing %s rejected (request %s): %v", endpoint, requestID(c), err)
			writeFailure(c, http.StatusInternalServerError, failMsg)
			return
		}

		rl.forward(c, outbound{
			method:      http.MethodPost,
			endpoint:    endpoint,
			body:        body,
			contentType: "application/json",
		}, failMsg)
	}
}
