package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps carries what the gateway needs to reach the backend.
type Deps struct {
	BackendURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// newRelay checks the backend URL and falls back to http.DefaultClient, which
// sets no timeout of its own.
func newRelay(logger *log.Logger, deps Deps) (*relay, error) {
	var host string
	if deps.BackendURL != "" {
		u, err := url.ParseRequestURI(deps.BackendURL)
		if err != nil {
			return nil, fmt.Errorf("invalid backend url: %w", err)
		}
		host = u.Host
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	return &relay{
		backend: strings.TrimRight(deps.BackendURL, "/"),
		host:    host,
		client:  deps.HTTPClient,
		logger:  logger,
	}, nil
}

// buildRouter wires the gateway routes.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	rl, err := newRelay(logger, deps)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.BackendURL))

	api := router.Group("/api")
	{
		proxy := proxyHandler(rl)
		api.GET("/proxy", proxy)
		api.POST("/proxy", proxy)
		api.PUT("/proxy", proxy)
		api.DELETE("/proxy", proxy)
		api.POST("/proxy-upload", uploadHandler(rl))
	}

	billing := api.Group("/billing")
	{
		billing.POST("/my-plan", billingHandler(rl, "/billing/my-plan", "Internal server error"))
		billing.POST("/start-billing", billingHandler(rl, "/billing/start-billing", "Internal server error"))
		billing.POST("/save-start-billing", billingHandler(rl, "/billing/save-start-billing", "Internal server error"))

		callback := billing.Group("/start-billing-callback", callbackHeaders(), callbackCORS())
		callback.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })
		callback.POST("", billingHandler(rl, "/billing/start-billing-callback", "Billing callback failed"))
	}

	return router, nil
}

// callbackHeaders sets the callback's CORS headers on every response. The cors
// middleware only answers requests that carry an Origin header.
func callbackHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		c.Next()
	}
}

// callbackCORS lets the payment provider post the billing callback cross origin.
func callbackCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type"},
		OptionsResponseStatusCode: http.StatusOK,
	})
}
