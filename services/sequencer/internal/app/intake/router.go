package intake

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/exchange/pkg/httplib/healthcheck"
	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/util"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires the handler routes onto a gin engine.
func NewRouter(h *Handler, health healthcheck.HealthCheck, log logger.Interface) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestContext(), accessLog(log))

	router.GET("/health", gin.WrapH(health))

	v1 := router.Group("/v1")
	v1.POST("/orders", h.PlaceOrder)
	v1.POST("/orders/cancel", h.CancelOrder)
	v1.POST("/markets/:market/boundary", h.CloseBatch)
	v1.GET("/markets/:market/book", h.GetBook)
	v1.GET("/accounts/:account/positions", h.ListPositions)

	return router
}

// requestContext carries the caller's request id, or a new one, on the request context.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := util.WithRequestID(c.Request.Context(), c.GetHeader(requestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, util.GetRequestID(ctx))
		c.Next()
	}
}

func accessLog(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.DebugContext(c.Request.Context(), "Request served",
			logger.Field{Key: "method", Value: c.Request.Method},
			logger.Field{Key: "path", Value: c.FullPath()},
			logger.Field{Key: "status", Value: c.Writer.Status()},
			logger.Field{Key: "duration", Value: time.Since(start).String()},
		)
	}
}
