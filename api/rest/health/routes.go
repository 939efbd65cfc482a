package health

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, v1 *gin.RouterGroup, reporter EventReporter) {
	router.GET("/health", Handler(reporter))
	v1.GET("/ping", PingHandler)
}
