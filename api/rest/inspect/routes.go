package inspect

import (
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, now func() time.Time) {
	router.GET("/inspect", Handler(now))
}
