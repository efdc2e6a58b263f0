package connection

import (
	"github.com/gin-gonic/gin"

	"github.com/recoveryconnect/match-backend/internal/app"
)

// Registrar ties the connection request routes into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the connection service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the request lifecycle routes to the router
func (r *Registrar) Register(router *gin.Engine) {
	h := NewHandler(NewService(r.appCtx), r.appCtx.Logger)

	api := router.Group("/api/requests")
	{
		api.POST("", h.Create)
		api.GET("", h.List)
		api.GET("/pending/count", h.PendingCount)
		api.GET("/stats", h.Stats)
		api.GET("/:id", h.Get)
		api.POST("/:id/approve", h.Approve)
		api.POST("/:id/reject", h.Reject)
		api.POST("/:id/cancel", h.Cancel)
		api.POST("/:id/unmatch", h.Unmatch)
		api.POST("/:id/reconnect", h.Reconnect)
	}
}
