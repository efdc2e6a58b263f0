package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recoveryconnect/match-backend/internal/config"
)

// NewRouter builds the gin engine and mounts all provided registrars.
func NewRouter(cfg *config.Config, registrars ...Registrar) *gin.Engine {
	if cfg.App.ENV != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for _, r := range registrars {
		r.Register(router)
	}

	return router
}

// StartHTTPServer boots the HTTP server with all provided services registered
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	router := NewRouter(cfg, registrars...)
	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	return router.Run(addr)
}
