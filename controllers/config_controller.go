package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/intranet/config"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// ConfigController serves service metadata derived from configuration.
type ConfigController struct {
	cfg config.AppConfig
}

func NewConfigController(cfg config.AppConfig) *ConfigController {
	return &ConfigController{cfg: cfg}
}

// Root greets API clients.
func (c *ConfigController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Welcome to Intranet API",
		"app_name": c.cfg.AppName,
		"version":  Version,
	})
}

// Health is used by load balancers and uptime checks.
func (c *ConfigController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"app_name": c.cfg.AppName,
	})
}
