package api

import (
	"net/http"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/gin-gonic/gin"
)

type HealthCheckAPI struct {
}

func NewHealthCheckAPI() *HealthCheckAPI {
	return &HealthCheckAPI{}
}

func (ha *HealthCheckAPI) HealthCheck(c *gin.Context) {
	version := global.Conf.Version
	mode := global.Conf.Mode
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version, "mode": mode})
}
