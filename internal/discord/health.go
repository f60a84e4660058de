package discord

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	DiscordConnected bool   `json:"discord_connected"`
	SchemaVersion    int    `json:"schema_version"`
	Timestamp        string `json:"timestamp"`
}

func (b *Bot) healthRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/health", b.healthHandler)
	return r
}

func (b *Bot) healthHandler(c *gin.Context) {
	resp := healthResponse{
		Status:           "healthy",
		Uptime:           time.Since(b.startTime).Round(time.Second).String(),
		DiscordConnected: b.session != nil && b.session.DataReady,
		Timestamp:        time.Now().Format(time.RFC3339),
	}
	code := http.StatusOK

	version, err := b.store.SchemaVersion(c.Request.Context())
	if err != nil {
		b.log.Warn().Err(err).Msg("health check: store unavailable")
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	resp.SchemaVersion = version

	c.JSON(code, resp)
}
