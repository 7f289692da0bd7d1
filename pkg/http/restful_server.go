package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/auth"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/ws"
)

type RestfulServer struct {
	Server           *gin.Engine
	Gh               *greenhouse.Greenhouse
	Hub              *ws.Hub
	RateLimiterStore *greenhouse.RateLimiterStore
	JwtSecret        []byte
}

func (rs *RestfulServer) GetLimiter(ownerID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(ownerID)
	}
}

func (rs *RestfulServer) CheckOwnerLimiter(ownerID string) bool {
	limiter := rs.GetLimiter(ownerID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	api := rs.Server.Group("/api")
	api.Use(auth.Middleware(rs.JwtSecret))
	{
		api.POST("/sensors/ingest", rs.PostIngest)
		api.GET("/sensors/summary", rs.GetSummary)
		api.GET("/sensors/trend", rs.GetTrend)
		api.GET("/ai/predict", rs.GetPredict)
		api.GET("/alerts", rs.GetAlerts)
		api.GET("/thresholds/:crop", rs.GetThresholds)
		api.POST("/thresholds", rs.PostThreshold)
	}

	rs.Server.GET("/ws", auth.Middleware(rs.JwtSecret), rs.GetWebsocket)
}
