package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/auth"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/models"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/ws"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

const (
	summaryWindow     = 24 * time.Hour
	trendDefaultHours = 24
	trendMaxHours     = 168
)

func (rs *RestfulServer) PostIngest(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if !rs.CheckOwnerLimiter(owner) {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests."})
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing or invalid sensor data."})
		return
	}

	co2, temp, hum, err := greenhouse.NormalizeRelayBody(raw)
	if err != nil {
		if errors.Is(err, greenhouse.ErrBadFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid format. Expected 'CO2: <val>, T: <val>, H: <val>'"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Missing or invalid sensor data."})
		}
		return
	}

	snap := &models.Snapshot{
		SourceID:    owner,
		CO2:         co2,
		Temperature: temp,
		Humidity:    hum,
		CapturedAt:  time.Now().UTC(),
	}

	admitted, err := rs.Gh.Snapshot.Ingest(greenhouse.PathRelay, snap)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if !admitted {
		c.JSON(http.StatusTooManyRequests, gin.H{"message": "Duplicate/Too frequent submission ignored."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Data ingested successfully."})
}

func (rs *RestfulServer) GetPredict(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	source := c.DefaultQuery("user_id", owner)
	cropType := c.DefaultQuery("crop_type", greenhouse.DefaultCrop)
	cropStage := c.DefaultQuery("crop_stage", "vegetative")

	snap, err := rs.Gh.Snapshot.Latest(source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	if snap == nil {
		verdict := rs.Gh.Risk.Classify(c.Request.Context(), nil, cropType, cropStage)
		c.JSON(http.StatusOK, gin.H{
			"risk":     verdict,
			"alerts":   []models.Alert{},
			"snapshot": nil,
		})
		return
	}

	ranges := rs.Gh.Threshold.Resolve(cropType, owner)
	alerts, err := rs.Gh.Alert.EvaluateAndStore(c.Request.Context(), snap, ranges, cropType, cropStage, owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	verdict := rs.Gh.Risk.Classify(c.Request.Context(), snap, cropType, cropStage)

	c.JSON(http.StatusOK, gin.H{
		"risk":     verdict,
		"alerts":   alerts,
		"snapshot": snap,
	})
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid limit parameter."})
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid offset parameter."})
		return
	}

	severity := models.AlertSeverity(c.Query("severity"))
	if severity != "" && severity != models.SeverityWarning && severity != models.SeverityCritical {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid severity filter."})
		return
	}

	alerts, total, err := rs.Gh.Alert.History(greenhouse.AlertQuery{
		Owner:    c.DefaultQuery("owner", owner),
		Severity: severity,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": total})
}

func (rs *RestfulServer) GetSummary(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	source := c.DefaultQuery("user_id", owner)
	summaries, err := rs.Gh.Snapshot.Summary(source, summaryWindow)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if summaries == nil {
		summaries = []models.MetricSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"summary": summaries, "window_hours": 24})
}

func (rs *RestfulServer) GetTrend(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	hours, err := intQuery(c, "hours", trendDefaultHours)
	if err != nil || hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid hours parameter."})
		return
	}
	if hours > trendMaxHours {
		hours = trendMaxHours
	}

	source := c.DefaultQuery("user_id", owner)
	trend, err := rs.Gh.Snapshot.HourlyTrend(source, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}
	if trend == nil {
		trend = []models.TrendBucket{}
	}

	c.JSON(http.StatusOK, gin.H{"trend": trend, "hours": hours})
}

func (rs *RestfulServer) GetThresholds(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	ranges := rs.Gh.Threshold.Resolve(c.Param("crop"), owner)
	c.JSON(http.StatusOK, gin.H{"crop": c.Param("crop"), "ranges": ranges})
}

type ThresholdRequest struct {
	CropName  string  `json:"crop_name"`
	Metric    string  `json:"metric"`
	CropStage string  `json:"crop_stage"`
	MinValue  float64 `json:"min_value"`
	MaxValue  float64 `json:"max_value"`
	Unit      string  `json:"unit"`
}

var thresholdRequestSchema = z.Struct(z.Shape{
	"CropName":  z.String().Required(),
	"Metric":    z.String().Required(),
	"CropStage": z.String(),
	"MinValue":  z.Float64().Required(),
	"MaxValue":  z.Float64().Required(),
	"Unit":      z.String(),
})

var validMetrics = map[models.MetricType]bool{
	models.MetricCO2:         true,
	models.MetricTemperature: true,
	models.MetricHumidity:    true,
}

func (rs *RestfulServer) PostThreshold(c *gin.Context) {
	owner, ok := auth.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req ThresholdRequest
	if err := thresholdRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	metric := models.MetricType(req.Metric)
	if !validMetrics[metric] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Metric must be one of co2, temperature, humidity."})
		return
	}
	if req.MinValue >= req.MaxValue {
		c.JSON(http.StatusBadRequest, gin.H{"message": "min_value must be less than max_value."})
		return
	}

	err := rs.Gh.Threshold.UpsertOverride(owner, &models.CropThreshold{
		CropName:  req.CropName,
		Metric:    metric,
		CropStage: req.CropStage,
		MinValue:  req.MinValue,
		MaxValue:  req.MaxValue,
		Unit:      req.Unit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
		return
	}

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) GetWebsocket(c *gin.Context) {
	if _, ok := auth.CallerID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	ws.ServeWs(rs.Hub, c.Writer, c.Request)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
