package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ecogrow.xyz/greenhouse-sensor-service/pkg/common"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/db"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/greenhouse"
	ghHttp "ecogrow.xyz/greenhouse-sensor-service/pkg/http"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/mqtt"
	"ecogrow.xyz/greenhouse-sensor-service/pkg/ws"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	dbType := os.Getenv(common.EnvKeyDBType)
	switch dbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	case "postgres":
		dbInstance = db.GetInstance(db.UsePostgresDialector())
	default:
		log.Fatal("Unknown ECOGROW_DB_TYPE: " + dbType)
	}

	jwtSecret := strings.TrimSpace(os.Getenv(common.EnvKeyJwtSecret))
	if jwtSecret == "" {
		log.Fatal("ECOGROW_JWT_SECRET not set in .env")
	}

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyDefaultRate), 64); err != nil {
		log.Fatal("Invalid ECOGROW_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid ECOGROW_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()

	gh := greenhouse.Greenhouse{
		Db:               *dbInstance,
		SubMinInterval:   intervalFromEnv(common.EnvKeySubMinIntervalSeconds, greenhouse.DefaultSubMinInterval),
		RelayMinInterval: intervalFromEnv(common.EnvKeyRelayMinIntervalSeconds, greenhouse.DefaultRelayMinInterval),
	}

	if modelURL := strings.TrimSpace(os.Getenv(common.EnvKeyRiskModelURL)); modelURL != "" {
		gh.ModelClient = greenhouse.NewHTTPRiskModelClient(modelURL)
		logger.Info("Risk model client configured", zap.String("url", modelURL))
	} else {
		logger.Info("No risk model configured, classification runs on rules only")
	}

	suggestionURL := strings.TrimSpace(os.Getenv(common.EnvKeySuggestionApiURL))
	suggestionKey := strings.TrimSpace(os.Getenv(common.EnvKeySuggestionApiKey))
	if suggestionURL != "" && suggestionKey != "" {
		gh.Generator = greenhouse.NewHTTPSuggestionGenerator(suggestionURL, suggestionKey)
		logger.Info("Suggestion generator configured", zap.String("url", suggestionURL))
	} else {
		logger.Info("No suggestion generator configured, using the static table")
	}

	gh.WithDefaults()
	gh.WithServices(greenhouse.ServiceOpts{
		Snapshot:  gh.GetISnapshot(),
		Alert:     gh.GetIAlert(),
		Threshold: gh.GetIThreshold(),
		Risk:      gh.GetIRisk(),
		Suggest:   gh.GetISuggest(),
	})

	hub := ws.NewHub()
	go hub.Run()

	var consumer *mqtt.Consumer
	if brokerURL := strings.TrimSpace(os.Getenv(common.EnvKeyMqttBrokerURL)); brokerURL != "" {
		consumer = mqtt.NewConsumer(&gh, hub, mqtt.Options{
			BrokerURL: brokerURL,
			Topic:     os.Getenv(common.EnvKeyMqttTopic),
			Username:  os.Getenv(common.EnvKeyMqttUsername),
			Password:  os.Getenv(common.EnvKeyMqttPassword),
		})
		if err := consumer.Start(); err != nil {
			logger.Error("Failed to start MQTT consumer, subscription path disabled", zap.Error(err))
			consumer = nil
		} else {
			logger.Info("MQTT consumer started", zap.String("broker", brokerURL))
		}
	} else {
		logger.Info("No MQTT broker configured, subscription path disabled")
	}

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyHttpHostPort))
	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	engine := gin.Default()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	rs := &ghHttp.RestfulServer{
		Server:           engine,
		Gh:               &gh,
		Hub:              hub,
		RateLimiterStore: greenhouse.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
		JwtSecret:        []byte(jwtSecret),
	}
	rs.Setup()

	logger.Info("http server created with:",
		zap.String("default_limiter",
			fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst)))

	server := &http.Server{Addr: httpHostPort, Handler: rs.Server}

	go func() {
		logger.Info("Starting HTTP server on: " + httpHostPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	if consumer != nil {
		consumer.Stop()
	}
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("Stopped")
}

func intervalFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Fatalf("Invalid %s, should be a positive integer number of seconds", key)
	}
	return time.Duration(seconds) * time.Second
}
