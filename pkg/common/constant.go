package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyDBType      string = "ECOGROW_DB_TYPE"
	EnvKeyDbPath      string = "ECOGROW_DB_PATH"
	EnvKeyDatabaseURL string = "ECOGROW_DATABASE_URL"

	EnvKeyHttpHostPort string = "ECOGROW_HTTP_HOST_PORT"

	EnvKeyMqttBrokerURL string = "ECOGROW_MQTT_BROKER_URL"
	EnvKeyMqttTopic     string = "ECOGROW_MQTT_TOPIC"
	EnvKeyMqttUsername  string = "ECOGROW_MQTT_USERNAME"
	EnvKeyMqttPassword  string = "ECOGROW_MQTT_PASSWORD"

	EnvKeySubMinIntervalSeconds   string = "ECOGROW_SUB_MIN_INTERVAL_SECONDS"
	EnvKeyRelayMinIntervalSeconds string = "ECOGROW_RELAY_MIN_INTERVAL_SECONDS"

	EnvKeyRiskModelURL     string = "ECOGROW_RISK_MODEL_URL"
	EnvKeySuggestionApiURL string = "ECOGROW_SUGGESTION_API_URL"
	EnvKeySuggestionApiKey string = "ECOGROW_SUGGESTION_API_KEY"

	EnvKeyJwtSecret string = "ECOGROW_JWT_SECRET"

	EnvKeyDefaultRate  string = "ECOGROW_DEFAULT_RATE"
	EnvKeyDefaultBurst string = "ECOGROW_DEFAULT_BURST"

	LoggerNameGreenhouseCore string = "greenhouse_core"
	LoggerNameRestfulServer  string = "restful_server"
	LoggerNameMqttConsumer   string = "mqtt_consumer"
	LoggerNameWsHub          string = "ws_hub"

	LoggerFieldCategory      string = "category"
	LoggerCategorySnapshot   string = "snapshot"
	LoggerCategoryThrottle   string = "throttle"
	LoggerCategoryThreshold  string = "threshold"
	LoggerCategoryAlert      string = "alert"
	LoggerCategoryRisk       string = "risk"
	LoggerCategorySuggestion string = "suggestion"
)
