package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"cheatdetect/pkg/detect"
)

type Config struct {
	ServiceName string
	LoggerLevel string
	LogFile     string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	MigrationsDir    string

	Countries []string
	RunDate   string

	BlobBackend  string
	Bucket       string
	BlobLocalDir string
	OutputPrefix string

	Thresholds detect.Thresholds
}

const (
	BlobBackendGCS   = "gcs"
	BlobBackendLocal = "local"
)

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "cheat-detect"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "info"))
	cfg.LogFile = cast.ToString(getOrReturnDefault("LOG_FILE", "/tmp/cheat-detect.log"))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", ""))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "analytics"))
	cfg.PostgresSSLMode = cast.ToString(getOrReturnDefault("POSTGRES_SSLMODE", "disable"))
	cfg.MigrationsDir = cast.ToString(getOrReturnDefault("MIGRATIONS_DIR", "migrations/postgres"))

	cfg.Countries = splitList(cast.ToString(getOrReturnDefault("COUNTRIES", "sg,vn")), strings.ToLower)
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	cfg.RunDate = cast.ToString(getOrReturnDefault("RUN_DATE", yesterday))

	cfg.BlobBackend = strings.ToLower(cast.ToString(getOrReturnDefault("BLOB_BACKEND", BlobBackendGCS)))
	cfg.Bucket = cast.ToString(getOrReturnDefault("BUCKET", ""))
	cfg.BlobLocalDir = cast.ToString(getOrReturnDefault("BLOB_LOCAL_DIR", "./out"))
	cfg.OutputPrefix = cast.ToString(getOrReturnDefault("OUTPUT_PREFIX", "import/etl/staging/cheat_detection"))

	cfg.Thresholds = loadThresholds("", detect.DefaultThresholds())
	cfg.Thresholds.AirportRegions = splitList(cast.ToString(getOrReturnDefault("AIRPORT_REGIONS", "機場")), nil)

	return cfg
}

// ThresholdsFor returns the global thresholds with any <CC>_<KEY> overrides
// for country applied on top.
func (c Config) ThresholdsFor(country string) detect.Thresholds {
	th := loadThresholds(strings.ToUpper(country)+"_", c.Thresholds)
	th.AirportRegions = append([]string(nil), c.Thresholds.AirportRegions...)
	return th
}

func loadThresholds(prefix string, base detect.Thresholds) detect.Thresholds {
	th := base

	th.RepeatGPSTimes = cast.ToInt(getOrReturnDefault(prefix+"REPEAT_GPS_TIMES", base.RepeatGPSTimes))
	th.RepeatGPSFrequency = cast.ToInt(getOrReturnDefault(prefix+"REPEAT_GPS_FREQUENCY", base.RepeatGPSFrequency))
	th.SpeedLimit = cast.ToFloat64(getOrReturnDefault(prefix+"SPEED_LIMIT", base.SpeedLimit))
	th.DistanceLimit = cast.ToFloat64(getOrReturnDefault(prefix+"DISTANCE_LIMIT", base.DistanceLimit))
	th.SpeedyFrequency = cast.ToInt(getOrReturnDefault(prefix+"SPEEDY_FREQUENCY", base.SpeedyFrequency))

	th.TravelSpeedLimit = cast.ToFloat64(getOrReturnDefault(prefix+"TRAVEL_SPEED_LIMIT", base.TravelSpeedLimit))
	th.TravelDistanceLimit = cast.ToFloat64(getOrReturnDefault(prefix+"TRAVEL_DISTANCE_LIMIT", base.TravelDistanceLimit))
	th.TravelFrequency = cast.ToInt(getOrReturnDefault(prefix+"TRAVEL_FREQUENCY", base.TravelFrequency))

	th.RepeatPickTimes = cast.ToInt(getOrReturnDefault(prefix+"REPEAT_PICKING_TIMES", base.RepeatPickTimes))
	th.RepeatPickFrequency = cast.ToInt(getOrReturnDefault(prefix+"REPEAT_PICKING_FREQUENCY", base.RepeatPickFrequency))
	th.PickAcceptThreshold = cast.ToFloat64(getOrReturnDefault(prefix+"PICK_ACCEPT_THRESHOLD", base.PickAcceptThreshold))
	th.FastActionMs = cast.ToFloat64(getOrReturnDefault(prefix+"FAST_ACTION_MS", base.FastActionMs))
	th.VeryFastActionMs = cast.ToFloat64(getOrReturnDefault(prefix+"VERY_FAST_ACTION_MS", base.VeryFastActionMs))
	th.AcceptDistanceLimit = cast.ToFloat64(getOrReturnDefault(prefix+"ACCEPT_DISTANCE_LIMIT", base.AcceptDistanceLimit))
	th.AcceptDistanceFrequency = cast.ToInt(getOrReturnDefault(prefix+"ACCEPT_DISTANCE_FREQUENCY", base.AcceptDistanceFrequency))

	return th
}

func splitList(s string, normalize func(string) string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if normalize != nil {
			part = normalize(part)
		}
		out = append(out, part)
	}
	return out
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
