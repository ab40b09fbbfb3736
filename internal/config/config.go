package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port     int
	Password string

	VideoSource     string // webcam index ("0") or file/RTSP URL
	ModelPath       string
	ModelConfigPath string
	LabelsPath      string

	DataDir      string
	ZonesFile    string
	ProductsDir  string
	ClipsDir     string
	DBPath       string
	LogDirectory string

	ConfThreshold   float64 // full scan
	RetryThreshold  float64 // permissive retry scan
	PersonThreshold float64 // person boxes for occupancy

	AnalyticsInterval time.Duration
	CaptureFPS        int
	BroadcastEveryNth int // send every Nth captured frame to viewers

	TaskQueueSize int
	TaskWorkers   int

	SearchURL     string
	SearchTimeout time.Duration

	EvidenceMaxSeconds int // max buffered evidence per zone, in seconds of capture
}

func Load() *Config {
	dataDir := getEnv("DATA_DIR", filepath.Join(".", "data"))
	return &Config{
		Port:     getEnvAsInt("PORT", 8080),
		Password: getEnv("PASSWORD", "shelfwatch"),

		VideoSource:     getEnv("VIDEO_SOURCE", "0"),
		ModelPath:       getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8x.onnx")),
		ModelConfigPath: getEnv("MODEL_CONFIG_PATH", ""),
		LabelsPath:      getEnv("LABELS_PATH", filepath.Join(".", "models", "labels.json")),

		DataDir:      dataDir,
		ZonesFile:    getEnv("ZONES_FILE", filepath.Join(dataDir, "zones", "zones.json")),
		ProductsDir:  getEnv("PRODUCTS_DIR", filepath.Join(dataDir, "products")),
		ClipsDir:     getEnv("CLIPS_DIR", filepath.Join(dataDir, "clips")),
		DBPath:       getEnv("DB_PATH", filepath.Join(dataDir, "evidence.db")),
		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),

		ConfThreshold:   getEnvAsFloat("CONF_THRESHOLD", 0.50),
		RetryThreshold:  getEnvAsFloat("RETRY_THRESHOLD", 0.35),
		PersonThreshold: getEnvAsFloat("PERSON_THRESHOLD", 0.15),

		AnalyticsInterval: time.Duration(getEnvAsInt("ANALYTICS_INTERVAL_MS", 500)) * time.Millisecond,
		CaptureFPS:        getEnvAsInt("CAPTURE_FPS", 30),
		BroadcastEveryNth: getEnvAsInt("BROADCAST_EVERY_NTH", 3),

		TaskQueueSize: getEnvAsInt("TASK_QUEUE_SIZE", 16),
		TaskWorkers:   getEnvAsInt("TASK_WORKERS", 1),

		SearchURL:     getEnv("SEARCH_URL", ""),
		SearchTimeout: time.Duration(getEnvAsInt("SEARCH_TIMEOUT_SEC", 15)) * time.Second,

		EvidenceMaxSeconds: getEnvAsInt("EVIDENCE_MAX_SECONDS", 300), // 5 minutes at capture cadence
	}
}

// EvidenceMaxFrames is the per-zone evidence buffer bound.
func (c *Config) EvidenceMaxFrames() int {
	return c.EvidenceMaxSeconds * c.CaptureFPS
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
