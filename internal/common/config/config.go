package config

import (
	"os"
	"strconv"
	"strings"

	"floorplan-sketch/internal/footprint"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	// Рисование
	SnapThreshold float64
	CanvasWidth   int
	CanvasHeight  int

	// Внешние сервисы
	OverpassURL     string
	FootprintRadius float64
	ExtractorURL    string
	HTTPTimeout     int

	SketchDBPath string
	CORSOrigins  []string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		SnapThreshold: getEnvAsFloat("SNAP_THRESHOLD", 10),
		CanvasWidth:   getEnvAsInt("CANVAS_WIDTH", 800),
		CanvasHeight:  getEnvAsInt("CANVAS_HEIGHT", 600),

		OverpassURL:     getEnv("OVERPASS_URL", footprint.DefaultOverpassURL),
		FootprintRadius: getEnvAsFloat("FOOTPRINT_RADIUS", 50),
		ExtractorURL:    getEnv("EXTRACTOR_URL", "http://localhost:5000"),
		HTTPTimeout:     getEnvAsInt("HTTP_TIMEOUT", 30),

		SketchDBPath: getEnv("SKETCH_DB_PATH", "data/db/sketches.db"),
		CORSOrigins:  getEnvAsList("CORS_ORIGINS"),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
