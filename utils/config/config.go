package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type MapView struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Zoom      float64 `json:"zoom"`
}

type Config struct {
	Port           string
	AllowedOrigins []string
	JWTSecret      string
	AdminKeyHash   string

	DataPath        string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	MapStyle    string
	MapboxToken string
	InitialView MapView
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		AllowedOrigins:  splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AdminKeyHash:    os.Getenv("ADMIN_KEY_HASH"),
		DataPath:        getenv("DATA_PATH", "./data/cities.json"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getenv("MONGODB_DATABASE", "citymap"),
		MongoCollection: getenv("MONGODB_COLLECTION", "cities"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		MapStyle:        getenv("MAP_STYLE", "mapbox://styles/mapbox/streets-v11"),
		MapboxToken:     os.Getenv("MAPBOX_TOKEN"),
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.InitialView.Longitude, err = getFloat("MAP_CENTER_LON", -100); err != nil {
		return Config{}, err
	}
	if cfg.InitialView.Latitude, err = getFloat("MAP_CENTER_LAT", 40); err != nil {
		return Config{}, err
	}
	if cfg.InitialView.Zoom, err = getFloat("MAP_ZOOM", 3.5); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
