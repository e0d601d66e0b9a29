// Package config loads service settings from .env files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/holoscan/internal/scan"
)

// Environment keys.
const (
	EnvAddr            = "HOLOSCAN_ADDR"
	EnvDataDir         = "HOLOSCAN_DATA_DIR"
	EnvDBPath          = "HOLOSCAN_DB_PATH"
	EnvCameraID        = "HOLOSCAN_CAMERA_ID"
	EnvPluginDir       = "HOLOSCAN_PLUGIN_DIR"
	EnvStaticDir       = "HOLOSCAN_STATIC_DIR"
	EnvLogLevel        = "HOLOSCAN_LOG_LEVEL"
	EnvTray            = "HOLOSCAN_TRAY"
	EnvPoseSource      = "HOLOSCAN_POSE_SOURCE"
	EnvMotionThreshold = "HOLOSCAN_MOTION_THRESHOLD"
	EnvRevealURL       = "HOLOSCAN_REVEAL_URL"
	EnvDriftThreshold  = "HOLOSCAN_DRIFT_THRESHOLD"
	EnvHold            = "HOLOSCAN_HOLD"
	EnvTransitionDelay = "HOLOSCAN_TRANSITION_DELAY"
	EnvLineEntrance    = "HOLOSCAN_LINE_ENTRANCE"
	EnvSequenceWindow  = "HOLOSCAN_SEQUENCE_WINDOW"
)

// Pose sources.
const (
	// SourceCamera runs the local camera and hand detector.
	SourceCamera = "camera"
	// SourceBrowser takes poses from websocket clients.
	SourceBrowser = "browser"
)

// Service is everything the holoscan binary needs to start.
type Service struct {
	Addr            string
	DataDir         string
	DBPath          string
	CameraID        int
	PluginDir       string
	StaticDir       string
	LogLevel        string
	Tray            bool
	PoseSource      string
	MotionThreshold float64
	RevealURL       string

	DriftThreshold  float64
	HoldDuration    time.Duration
	TransitionDelay time.Duration
	LineEntrance    time.Duration
	SequenceWindow  time.Duration
}

// Load reads .env files into the environment. With no paths, ".env" is used.
// A missing file is an error callers may ignore.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Service from the environment, falling back to defaults.
func FromEnv() Service {
	def := scan.DefaultConfig()
	dataDir := GetEnv(EnvDataDir, defaultDataDir())

	return Service{
		Addr:            GetEnv(EnvAddr, ":8080"),
		DataDir:         dataDir,
		DBPath:          GetEnv(EnvDBPath, filepath.Join(dataDir, "holoscan.db")),
		CameraID:        GetEnvInt(EnvCameraID, 0),
		PluginDir:       GetEnv(EnvPluginDir, filepath.Join(dataDir, "plugins")),
		StaticDir:       GetEnv(EnvStaticDir, ""),
		LogLevel:        GetEnv(EnvLogLevel, "info"),
		Tray:            GetEnvBool(EnvTray, false),
		PoseSource:      GetEnv(EnvPoseSource, SourceCamera),
		MotionThreshold: GetEnvFloat(EnvMotionThreshold, 1.0),
		RevealURL:       GetEnv(EnvRevealURL, ""),

		DriftThreshold:  GetEnvFloat(EnvDriftThreshold, def.DriftThreshold),
		HoldDuration:    GetEnvDuration(EnvHold, def.HoldDuration),
		TransitionDelay: GetEnvDuration(EnvTransitionDelay, def.TransitionDelay),
		LineEntrance:    GetEnvDuration(EnvLineEntrance, scan.DefaultLineEntrance),
		SequenceWindow:  GetEnvDuration(EnvSequenceWindow, def.SequenceWindow),
	}
}

// Scan turns the tuning values into a scan.Config. The line schedule keeps
// its default offsets; only the entrance length is tunable.
func (s Service) Scan() scan.Config {
	cfg := scan.DefaultConfig()
	cfg.DriftThreshold = s.DriftThreshold
	cfg.HoldDuration = s.HoldDuration
	cfg.TransitionDelay = s.TransitionDelay
	cfg.SequenceWindow = s.SequenceWindow
	for i := range cfg.Lines {
		cfg.Lines[i].Entrance = s.LineEntrance
	}
	return cfg
}

// GetEnv returns the variable named by key, or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns key as an int, or fallback if unset or malformed.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat returns key as a float64, or fallback if unset or malformed.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool accepts anything strconv.ParseBool does.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// GetEnvDuration takes Go duration syntax ("600ms", "5s"). A bare number is
// read as milliseconds.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".holoscan"
	}
	return filepath.Join(home, ".holoscan")
}
