package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/forecast-display/internal/validation"
)

// Power modes.
const (
	ModeOnce    = "once"
	ModeLoop    = "loop"
	ModePreview = "preview"
)

// Config holds station configuration loaded from YAML, secrets and env.
type Config struct {
	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration
	Units             string

	Latitude  float64
	Longitude float64

	NumHours   int
	HourStep   int
	PopHeight  int
	HourHeight int

	DisplayDriver string
	OutputPath    string
	Width         int
	Height        int
	RefreshWait   time.Duration

	SpriteSheet string

	PowerMode     string
	WakeAlarmPath string

	MetricsTextfile string

	PreviewPort    string
	RateLimitRPS   int
	RateLimitBurst int
	RequestTimeout time.Duration

	ShutdownTimeout time.Duration
}

type fileConfig struct {
	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
		Units   string `yaml:"units"`
	} `yaml:"weather_api"`

	Layout struct {
		NumHours   int `yaml:"num_hours"`
		HourStep   int `yaml:"hour_step"`
		PopHeight  int `yaml:"pop_height"`
		HourHeight int `yaml:"hour_height"`
	} `yaml:"layout"`

	Display struct {
		Driver      string `yaml:"driver"`
		OutputPath  string `yaml:"output_path"`
		Width       int    `yaml:"width"`
		Height      int    `yaml:"height"`
		RefreshWait string `yaml:"refresh_wait"`
	} `yaml:"display"`

	Icons struct {
		SpriteSheet string `yaml:"sprite_sheet"`
	} `yaml:"icons"`

	Power struct {
		Mode          string `yaml:"mode"`
		WakeAlarmPath string `yaml:"wakealarm_path"`
	} `yaml:"power"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`

	Preview struct {
		Port           string `yaml:"port"`
		RateLimitRPS   int    `yaml:"rate_limit_rps"`
		RateLimitBurst int    `yaml:"rate_limit_burst"`
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"preview"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

// secretsFile mirrors the device's secrets.yaml key names.
type secretsFile struct {
	OpenWeatherToken string   `yaml:"openweather_token"`
	Lat              *float64 `yaml:"lat"`
	Long             *float64 `yaml:"long"`
}

// Load reads .env (optional), config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml.
// WEATHER_API_KEY, LATITUDE and LONGITUDE override the secrets file. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	sec, err := loadSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey = sec.OpenWeatherToken
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env or config/secrets.yaml openweather_token)")
	}

	if cfg.Latitude, err = coordinate("LATITUDE", sec.Lat); err != nil {
		return nil, err
	}
	if cfg.Longitude, err = coordinate("LONGITUDE", sec.Long); err != nil {
		return nil, err
	}

	cfg.WeatherAPIURL = fc.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.openweathermap.org/data/3.0/onecall"
	}
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 10*time.Second)
	cfg.Units = strings.ToLower(strings.TrimSpace(fc.WeatherAPI.Units))
	if cfg.Units == "" {
		cfg.Units = "imperial"
	}

	cfg.NumHours = fc.Layout.NumHours
	cfg.HourStep = fc.Layout.HourStep
	cfg.PopHeight = fc.Layout.PopHeight
	cfg.HourHeight = fc.Layout.HourHeight

	cfg.DisplayDriver = strings.ToLower(strings.TrimSpace(fc.Display.Driver))
	if cfg.DisplayDriver == "" {
		cfg.DisplayDriver = "png"
	}
	cfg.OutputPath = fc.Display.OutputPath
	if cfg.OutputPath == "" {
		cfg.OutputPath = "forecast.png"
	}
	cfg.Width = fc.Display.Width
	cfg.Height = fc.Display.Height
	cfg.RefreshWait = parseDurationOrZero(fc.Display.RefreshWait, 0)

	cfg.SpriteSheet = fc.Icons.SpriteSheet
	if cfg.SpriteSheet == "" {
		cfg.SpriteSheet = filepath.Join("assets", "icons.bmp")
	}

	cfg.PowerMode = strings.ToLower(strings.TrimSpace(os.Getenv("POWER_MODE")))
	if cfg.PowerMode == "" {
		cfg.PowerMode = strings.ToLower(strings.TrimSpace(fc.Power.Mode))
	}
	if cfg.PowerMode == "" {
		cfg.PowerMode = ModeOnce
	}
	cfg.WakeAlarmPath = fc.Power.WakeAlarmPath

	cfg.MetricsTextfile = fc.Metrics.Textfile

	cfg.PreviewPort = fc.Preview.Port
	if cfg.PreviewPort == "" {
		cfg.PreviewPort = "8080"
	}
	cfg.RateLimitRPS = fc.Preview.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 1
	}
	cfg.RateLimitBurst = fc.Preview.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 5
	}
	cfg.RequestTimeout = parseDuration(fc.Preview.RequestTimeout, 15*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 10*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadSecrets(path string) (secretsFile, error) {
	var sec secretsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sec, nil
		}
		return sec, fmt.Errorf("read secrets file: %w", err)
	}
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return sec, fmt.Errorf("parse secrets file: %w", err)
	}
	return sec, nil
}

// coordinate prefers the env var, then the secrets value.
func coordinate(envKey string, fromSecrets *float64) (float64, error) {
	if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", envKey, validation.ErrCoordinateSyntax)
		}
		return v, nil
	}
	if fromSecrets == nil {
		return 0, fmt.Errorf("%s required (set env or config/secrets.yaml)", envKey)
	}
	return *fromSecrets, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Zero or negative durations are returned as-is.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate rejects values the pipeline cannot run with. Zero layout and display sizes
// are left for the consuming packages to default.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("WEATHER_API_TIMEOUT must be positive")
	}
	if err := validation.ValidateCoordinates(cfg.Latitude, cfg.Longitude); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch cfg.Units {
	case "imperial", "metric", "standard":
	default:
		return fmt.Errorf("weather_api.units must be imperial, metric or standard, got %q", cfg.Units)
	}
	switch cfg.DisplayDriver {
	case "png", "waveshare2in13v4":
	default:
		return fmt.Errorf("display.driver must be png or waveshare2in13v4, got %q", cfg.DisplayDriver)
	}
	switch cfg.PowerMode {
	case ModeOnce, ModeLoop, ModePreview:
	default:
		return fmt.Errorf("power.mode must be once, loop or preview, got %q", cfg.PowerMode)
	}
	for name, v := range map[string]int{
		"layout.num_hours":   cfg.NumHours,
		"layout.hour_step":   cfg.HourStep,
		"layout.pop_height":  cfg.PopHeight,
		"layout.hour_height": cfg.HourHeight,
		"display.width":      cfg.Width,
		"display.height":     cfg.Height,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	if cfg.RefreshWait < 0 {
		return fmt.Errorf("display.refresh_wait must not be negative")
	}
	return nil
}
