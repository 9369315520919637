package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ScheduleInterval = "interval"
	ScheduleDailyAt  = "daily_at"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	TuShare struct {
		Token   string        `yaml:"token"`
		BaseURL string        `yaml:"base_url" default:"https://api.tushare.pro" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" default:"30s" validate:"gte=0"`
		Fields  []string      `yaml:"fields"`

		// Calls per minute allowed by the account; 0 disables throttling.
		CallsPerMinute int `yaml:"calls_per_minute" default:"50" validate:"gte=0"`
	} `yaml:"tushare"`
	Push struct {
		SendKey string        `yaml:"send_key"`
		BaseURL string        `yaml:"base_url" default:"https://sctapi.ftqq.com" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gte=0"`
	} `yaml:"push"`
	Window struct {
		Start string `yaml:"start" validate:"omitempty,len=8,numeric"`
		End   string `yaml:"end" validate:"omitempty,len=8,numeric"`
	} `yaml:"window"`
	Output struct {
		RawPath     string `yaml:"raw_path" default:"data/ipo_raw.csv" validate:"required"`
		MonthlyPath string `yaml:"monthly_path" default:"data/ipo_monthly.csv" validate:"required"`
	} `yaml:"output"`
	Schedule struct {
		Mode          string  `yaml:"mode" default:"interval" validate:"oneof=interval daily_at"`
		IntervalHours float64 `yaml:"interval_hours" default:"24" validate:"gt=0"`
		At            string  `yaml:"at"`
		RunOnStart    bool    `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix" default:"ipowatch"`
		LockTTL  time.Duration `yaml:"lock_ttl" default:"30m"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"ipowatch"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"ipo.monthly"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
}

var validate = validator.New()

// Default returns a config populated from struct defaults only.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := validate.Struct(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML, then the project .env file, and
// overrides with environment variables. Real environment variables win over
// .env entries.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if envPath, ok := FindDotEnv(""); ok {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	c.ApplyEnv()
	return c, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TUSHARE_TOKEN"); v != "" {
		c.TuShare.Token = v
	}
	if v := firstEnv("SCT_SENDKEY", "SERVERCHAN_SENDKEY"); v != "" {
		c.Push.SendKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

// Validate checks if the configuration is complete enough to run a pass.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if strings.TrimSpace(c.TuShare.Token) == "" {
		return fmt.Errorf("tushare token is required (--token, TUSHARE_TOKEN or tushare.token)")
	}
	if c.Schedule.Mode == ScheduleDailyAt {
		if _, err := time.Parse("15:04", c.Schedule.At); err != nil {
			return fmt.Errorf("schedule.at must be HH:MM when mode is daily_at, got '%s'", c.Schedule.At)
		}
	}
	if c.Window.Start != "" && c.Window.End != "" && c.Window.Start > c.Window.End {
		return fmt.Errorf("window start %s is after end %s", c.Window.Start, c.Window.End)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// FindDotEnv walks up from start (or the working directory) looking for the
// project root: the first directory holding .env, go.mod or .git. It reports
// the .env path in that directory, if the file exists.
func FindDotEnv(start string) (string, bool) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		start = wd
	}
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		for _, marker := range []string{".env", "go.mod", ".git"} {
			if exists(filepath.Join(cur, marker)) {
				p := filepath.Join(cur, ".env")
				return p, exists(p)
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", false
		}
		cur = parent
	}
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
