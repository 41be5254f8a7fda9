package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

var (
	GConfig *Config
	mu      sync.Mutex
)

// Init builds the configuration snapshot: defaults, then an optional YAML
// file, then the process environment. Panics on invalid configuration so a
// bad deployment dies at startup, not mid-request.
func Init(filePath string) {
	cfg := Default()
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			if err = yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		} else if !os.IsNotExist(err) {
			panic(err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Verify(); err != nil {
		panic(err)
	}
	GConfig = cfg
}

// Swap replaces the live snapshot wholesale. Callers must have verified the
// candidate first; requests in flight keep the pointer they already read.
func Swap(next *Config) {
	mu.Lock()
	GConfig = next
	mu.Unlock()
}

type Config struct {
	Transport              string   `yaml:"transport"`
	Host                   string   `yaml:"host"`
	Port                   int      `yaml:"port"`
	AuthToken              string   `yaml:"auth_token"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	SessionTimeout         int      `yaml:"session_timeout"`          // seconds
	EnableSessions         bool     `yaml:"enable_sessions"`
	SessionCleanupInterval int      `yaml:"session_cleanup_interval"` // seconds
	EnableSSE              bool     `yaml:"enable_sse"`
	SSEKeepaliveInterval   int      `yaml:"sse_keepalive_interval"` // seconds
	ImageSaveDir           string   `yaml:"image_save_dir"`
	PublicBaseURL          string   `yaml:"public_base_url"`
	ImageRecordTTL         int      `yaml:"image_record_ttl"` // seconds
	GetImageDataMaxBytes   int64    `yaml:"get_image_data_max_bytes"`
	DefaultProvider        string   `yaml:"default_provider"`
	RequestTimeout         int      `yaml:"request_timeout"` // seconds, per vendor call
	ThumbnailEnable        bool     `yaml:"thumbnail_enable"`
	ThumbnailRatio         float64  `yaml:"thumbnail_ratio"`
	LogLevel               string   `yaml:"log_level"`
	LogFile                string   `yaml:"log_file"`
	LogMaxSize             int      `yaml:"log_max_size"` // MB
	LogMaxBackups          int      `yaml:"log_max_backups"`
	LogMaxAge              int      `yaml:"log_max_age"` // days
	Debug                  bool     `yaml:"debug"`
	Hunyuan                `yaml:"hunyuan"`
	OpenAI                 `yaml:"openai"`
	Doubao                 `yaml:"doubao"`
	MySQL                  `yaml:"mysql"`
	AliOss                 `yaml:"ali_oss"`
}

type Hunyuan struct {
	SecretId  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
}

type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type Doubao struct {
	APIKey        string `yaml:"api_key"`
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	FallbackModel string `yaml:"fallback_model"`
}

type MySQL struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type AliOss struct {
	AccessKeyId     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Directory       string `yaml:"directory"`
}

func Default() *Config {
	return &Config{
		Transport:              "http",
		Host:                   "127.0.0.1",
		Port:                   8000,
		AllowedOrigins:         []string{"*"},
		SessionTimeout:         3600,
		EnableSessions:         true,
		SessionCleanupInterval: 300,
		EnableSSE:              true,
		SSEKeepaliveInterval:   30,
		ImageSaveDir:           "./generated_images",
		ImageRecordTTL:         86400,
		GetImageDataMaxBytes:   10 * 1024 * 1024,
		RequestTimeout:         360,
		ThumbnailRatio:         0.25,
		LogLevel:               "info",
		LogFile:                "draw-mcp.log",
		LogMaxSize:             100,
		LogMaxBackups:          3,
		LogMaxAge:              28,
		OpenAI:                 OpenAI{Model: "gpt-image-1.5"},
		Doubao:                 Doubao{Model: "doubao-seedream-4.0"},
		MySQL:                  MySQL{Port: 3306, MaxIdleConns: 4, MaxOpenConns: 16},
	}
}

// ApplyEnv overlays the process environment on top of the snapshot. Env
// names follow the original deployment surface (MCP_* plus vendor keys).
func (c *Config) ApplyEnv() {
	envString(&c.Transport, "MCP_TRANSPORT")
	envString(&c.Host, "MCP_HOST")
	envInt(&c.Port, "MCP_PORT")
	envString(&c.AuthToken, "MCP_AUTH_TOKEN")
	if v, ok := os.LookupEnv("MCP_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitOrigins(v)
	}
	envInt(&c.SessionTimeout, "MCP_SESSION_TIMEOUT")
	envBool(&c.EnableSessions, "MCP_ENABLE_SESSIONS")
	envInt(&c.SessionCleanupInterval, "MCP_SESSION_CLEANUP_INTERVAL")
	envBool(&c.EnableSSE, "MCP_ENABLE_SSE")
	envInt(&c.SSEKeepaliveInterval, "MCP_SSE_KEEPALIVE")
	envString(&c.ImageSaveDir, "MCP_IMAGE_SAVE_DIR")
	envString(&c.PublicBaseURL, "MCP_PUBLIC_BASE_URL")
	envInt(&c.ImageRecordTTL, "MCP_IMAGE_RECORD_TTL")
	envInt64(&c.GetImageDataMaxBytes, "MCP_GET_IMAGE_DATA_MAX_BYTES")
	envString(&c.DefaultProvider, "MCP_DEFAULT_PROVIDER")
	envInt(&c.RequestTimeout, "MCP_REQUEST_TIMEOUT")
	envBool(&c.ThumbnailEnable, "MCP_THUMBNAIL")
	envFloat(&c.ThumbnailRatio, "MCP_THUMBNAIL_RATIO")
	envString(&c.LogLevel, "MCP_LOG_LEVEL")
	envBool(&c.Debug, "MCP_DEBUG")
	envString(&c.Hunyuan.SecretId, "TENCENT_SECRET_ID")
	envString(&c.Hunyuan.SecretKey, "TENCENT_SECRET_KEY")
	envString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	envString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	envString(&c.OpenAI.Model, "OPENAI_MODEL")
	envString(&c.Doubao.APIKey, "DOUBAO_API_KEY")
	envString(&c.Doubao.Endpoint, "DOUBAO_ENDPOINT")
	envString(&c.Doubao.Model, "DOUBAO_MODEL")
	envString(&c.Doubao.FallbackModel, "DOUBAO_FALLBACK_MODEL")
}

func (c *Config) Verify() error {
	if c.Transport != "http" && c.Transport != "stdio" {
		return fmt.Errorf("transport must be http or stdio, got %q", c.Transport)
	}
	if c.Transport == "http" {
		if c.Port < 1 || c.Port > 65535 {
			return fmt.Errorf("invalid port number: %d", c.Port)
		}
		if c.Host == "" {
			return fmt.Errorf("host cannot be empty for http transport")
		}
		if c.PublicBaseURL != "" {
			parsed, err := url.Parse(c.PublicBaseURL)
			if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
				return fmt.Errorf("public_base_url must be an absolute http(s) URL, got %q", c.PublicBaseURL)
			}
		}
	}
	if c.ImageRecordTTL <= 0 {
		return fmt.Errorf("image_record_ttl must be positive, got %d", c.ImageRecordTTL)
	}
	if c.GetImageDataMaxBytes <= 0 {
		return fmt.Errorf("get_image_data_max_bytes must be positive, got %d", c.GetImageDataMaxBytes)
	}
	if c.SessionTimeout <= 0 {
		return fmt.Errorf("session_timeout must be positive, got %d", c.SessionTimeout)
	}
	if c.ThumbnailEnable && (c.ThumbnailRatio <= 0 || c.ThumbnailRatio > 1) {
		return fmt.Errorf("thumbnail_ratio must be in (0,1], got %v", c.ThumbnailRatio)
	}
	return nil
}

func (c *Config) AuthEnabled() bool {
	return c.AuthToken != ""
}

func (c *Config) MySQLEnabled() bool {
	return c.MySQL.Host != ""
}

func (c *Config) OssEnabled() bool {
	return c.AliOss.Bucket != ""
}

func (c *Config) Clone() *Config {
	next := &Config{}
	copier.CopyWithOption(next, c, copier.Option{DeepCopy: true})
	return next
}

type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// ReloadableFields can be applied by reload_config without a restart.
// Everything else in Diff's coverage requires a process restart.
var ReloadableFields = map[string]bool{
	"tencent_secret_id":        true,
	"tencent_secret_key":       true,
	"openai_api_key":           true,
	"openai_base_url":          true,
	"openai_model":             true,
	"doubao_api_key":           true,
	"doubao_endpoint":          true,
	"doubao_model":             true,
	"doubao_fallback_model":    true,
	"default_provider":         true,
	"public_base_url":          true,
	"image_record_ttl":         true,
	"get_image_data_max_bytes": true,
}

// Diff reports environment-reachable fields that differ between two
// snapshots. Secret-bearing values are masked to <set>/<empty>.
func Diff(old, next *Config) []FieldChange {
	var changes []FieldChange
	add := func(field, oldVal, newVal string) {
		if oldVal == newVal {
			return
		}
		if maskedField(field) {
			oldVal, newVal = maskValue(oldVal), maskValue(newVal)
		}
		changes = append(changes, FieldChange{Field: field, Old: oldVal, New: newVal})
	}
	add("transport", old.Transport, next.Transport)
	add("host", old.Host, next.Host)
	add("port", strconv.Itoa(old.Port), strconv.Itoa(next.Port))
	add("auth_token", old.AuthToken, next.AuthToken)
	add("allowed_origins", strings.Join(old.AllowedOrigins, ","), strings.Join(next.AllowedOrigins, ","))
	add("session_timeout", strconv.Itoa(old.SessionTimeout), strconv.Itoa(next.SessionTimeout))
	add("enable_sessions", strconv.FormatBool(old.EnableSessions), strconv.FormatBool(next.EnableSessions))
	add("session_cleanup_interval", strconv.Itoa(old.SessionCleanupInterval), strconv.Itoa(next.SessionCleanupInterval))
	add("enable_sse", strconv.FormatBool(old.EnableSSE), strconv.FormatBool(next.EnableSSE))
	add("sse_keepalive_interval", strconv.Itoa(old.SSEKeepaliveInterval), strconv.Itoa(next.SSEKeepaliveInterval))
	add("image_save_dir", old.ImageSaveDir, next.ImageSaveDir)
	add("public_base_url", old.PublicBaseURL, next.PublicBaseURL)
	add("image_record_ttl", strconv.Itoa(old.ImageRecordTTL), strconv.Itoa(next.ImageRecordTTL))
	add("get_image_data_max_bytes", strconv.FormatInt(old.GetImageDataMaxBytes, 10), strconv.FormatInt(next.GetImageDataMaxBytes, 10))
	add("default_provider", old.DefaultProvider, next.DefaultProvider)
	add("request_timeout", strconv.Itoa(old.RequestTimeout), strconv.Itoa(next.RequestTimeout))
	add("log_level", old.LogLevel, next.LogLevel)
	add("debug", strconv.FormatBool(old.Debug), strconv.FormatBool(next.Debug))
	add("tencent_secret_id", old.Hunyuan.SecretId, next.Hunyuan.SecretId)
	add("tencent_secret_key", old.Hunyuan.SecretKey, next.Hunyuan.SecretKey)
	add("openai_api_key", old.OpenAI.APIKey, next.OpenAI.APIKey)
	add("openai_base_url", old.OpenAI.BaseURL, next.OpenAI.BaseURL)
	add("openai_model", old.OpenAI.Model, next.OpenAI.Model)
	add("doubao_api_key", old.Doubao.APIKey, next.Doubao.APIKey)
	add("doubao_endpoint", old.Doubao.Endpoint, next.Doubao.Endpoint)
	add("doubao_model", old.Doubao.Model, next.Doubao.Model)
	add("doubao_fallback_model", old.Doubao.FallbackModel, next.Doubao.FallbackModel)
	return changes
}

func maskedField(field string) bool {
	for _, marker := range []string{"key", "secret", "token", "password"} {
		if strings.Contains(field, marker) {
			return true
		}
	}
	return false
}

func maskValue(v string) string {
	if v == "" {
		return "<empty>"
	}
	return "<set>"
}

func splitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func envInt64(dst *int64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
}

func envFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*dst = f
		}
	}
}
