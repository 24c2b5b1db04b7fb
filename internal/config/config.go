package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrTokenRequired      = errors.New("DISCORD_TOKEN is required")
	ErrRecipientsRequired = errors.New("GUILDWATCH_RECIPIENTS is required")
)

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

type Config struct {
	Discord       DiscordConfig
	Server        ServerConfig
	KeepAlive     KeepAliveConfig
	Storage       StorageConfig
	Monitor       MonitorConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

type DiscordConfig struct {
	Token      string
	BotToken   bool
	Recipients []string
}

type ServerConfig struct {
	Port int
}

type KeepAliveConfig struct {
	Enabled  bool
	URL      string
	Interval time.Duration
}

type StorageConfig struct {
	Backend  string
	DataFile string
	DBPath   string
}

type MonitorConfig struct {
	Timezone    string
	Location    *time.Location
	SettleDelay time.Duration
	ResyncPace  time.Duration
	EventBuffer int
}

type LoggingConfig struct {
	Level string
}

type ObservabilityConfig struct {
	Enabled        bool
	OTLPEndpoint   string
	OTLPHeaders    map[string]string
	ServiceName    string
	ServiceVer     string
	SamplingRatio  float64
	MetricsConsole bool
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	// The legacy .env layout used lower/camel-case names.
	_ = v.BindEnv("token", "TOKEN", "token")
	_ = v.BindEnv("userid", "USERID", "userID")

	v.SetDefault("discord_token", "")
	v.SetDefault("token", "")
	v.SetDefault("discord_bot_token", false)
	v.SetDefault("guildwatch_recipients", "")
	v.SetDefault("userid", "")
	v.SetDefault("port", 3000)
	v.SetDefault("render_external_url", "")
	v.SetDefault("guildwatch_self_url", "")
	v.SetDefault("guildwatch_keepalive_enabled", true)
	v.SetDefault("guildwatch_keepalive_interval", 14*time.Minute)
	v.SetDefault("guildwatch_store", StoreJSON)
	v.SetDefault("guildwatch_data_file", "monitored_servers.json")
	v.SetDefault("guildwatch_db_path", "data/guildwatch")
	v.SetDefault("guildwatch_timezone", "UTC")
	v.SetDefault("guildwatch_settle_delay", 3*time.Second)
	v.SetDefault("guildwatch_resync_pace", 200*time.Millisecond)
	v.SetDefault("guildwatch_event_buffer", 64)
	v.SetDefault("guildwatch_log_level", "info")
	v.SetDefault("guildwatch_otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_service_name", "guildwatch")
	v.SetDefault("guildwatch_version", "dev")
	v.SetDefault("guildwatch_otel_sampling_ratio", 1.0)
	v.SetDefault("guildwatch_otel_metrics_console", false)

	token := firstNonEmpty(v.GetString("discord_token"), v.GetString("token"))
	if token == "" {
		return Config{}, ErrTokenRequired
	}

	recipients := parseList(firstNonEmpty(v.GetString("guildwatch_recipients"), v.GetString("userid")))
	if len(recipients) == 0 {
		return Config{}, ErrRecipientsRequired
	}

	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT: %d", port)
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("guildwatch_store")))
	switch backend {
	case "":
		backend = StoreJSON
	case StoreJSON, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("invalid GUILDWATCH_STORE %q: want %q or %q", backend, StoreJSON, StoreSQLite)
	}

	timezone := strings.TrimSpace(v.GetString("guildwatch_timezone"))
	if timezone == "" {
		timezone = "UTC"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("invalid GUILDWATCH_TIMEZONE %q: %w", timezone, err)
	}

	keepAliveInterval := v.GetDuration("guildwatch_keepalive_interval")
	if keepAliveInterval <= 0 {
		keepAliveInterval = 14 * time.Minute
	}

	settleDelay := v.GetDuration("guildwatch_settle_delay")
	if settleDelay < 0 {
		settleDelay = 0
	}
	resyncPace := v.GetDuration("guildwatch_resync_pace")
	if resyncPace < 0 {
		resyncPace = 0
	}

	eventBuffer := v.GetInt("guildwatch_event_buffer")
	if eventBuffer <= 0 {
		eventBuffer = 64
	}

	samplingRatio := v.GetFloat64("guildwatch_otel_sampling_ratio")
	if samplingRatio < 0 {
		samplingRatio = 0
	}
	if samplingRatio > 1 {
		samplingRatio = 1
	}

	selfURL := firstNonEmpty(v.GetString("guildwatch_self_url"), v.GetString("render_external_url"))
	if selfURL == "" {
		selfURL = fmt.Sprintf("http://localhost:%d", port)
	}

	otlpEndpoint := strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint"))
	metricsConsole := v.GetBool("guildwatch_otel_metrics_console")

	cfg := Config{
		Discord: DiscordConfig{
			Token:      token,
			BotToken:   v.GetBool("discord_bot_token"),
			Recipients: recipients,
		},
		Server: ServerConfig{Port: port},
		KeepAlive: KeepAliveConfig{
			Enabled:  v.GetBool("guildwatch_keepalive_enabled"),
			URL:      selfURL,
			Interval: keepAliveInterval,
		},
		Storage: StorageConfig{
			Backend:  backend,
			DataFile: firstNonEmpty(v.GetString("guildwatch_data_file"), "monitored_servers.json"),
			DBPath:   firstNonEmpty(v.GetString("guildwatch_db_path"), "data/guildwatch"),
		},
		Monitor: MonitorConfig{
			Timezone:    timezone,
			Location:    location,
			SettleDelay: settleDelay,
			ResyncPace:  resyncPace,
			EventBuffer: eventBuffer,
		},
		Logging: LoggingConfig{Level: strings.TrimSpace(v.GetString("guildwatch_log_level"))},
		Observability: ObservabilityConfig{
			Enabled:        v.GetBool("guildwatch_otel_enabled") || otlpEndpoint != "" || metricsConsole,
			OTLPEndpoint:   otlpEndpoint,
			OTLPHeaders:    parseHeaders(v.GetString("otel_exporter_otlp_headers")),
			ServiceName:    firstNonEmpty(v.GetString("otel_service_name"), "guildwatch"),
			ServiceVer:     firstNonEmpty(v.GetString("guildwatch_version"), "dev"),
			SamplingRatio:  samplingRatio,
			MetricsConsole: metricsConsole,
		},
	}
	return cfg, nil
}

// DiscordAuthToken returns the token in the form the gateway expects.
func (c Config) DiscordAuthToken() string {
	if c.Discord.BotToken && !strings.HasPrefix(c.Discord.Token, "Bot ") {
		return "Bot " + c.Discord.Token
	}
	return c.Discord.Token
}

func parseList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func parseHeaders(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
