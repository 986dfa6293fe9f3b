package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Port string `env:"PORT" envDefault:"3001"`

	// VAPID signing identity. When the pair is empty the keys file is used.
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDKeysFile   string `env:"VAPID_KEYS_FILE" envDefault:"data/vapid.json"`
	VAPIDEmail      string `env:"VAPID_EMAIL" envDefault:"mailto:admin@habitflow.app"`

	ClientURL          string   `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	DataFile     string `env:"DATA_FILE" envDefault:"data/subscriptions.json"`
	StoreDriver  string `env:"STORE_DRIVER" envDefault:"file"`
	DatabaseURL  string `env:"DATABASE_URL"`
	FrontendPath string `env:"FRONTEND_PATH" envDefault:"dist"`

	PushTTL            time.Duration `env:"PUSH_TTL" envDefault:"24h"`
	PushMaxConcurrency int           `env:"PUSH_MAX_CONCURRENCY" envDefault:"32"`
	PushTimeout        time.Duration `env:"PUSH_TIMEOUT" envDefault:"15s"`

	// SendAPISecret enables JWT authentication on the send routes when set
	SendAPISecret string `env:"SEND_API_SECRET"`

	AIProvider    string `env:"AI_PROVIDER" envDefault:"auto"`
	GeminiApiKey  string `env:"GEMINI_API_KEY"`
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llama3"`

	GoogleProjectID          string `env:"GOOGLE_PROJECT_ID"`
	GooglePubSubTopic        string `env:"GOOGLE_PUBSUB_TOPIC"`
	GooglePubSubSubscription string `env:"GOOGLE_PUBSUB_SUBSCRIPTION" envDefault:"habitflow-push-sub"`
	GoogleCredentials        string `env:"GOOGLE_CREDENTIALS"`
}

// Load reads .env (if present) and the process environment
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverFile, StoreDriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", c.StoreDriver, StoreDriverFile, StoreDriverPostgres)
	}
	if (c.VAPIDPublicKey == "") != (c.VAPIDPrivateKey == "") {
		return fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}
	if c.PushMaxConcurrency <= 0 {
		return fmt.Errorf("PUSH_MAX_CONCURRENCY must be positive, got %d", c.PushMaxConcurrency)
	}
	return nil
}

// AllowedOrigins returns the CORS allow-list: CLIENT_URL, the extra origins and local dev hosts
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]bool)
	var origins []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			return
		}
		seen[o] = true
		origins = append(origins, o)
	}

	add(c.ClientURL)
	for _, o := range c.CORSAllowedOrigins {
		add(o)
	}
	add("http://localhost:3000")
	add("http://127.0.0.1:3000")
	return origins
}
