package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Artifact store backends
const (
	StoreLocal = "local"
	StoreS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	LogLevel           string
	LogFormat          string

	// Widget generation
	IframeOutputDir    string
	IframePublicPrefix string
	TemplateDir        string
	ScratchDir         string
	StyleCompiler      string
	ScriptCompiler     string
	BuildTimeout       time.Duration
	ArtifactStore      string
	ChatbotAPIURL      string
	PublicBaseURL      string
	CORSAllowedOrigins []string
}

var (
	current   *Config
	currentMu sync.RWMutex
)

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// Heroku and containers set variables directly
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	timeout, err := time.ParseDuration(getEnv("BUILD_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("BUILD_TIMEOUT is not a duration: %w", err)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		IframeOutputDir:    getEnv("IFRAME_OUTPUT_DIR", "public/iframes"),
		IframePublicPrefix: getEnv("IFRAME_PUBLIC_PREFIX", "/iframes"),
		TemplateDir:        getEnv("TEMPLATE_DIR", ""),
		ScratchDir:         getEnv("SCRATCH_DIR", os.TempDir()),
		StyleCompiler:      getEnv("STYLE_COMPILER", "npx --no-install sass --no-source-map --style=compressed {input}"),
		ScriptCompiler:     getEnv("SCRIPT_COMPILER", "npx --no-install esbuild --loader=jsx --minify {input}"),
		BuildTimeout:       timeout,
		ArtifactStore:      strings.ToLower(getEnv("ARTIFACT_STORE", StoreLocal)),
		ChatbotAPIURL:      getEnv("CHATBOT_API_URL", ""),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	SetConfig(config)
	return config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.BuildTimeout <= 0 {
		return fmt.Errorf("BUILD_TIMEOUT must be positive, got %s", c.BuildTimeout)
	}
	if strings.TrimSpace(c.StyleCompiler) == "" {
		return fmt.Errorf("STYLE_COMPILER is required")
	}
	if strings.TrimSpace(c.ScriptCompiler) == "" {
		return fmt.Errorf("SCRIPT_COMPILER is required")
	}
	switch c.ArtifactStore {
	case StoreLocal:
		if c.IframeOutputDir == "" {
			return fmt.Errorf("IFRAME_OUTPUT_DIR is required for the local artifact store")
		}
	case StoreS3:
		if c.AWSS3Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when ARTIFACT_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_STORE %q (want %q or %q)", c.ArtifactStore, StoreLocal, StoreS3)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// GetConfig returns the configuration set by Load or SetConfig.
func GetConfig() *Config {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetConfig replaces the process-wide configuration (tests use this)
func SetConfig(c *Config) {
	currentMu.Lock()
	defer currentMu.Unlock()
	current = c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
