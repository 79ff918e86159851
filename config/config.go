package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"

	UploadDriverLocal = "local"
	UploadDriverGCS   = "gcs"

	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// placeholderKeys are values shipped in sample env files; they never count
// as a usable credential.
var placeholderKeys = map[string]struct{}{
	"dummy-key":                    {},
	"your_openrouter_api_key_here": {},
}

type LLMConfig struct {
	Provider string
	Model    string
	Timeout  time.Duration
}

type Config struct {
	Env            string
	HTTPAddr       string
	AllowedOrigins []string
	SeedSamples    bool

	StoreDriver   string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string

	Neo4jURI  string
	Neo4jUser string
	Neo4jPass string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	VideoCacheTTL time.Duration

	UploadDriver string
	UploadDir    string
	GCSBucket    string

	// GoogleCredentialsFile is optional; application default credentials
	// are used when empty.
	GoogleCredentialsFile string

	LLM           LLMConfig
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaHost    string
	AppReferer    string
	AppTitle      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":5000"),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		SeedSamples:    getBool("SEED_SAMPLES", false),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		PostgresDSN:   getEnv("POSTGRES_DSN", "postgres://localhost:5432/study-agent?sslmode=disable"),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "study_agent"),

		Neo4jURI:  getEnv("NEO4J_URI", ""),
		Neo4jUser: getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPass: getEnv("NEO4J_PASSWORD", "password"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		VideoCacheTTL: getDuration("VIDEO_CACHE_TTL", time.Hour),

		UploadDriver: strings.ToLower(getEnv("UPLOAD_DRIVER", UploadDriverLocal)),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),

		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			Model:    getEnv("LLM_MODEL", "openai/gpt-3.5-turbo"),
			Timeout:  getDuration("LLM_TIMEOUT", 30*time.Second),
		},
		OpenAIAPIKey:  getEnv("OPENROUTER_API_KEY", getEnv("OPENAI_API_KEY", "")),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", defaultOpenRouterBaseURL),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AppReferer:    getEnv("APP_REFERER", "http://localhost:3000"),
		AppTitle:      getEnv("APP_TITLE", "BeyondChat Study Assistant"),
	}
}

// HasLLMCredential reports whether the configured provider can be called.
// Ollama runs locally and needs no key.
func (c Config) HasLLMCredential() bool {
	if c.LLM.Provider == ProviderOllama {
		return true
	}
	key := strings.TrimSpace(c.OpenAIAPIKey)
	if key == "" {
		return false
	}
	_, placeholder := placeholderKeys[key]
	return !placeholder
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, "")))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
