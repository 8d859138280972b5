package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration. Every field can be left
// empty in the YAML file; getters fall back to environment variables and
// finally to sane defaults.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Maria   MariaConfig   `yaml:"maria"`
	Redis   RedisConfig   `yaml:"redis"`
	Nats    NatsConfig    `yaml:"nats"`
	JWT     JWTConfig     `yaml:"jwt"`
	Mail    MailConfig    `yaml:"mail"`
	Shop    ShopConfig    `yaml:"shop"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

// StorageConfig selects the user/skin persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // mongo | maria | memory
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type MariaConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type NatsConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret            string `yaml:"secret"`
	ExpirationMinutes int    `yaml:"expiration_minutes"`
}

type MailConfig struct {
	APIKey  string `yaml:"api_key"`
	Sender  string `yaml:"sender"`
	WebHost string `yaml:"web_host"`
}

type ShopConfig struct {
	DefaultSkin string `yaml:"default_skin"`
}

// GetRESTPort returns the REST API port: config -> env -> default.
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "CASINO_REST_PORT", 8080)
}

// GetBackend returns the storage backend: config -> env -> mongo.
func (s *StorageConfig) GetBackend() string {
	return getStringWithEnvFallback(s.Backend, "CASINO_STORAGE", "mongo")
}

// GetURI returns the MongoDB connection string.
func (m *MongoConfig) GetURI() string {
	return getStringWithEnvFallback(m.URI, "MONGO_URI", "mongodb://localhost:27017")
}

// GetDatabase returns the MongoDB database name.
func (m *MongoConfig) GetDatabase() string {
	return getStringWithEnvFallback(m.Database, "MONGO_DATABASE", "casino")
}

// GetAddr returns the Redis address; empty disables the cache.
func (r *RedisConfig) GetAddr() string {
	return getStringWithEnvFallback(r.Addr, "REDIS_ADDR", "")
}

// GetURL returns the NATS URL; empty disables event publishing.
func (n *NatsConfig) GetURL() string {
	return getStringWithEnvFallback(n.URL, "NATS_URL", "")
}

// GetSecret returns the JWT signing secret. No default: an empty secret is
// rejected at codec construction.
func (j *JWTConfig) GetSecret() string {
	return getStringWithEnvFallback(j.Secret, "JWT_SECRET", "")
}

// GetExpiration returns the session token lifetime: config -> env (minutes) -> 60m.
func (j *JWTConfig) GetExpiration() time.Duration {
	minutes := j.ExpirationMinutes
	if minutes <= 0 {
		if envVal := os.Getenv("JWT_EXPIRATION"); envVal != "" {
			if m, err := strconv.Atoi(envVal); err == nil && m > 0 {
				minutes = m
			}
		}
	}
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// GetAPIKey returns the SendGrid API key; empty disables outbound mail.
func (m *MailConfig) GetAPIKey() string {
	return getStringWithEnvFallback(m.APIKey, "SENDGRID_API_KEY", "")
}

// GetSender returns the outbound mail sender address.
func (m *MailConfig) GetSender() string {
	return getStringWithEnvFallback(m.Sender, "MAIL_USERNAME", "noreply@localhost")
}

// GetWebHost returns the public web host used to build reset links.
func (m *MailConfig) GetWebHost() string {
	return getStringWithEnvFallback(m.WebHost, "WEB_HOST", "http://localhost:8080")
}

// GetDefaultSkin returns the starter skin granted at registration.
func (s *ShopConfig) GetDefaultSkin() string {
	return getStringWithEnvFallback(s.DefaultSkin, "CASINO_DEFAULT_SKIN", "Comida Basura")
}

// getStringWithEnvFallback resolves a value with priority: config -> env -> default.
func getStringWithEnvFallback(configVal, envVar, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// getPortWithEnvFallback resolves a port with priority: config -> env -> default.
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load reads the YAML configuration file.
// If path == "", tries ENV CASINO_CONFIG; when that is also unset it returns
// an empty config so every getter falls through to env/defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CASINO_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
