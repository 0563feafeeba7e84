package global

import (
	"os"

	"github.com/go-redis/redis_rate/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Conf global config
var Conf Config

// Global rate limiter
var RateLimiter *redis_rate.Limiter

type Config struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	Scheme     string           `yaml:"scheme"`
	Mode       string           `yaml:"mode"` // debug or release
	Version    string           `yaml:"version"`
	CouchDB    CouchDBConfig    `yaml:"couchdb"`
	DynamoDB   DynamoDBConfig   `yaml:"dynamodb"`
	Redis      RedisConfig      `yaml:"redis"`
	Queue      QueueConfig      `yaml:"queue"`
	Storage    StorageConfig    `yaml:"storage"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Chat       ChatConfig       `yaml:"chat"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
}

type CouchDBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Scheme   string `yaml:"scheme"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DynamoDBConfig points at the chat message table and its query index
type DynamoDBConfig struct {
	ChatTable string `yaml:"chatTable"`
	ChatIndex string `yaml:"chatIndex"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Username string `yaml:"username"`
}

type QueueConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type StorageConfig struct {
	Type   string `yaml:"type"`
	Key    string `yaml:"key"`
	Secret string `yaml:"secret"`
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type PrometheusConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ChatConfig struct {
	// per-client outbound buffer; a client falling this far behind is dropped
	SendBufferSize int `yaml:"sendBufferSize"`
	// maximum inbound frame size in bytes (attachments travel base64-encoded inline)
	MaxMessageSize int64 `yaml:"maxMessageSize"`
}

type OpenAIConfig struct {
	ApiKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// LoadConfig reads conf.yaml and overlays secrets from the environment.
// A .env file in the working directory is honored when present.
func LoadConfig(path string, conf *Config) error {
	_ = godotenv.Load()

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if yErr := yaml.Unmarshal(content, conf); yErr != nil {
		return yErr
	}

	if key := os.Getenv("AWS_ACCESS_KEY_ID"); key != "" {
		conf.Storage.Key = key
	}
	if secret := os.Getenv("AWS_SECRET_ACCESS_KEY"); secret != "" {
		conf.Storage.Secret = secret
	}
	if bucket := os.Getenv("BUCKET_NAME"); bucket != "" {
		conf.Storage.Bucket = bucket
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		conf.Storage.Region = region
	}
	if table := os.Getenv("CHAT_TABLE"); table != "" {
		conf.DynamoDB.ChatTable = table
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		conf.OpenAI.ApiKey = apiKey
	}
	return nil
}
