package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zhouzirui/pocket-coach/internal/model/persona"
)

const (
	defaultPort     = "8080"
	defaultDBPath   = "chat_history.db"
	defaultModelURL = "http://localhost:11434/api/generate"
	defaultModel    = "gemma3:1b"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Model   ModelConfig
	Persona persona.Persona
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// StoreConfig 描述消息存储配置。
type StoreConfig struct {
	Path string
}

// ModelConfig 描述推理服务配置。Timeout 为 0 表示不设超时。
type ModelConfig struct {
	URL     string
	Name    string
	Timeout time.Duration
}

// fileConfig 对应可选的 TOML 配置文件，环境变量优先级更高。
type fileConfig struct {
	Port    string `toml:"port"`
	DBPath  string `toml:"db_path"`
	Persona string `toml:"persona"`
	Model   struct {
		URL     string `toml:"url"`
		Name    string `toml:"name"`
		Timeout int    `toml:"timeout_seconds"`
	} `toml:"model"`
}

// Load 从环境变量加载配置；POCKET_COACH_CONFIG 指向的 TOML 文件提供默认值。
func Load() (*Config, error) {
	file, err := loadFile(strings.TrimSpace(os.Getenv("POCKET_COACH_CONFIG")))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(file)
	if err != nil {
		return nil, err
	}

	model, err := loadModelConfig(file)
	if err != nil {
		return nil, err
	}

	p, err := persona.Parse(getEnvOrDefault("DEFAULT_PERSONA", file.Persona))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PERSONA: %w", err)
	}

	return &Config{
		Server:  server,
		Store:   StoreConfig{Path: getEnvOrDefault("DB_PATH", orDefault(file.DBPath, defaultDBPath))},
		Model:   model,
		Persona: p,
	}, nil
}

func loadFile(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fileConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return file, nil
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(file fileConfig) (ServerConfig, error) {
	port := getEnvOrDefault("PORT", orDefault(file.Port, defaultPort))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadModelConfig(file fileConfig) (ModelConfig, error) {
	timeoutSeconds := file.Model.Timeout
	override, err := parseOptionalIntEnv("MODEL_TIMEOUT")
	if err != nil {
		return ModelConfig{}, err
	}
	if override != nil {
		timeoutSeconds = *override
	}
	if timeoutSeconds < 0 {
		return ModelConfig{}, fmt.Errorf("invalid MODEL_TIMEOUT value %d: must not be negative", timeoutSeconds)
	}

	return ModelConfig{
		URL:     getEnvOrDefault("OLLAMA_URL", orDefault(file.Model.URL, defaultModelURL)),
		Name:    getEnvOrDefault("MODEL_NAME", orDefault(file.Model.Name, defaultModel)),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func orDefault(value, defaultValue string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
