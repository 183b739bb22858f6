package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MCPConfig MCP Server 配置结构
type MCPConfig struct {
	// Server 服务器配置
	Server ServerConfig `yaml:"server"`
	// Source 会议记录源端配置
	Source SourceConfig `yaml:"source"`
	// Audit 审计日志配置
	Audit AuditConfig `yaml:"audit"`
	// Log 日志配置
	Log LogConfig `yaml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTPPort HTTP服务端口
	HTTPPort int `yaml:"http_port"`
	// Environment 运行环境 (development, production)
	Environment string `yaml:"environment"`
}

// SourceConfig 会议记录源端配置
type SourceConfig struct {
	// BaseURL 源端 API 基础地址
	BaseURL string `yaml:"base_url"`
	// APIKey 源端 API Key
	APIKey string `yaml:"api_key"`
	// Timeout 单次请求超时时间(秒)
	Timeout int `yaml:"timeout"`
	// Descending 源端按最新在前交付时置 true（影响 last-N 语义的反转逻辑）
	Descending bool `yaml:"descending"`
}

// AuditConfig 审计日志配置
type AuditConfig struct {
	// Enabled 是否开启审计
	Enabled bool `yaml:"enabled"`
	// Path 审计日志文件路径
	Path string `yaml:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level debug/info/warn/error
	Level string `yaml:"level"`
}

// LoadConfig 加载配置
// 先读可选的 YAML 配置文件（MCP_CONFIG_FILE 指定），再用环境变量覆盖
func LoadConfig() (*MCPConfig, error) {
	cfg := &MCPConfig{
		Server: ServerConfig{
			HTTPPort:    8081,
			Environment: "development",
		},
		Source: SourceConfig{
			Timeout: 30,
		},
		Audit: AuditConfig{
			Enabled: true,
			Path:    "logs/search_audit.log",
		},
	}

	if path := os.Getenv("MCP_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.HTTPPort = getEnvAsInt("MCP_HTTP_PORT", cfg.Server.HTTPPort)
	cfg.Server.Environment = getEnv("ENV", cfg.Server.Environment)
	cfg.Source.BaseURL = getEnv("FATHOM_API_URL", cfg.Source.BaseURL)
	cfg.Source.APIKey = getEnv("FATHOM_API_KEY", cfg.Source.APIKey)
	cfg.Source.Timeout = getEnvAsInt("FATHOM_TIMEOUT", cfg.Source.Timeout)
	cfg.Source.Descending = getEnvAsBool("FATHOM_SOURCE_DESCENDING", cfg.Source.Descending)
	cfg.Audit.Path = getEnv("MCP_AUDIT_LOG", cfg.Audit.Path)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	return cfg, nil
}

// ValidateConfig 验证配置
func ValidateConfig(cfg *MCPConfig) error {
	// 验证端口范围
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d (must be between 1-65535)", cfg.Server.HTTPPort)
	}

	// 验证超时时间
	if cfg.Source.Timeout < 1 || cfg.Source.Timeout > 300 {
		return fmt.Errorf("invalid timeout: %d seconds (must be between 1-300)", cfg.Source.Timeout)
	}

	// 验证环境
	if cfg.Server.Environment != "development" && cfg.Server.Environment != "production" {
		return fmt.Errorf("invalid environment: %s (must be 'development' or 'production')", cfg.Server.Environment)
	}

	// 验证审计路径
	if cfg.Audit.Enabled && cfg.Audit.Path == "" {
		return fmt.Errorf("audit log path is required when audit is enabled")
	}

	return nil
}

// GetServerAddress 获取服务器监听地址
func (c *MCPConfig) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.HTTPPort)
}

// IsProduction 是否为生产环境
func (c *MCPConfig) IsProduction() bool {
	return c.Server.Environment == "production"
}

// HasSourceAuth 是否配置了源端 API Key
func (c *MCPConfig) HasSourceAuth() bool {
	return c.Source.APIKey != ""
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 获取整数类型的环境变量，如果不存在或解析失败则返回默认值
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool 获取布尔类型的环境变量，如果不存在或解析失败则返回默认值
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
