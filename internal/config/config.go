package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/time-guide/backend/internal/llm/openai"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Session SessionConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Session: session}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	RateLimitRPS   int
	RateLimitBurst int
}

// loadServerConfig 解析服务器监听地址与限流参数。
func loadServerConfig() (ServerConfig, error) {
	rps, err := parseIntEnv("RATE_LIMIT_RPS", 5)
	if err != nil {
		return ServerConfig{}, err
	}
	burst, err := parseIntEnv("RATE_LIMIT_BURST", 10)
	if err != nil {
		return ServerConfig{}, err
	}

	addr, err := parseAddr(strings.TrimSpace(os.Getenv("PORT")))
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{Addr: addr, RateLimitRPS: rps, RateLimitBurst: burst}, nil
}

func parseAddr(port string) (string, error) {
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// Provider 标识聊天模型的供应商。
type Provider string

const (
	ProviderArk    Provider = "ark"
	ProviderOpenAI Provider = "openai"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider Provider

	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	MaxSteps       int
	TurnTimeout    time.Duration
	HistoryLimit   int
	VoiceMaxTokens int
}

// Enabled 表示所选供应商是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return false
	}
}

// NewChatModel 使用配置创建一个模型实例。每次调用返回独立的实例，
// 绑定工具不会影响其他调用方。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s credentials or model missing", c.Provider)
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	if c.Provider == ProviderOpenAI {
		chatModel, err := openai.NewChatModel(openai.Config{
			APIKey:      c.OpenAIAPIKey,
			BaseURL:     c.OpenAIBaseURL,
			Model:       c.OpenAIModel,
			Temperature: temperature,
			TopP:        topP,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return nil, err
		}
		return chatModel, nil
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	chatModel, err := ark.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return chatModel, nil
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("AI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	maxSteps, err := parseIntEnv("AI_MAX_STEPS", 6)
	if err != nil {
		return AIConfig{}, err
	}
	if maxSteps < 1 {
		maxSteps = 1
	}

	turnTimeout, err := parseDurationEnv("AI_TURN_TIMEOUT", 60*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	historyLimit, err := parseIntEnv("AI_HISTORY_LIMIT", 20)
	if err != nil {
		return AIConfig{}, err
	}

	voiceMaxTokens, err := parseIntEnv("VOICE_MAX_TOKENS", 120)
	if err != nil {
		return AIConfig{}, err
	}

	cfg := AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("Model")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", openai.DefaultModel),
		OpenAIBaseURL:  strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		MaxSteps:       maxSteps,
		TurnTimeout:    turnTimeout,
		HistoryLimit:   historyLimit,
		VoiceMaxTokens: voiceMaxTokens,
	}

	provider, err := resolveProvider(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), cfg)
	if err != nil {
		return AIConfig{}, err
	}
	cfg.Provider = provider
	return cfg, nil
}

// resolveProvider 优先使用显式配置，否则根据已提供的凭证推断。
func resolveProvider(raw string, cfg AIConfig) (Provider, error) {
	switch Provider(strings.ToLower(raw)) {
	case ProviderArk:
		return ProviderArk, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case "":
	default:
		return "", fmt.Errorf("invalid LLM_PROVIDER value %q", raw)
	}

	cfg.Provider = ProviderArk
	if cfg.Enabled() {
		return ProviderArk, nil
	}
	if cfg.OpenAIAPIKey != "" {
		return ProviderOpenAI, nil
	}
	return ProviderArk, nil
}

// SessionConfig 描述会话存储的回收策略。
type SessionConfig struct {
	TTL           time.Duration
	MaxSessions   int
	SweepInterval time.Duration
	TombstoneTTL  time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 30*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}

	maxSessions, err := parseIntEnv("SESSION_MAX", 1000)
	if err != nil {
		return SessionConfig{}, err
	}

	sweep, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}

	tombstone, err := parseDurationEnv("SESSION_TOMBSTONE_TTL", 24*time.Hour)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		TTL:           ttl,
		MaxSessions:   maxSessions,
		SweepInterval: sweep,
		TombstoneTTL:  tombstone,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
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
