package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LLM_PROVIDER",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"AI_TEMPERATURE", "AI_TOP_P", "AI_MAX_TOKENS", "AI_MAX_STEPS", "AI_TURN_TIMEOUT",
		"AI_HISTORY_LIMIT", "VOICE_MAX_TOKENS",
		"SESSION_TTL", "SESSION_MAX", "SESSION_SWEEP_INTERVAL", "SESSION_TOMBSTONE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.RateLimitRPS)
	assert.Equal(t, 6, cfg.AI.MaxSteps)
	assert.Equal(t, 60*time.Second, cfg.AI.TurnTimeout)
	assert.Equal(t, 120, cfg.AI.VoiceMaxTokens)
	assert.Equal(t, "gpt-3.5-turbo", cfg.AI.OpenAIModel)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
}

func TestLoadInfersOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadPrefersArkWhenConfigured(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ARK_API_KEY", "ark")
	t.Setenv("Model", "doubao")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "palm")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadClampsMaxSteps(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_MAX_STEPS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.AI.MaxSteps)
}

func TestParseAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":3000",
		"8080":           ":8080",
		":9000":          ":9000",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range cases {
		got, err := parseAddr(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseAddr("80 80")
	require.Error(t, err)
}

func TestNewChatModelOpenAI(t *testing.T) {
	cfg := AIConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk-test", OpenAIModel: "gpt-4-turbo"}

	m, err := cfg.NewChatModel(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewChatModelDisabled(t *testing.T) {
	_, err := AIConfig{Provider: ProviderOpenAI}.NewChatModel(t.Context())
	require.Error(t, err)
}
