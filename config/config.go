package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/room4-2/openlive/live"
)

const defaultModel = "models/gemini-2.5-flash-native-audio-preview-12-2025"

// Config holds all server configuration
type Config struct {
	Port            int
	RedisURL        string
	RedisPassword   string
	MaxSessions     int
	SessionTimeout  time.Duration
	GeminiAPIKey    string
	AllowedOrigins  []string
	KeepAlivePeriod time.Duration
	MaxBufferSize   int // Maximum audio buffer size in bytes per session

	// Live session settings
	Model                    string
	TranscribeInput          bool
	TranscribeOutput         bool
	VADStartSensitivity      live.StartSensitivity
	VADEndSensitivity        live.EndSensitivity
	VADPrefixPaddingMs       int // 0 means service default
	VADSilenceDurationMs     int // 0 means service default
	CompressionTriggerTokens int // 0 disables context window compression
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:                8080,
		RedisURL:            "localhost:6379",
		RedisPassword:       "",
		MaxSessions:         100,
		SessionTimeout:      30 * time.Minute,
		AllowedOrigins:      []string{"*"},
		KeepAlivePeriod:     30 * time.Second,
		MaxBufferSize:       5 * 1024 * 1024, // 5MB default
		Model:               defaultModel,
		TranscribeInput:     false,
		TranscribeOutput:    false,
		VADStartSensitivity: live.StartSensitivityUnspecified,
		VADEndSensitivity:   live.EndSensitivityUnspecified,
	}

	// Required: GEMINI_API_KEY
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: KEEPALIVE_PERIOD (in seconds)
	if keepalive := os.Getenv("KEEPALIVE_PERIOD"); keepalive != "" {
		k, err := strconv.Atoi(keepalive)
		if err != nil {
			return nil, fmt.Errorf("invalid KEEPALIVE_PERIOD: %w", err)
		}
		config.KeepAlivePeriod = time.Duration(k) * time.Second
	}

	// Optional: MAX_BUFFER_SIZE (in bytes)
	if bufferSize := os.Getenv("MAX_BUFFER_SIZE"); bufferSize != "" {
		b, err := strconv.Atoi(bufferSize)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_BUFFER_SIZE: %w", err)
		}
		config.MaxBufferSize = b
	}

	// Optional: GEMINI_MODEL
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Model = model
	}

	// Optional: TRANSCRIBE_INPUT / TRANSCRIBE_OUTPUT
	config.TranscribeInput = os.Getenv("TRANSCRIBE_INPUT") == "true"
	config.TranscribeOutput = os.Getenv("TRANSCRIBE_OUTPUT") == "true"

	// Optional: VAD_START_SENSITIVITY ("high" or "low")
	if v := os.Getenv("VAD_START_SENSITIVITY"); v != "" {
		switch v {
		case "high":
			config.VADStartSensitivity = live.StartSensitivityHigh
		case "low":
			config.VADStartSensitivity = live.StartSensitivityLow
		default:
			return nil, fmt.Errorf("invalid VAD_START_SENSITIVITY: must be 'high' or 'low'")
		}
	}

	// Optional: VAD_END_SENSITIVITY ("high" or "low")
	if v := os.Getenv("VAD_END_SENSITIVITY"); v != "" {
		switch v {
		case "high":
			config.VADEndSensitivity = live.EndSensitivityHigh
		case "low":
			config.VADEndSensitivity = live.EndSensitivityLow
		default:
			return nil, fmt.Errorf("invalid VAD_END_SENSITIVITY: must be 'high' or 'low'")
		}
	}

	// Optional: VAD_PREFIX_PADDING_MS
	if v := os.Getenv("VAD_PREFIX_PADDING_MS"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_PREFIX_PADDING_MS: %w", err)
		}
		config.VADPrefixPaddingMs = p
	}

	// Optional: VAD_SILENCE_DURATION_MS
	if v := os.Getenv("VAD_SILENCE_DURATION_MS"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid VAD_SILENCE_DURATION_MS: %w", err)
		}
		config.VADSilenceDurationMs = s
	}

	// Optional: COMPRESSION_TRIGGER_TOKENS
	if v := os.Getenv("COMPRESSION_TRIGGER_TOKENS"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPRESSION_TRIGGER_TOKENS: %w", err)
		}
		config.CompressionTriggerTokens = t
	}

	return config, nil
}

// LiveSetup assembles the Live session setup message from the loaded settings.
func (c *Config) LiveSetup(systemPrompt string, tools []map[string]any) live.Setup {
	setup := live.Setup{
		Model: c.Model,
		Tools: tools,
		GenerationConfig: map[string]any{
			"response_modalities": []string{"AUDIO"},
		},
	}

	if systemPrompt != "" {
		setup.SystemInstruction = &live.SystemInstruction{
			Parts: []live.ContentPart{live.NewTextContent(systemPrompt)},
		}
	}

	if c.TranscribeInput {
		setup.InputAudioTranscription = &live.AudioTranscriptionConfig{}
	}
	if c.TranscribeOutput {
		setup.OutputAudioTranscription = &live.AudioTranscriptionConfig{}
	}

	vad := &live.AutomaticActivityDetection{}
	configured := false
	if c.VADStartSensitivity != live.StartSensitivityUnspecified {
		s := c.VADStartSensitivity
		vad.StartOfSpeechSensitivity = &s
		configured = true
	}
	if c.VADEndSensitivity != live.EndSensitivityUnspecified {
		s := c.VADEndSensitivity
		vad.EndOfSpeechSensitivity = &s
		configured = true
	}
	if c.VADPrefixPaddingMs > 0 {
		p := c.VADPrefixPaddingMs
		vad.PrefixPaddingMs = &p
		configured = true
	}
	if c.VADSilenceDurationMs > 0 {
		s := c.VADSilenceDurationMs
		vad.SilenceDurationMs = &s
		configured = true
	}
	if configured {
		setup.RealtimeInputConfig = &live.RealtimeInputConfig{
			AutomaticActivityDetection: vad,
		}
	}

	if c.CompressionTriggerTokens > 0 {
		setup.ContextWindowCompression = live.NewContextWindowCompressionConfig(c.CompressionTriggerTokens)
	}

	return setup
}
