package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        Log        `yaml:"log"`
	Server     Server     `yaml:"server"`
	MCP        MCP        `yaml:"mcp"`
	Sandbox    Sandbox    `yaml:"sandbox"`
	Transcript Transcript `yaml:"transcript"`
}

type Server struct {
	// Host to bind the HTTP API to
	Host string `yaml:"host" example:"0.0.0.0"`
	// Port of the HTTP API
	Port int `yaml:"port" example:"8080" validate:"required,min=1,max=65535"`
}

type MCP struct {
	// Expose the sandbox as MCP tools
	Enabled bool `yaml:"enabled" example:"false"`
	// Listen address of the MCP streamable HTTP server
	Listen string `yaml:"listen" example:":8081"`
}

type Sandbox struct {
	// Simulation mode the sandbox starts in
	Mode string `yaml:"mode" example:"free" validate:"required,oneof=free new-lead rain-reschedule follow-up upsell"`
	// Delay before the simulated agent reply is appended
	ReplyDelayMs int `yaml:"reply_delay_ms" example:"500" validate:"required,min=1"`
	// Typing indicator duration per character of input
	TypingMsPerChar int `yaml:"typing_ms_per_char" example:"30" validate:"min=0"`
	// Upper bound of the typing indicator duration
	TypingMaxMs int `yaml:"typing_max_ms" example:"800" validate:"min=0"`
}

type Transcript struct {
	// Append finished conversations to a JSONL file
	Enabled bool `yaml:"enabled" example:"false"`
	// Path of the JSONL transcript file
	Path string `yaml:"path" example:"data/transcripts.jsonl"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

func LoadFrom(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Port == 0 {
		result.Server.Port = 8080
	}
	if result.MCP.Listen == "" {
		result.MCP.Listen = ":8081"
	}
	if result.Sandbox.Mode == "" {
		result.Sandbox.Mode = "free"
	}
	if result.Sandbox.ReplyDelayMs == 0 {
		result.Sandbox.ReplyDelayMs = 500
	}
	if result.Sandbox.TypingMsPerChar == 0 {
		result.Sandbox.TypingMsPerChar = 30
	}
	if result.Sandbox.TypingMaxMs == 0 {
		result.Sandbox.TypingMaxMs = 800
	}
	if result.Transcript.Path == "" {
		result.Transcript.Path = "data/transcripts.jsonl"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
