package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL       = "https://openrouter.ai/api/v1"
	DefaultModel         = "meta-llama/llama-3.1-8b-instruct"
	DefaultTemperature   = 0.3
	DefaultMaxIterations = 3

	// IterationLimitMessage is answered when the model still wants tools after
	// MaxIterations rounds.
	IterationLimitMessage = "Agent stopped due to iteration limit or time limit."
)

var (
	ErrMissingAPIKey = errors.New("missing API key")
	ErrNoChoices     = errors.New("completion returned no choices")
)

// ChatCompleter is the part of the go-openai client the agent uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request go_openai.ChatCompletionRequest) (go_openai.ChatCompletionResponse, error)
}

type Config struct {
	BaseURL       string  `mapstructure:"base-url" yaml:"base-url"`
	APIKey        string  `mapstructure:"api-key" yaml:"api-key"`
	Model         string  `mapstructure:"model" yaml:"model"`
	Temperature   float32 `mapstructure:"temperature" yaml:"temperature"`
	MaxIterations int     `mapstructure:"max-iterations" yaml:"max-iterations"`
	SystemPrompt  string  `mapstructure:"system-prompt" yaml:"system-prompt"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		Model:         DefaultModel,
		Temperature:   DefaultTemperature,
		MaxIterations: DefaultMaxIterations,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// NewOpenAIClient builds a go-openai client against any OpenAI-compatible endpoint.
func NewOpenAIClient(cfg Config) (*go_openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	clientConfig := go_openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return go_openai.NewClientWithConfig(clientConfig), nil
}

// Agent answers a single user message, calling tools as the model requests.
// Requests are independent: no history is kept between calls.
type Agent struct {
	client  ChatCompleter
	tools   *Toolbox
	config  Config
	logger  zerolog.Logger
	nowFunc func() time.Time
}

type Option func(*Agent)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.nowFunc = now
	}
}

func New(client ChatCompleter, tools *Toolbox, cfg Config, options ...Option) (*Agent, error) {
	if client == nil {
		return nil, errors.New("agent needs a chat completion client")
	}
	if tools == nil {
		tools = &Toolbox{tools: map[string]Tool{}}
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaults.SystemPrompt
	}

	a := &Agent{
		client:  client,
		tools:   tools,
		config:  cfg,
		logger:  log.With().Str("component", "agent").Logger(),
		nowFunc: time.Now,
	}
	for _, option := range options {
		option(a)
	}

	// fail early on a broken template
	if _, err := a.systemPrompt(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Agent) systemPrompt() (string, error) {
	return RenderPrompt(a.config.SystemPrompt, PromptData{
		Tools: a.tools.Names(),
		Now:   a.nowFunc(),
	})
}

// Chat runs the tool-calling loop for message and returns the final answer.
func (a *Agent) Chat(ctx context.Context, message string) (string, error) {
	requestID := uuid.New()
	logger := a.logger.With().Str("request_id", requestID.String()).Logger()

	system, err := a.systemPrompt()
	if err != nil {
		return "", err
	}
	tools, err := a.tools.Definitions()
	if err != nil {
		return "", err
	}

	messages := []go_openai.ChatCompletionMessage{
		{Role: go_openai.ChatMessageRoleSystem, Content: system},
		{Role: go_openai.ChatMessageRoleUser, Content: message},
	}

	for i := 0; i < a.config.MaxIterations; i++ {
		req := go_openai.ChatCompletionRequest{
			Model:       a.config.Model,
			Messages:    messages,
			Temperature: a.config.Temperature,
		}
		if len(tools) > 0 {
			req.Tools = tools
		}

		logger.Debug().Int("iteration", i).Int("messages", len(messages)).Msg("requesting completion")
		resp, err := a.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", errors.Wrap(err, "chat completion failed")
		}
		if len(resp.Choices) == 0 {
			return "", ErrNoChoices
		}

		reply := resp.Choices[0].Message
		if len(reply.ToolCalls) == 0 {
			logger.Debug().Int("iteration", i).Msg("final answer")
			return reply.Content, nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			logger.Info().
				Str("tool", call.Function.Name).
				Str("arguments", call.Function.Arguments).
				Msg("calling tool")
			result := a.tools.Call(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    result,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	logger.Warn().Int("max_iterations", a.config.MaxIterations).Msg("iteration limit reached")
	return IterationLimitMessage, nil
}
