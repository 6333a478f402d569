package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

const chatbotSystemPrompt = `You are CampusConnect Assistant, a helpful AI assistant for a college social networking platform. You help students with:

1. **Platform Features**: Explaining how to use the feed, create posts, connect with peers, and join workshops
2. **Academic Support**: Providing study tips, explaining concepts, and helping with learning strategies
3. **Campus Life**: Answering questions about college life, clubs, and activities
4. **Technical Help**: Troubleshooting issues with the platform

Be friendly, concise, and helpful. Keep responses brief but informative.`

const (
	chatbotMaxTokens   = 500
	chatbotTemperature = 0.7
	chatbotFallback    = "Sorry, I could not generate a response."
)

// ChatbotConfig configures the completion endpoint
type ChatbotConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Referer  string
	Timeout  time.Duration
}

// ChatTurn is one earlier exchange in the conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatbotReply is the assistant's answer
type ChatbotReply struct {
	Message string
	Model   string
}

// ChatbotService proxies questions to an OpenAI-compatible chat completions API
type ChatbotService struct {
	config ChatbotConfig
	client *http.Client
	logger zerolog.Logger
}

// NewChatbotService creates a new ChatbotService. client may be nil.
func NewChatbotService(config ChatbotConfig, client *http.Client, logger zerolog.Logger) *ChatbotService {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &ChatbotService{
		config: config,
		client: client,
		logger: logger,
	}
}

// Enabled reports whether an API key is configured
func (s *ChatbotService) Enabled() bool {
	return s.config.APIKey != ""
}

type completionRequest struct {
	Model       string     `json:"model"`
	Messages    []ChatTurn `json:"messages"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// buildMessages keeps the system prompt, the last turns of history and the
// new question. Turns with roles other than user/assistant are dropped.
func buildMessages(message string, history []ChatTurn) []ChatTurn {
	valid := make([]ChatTurn, 0, len(history))
	for _, turn := range history {
		if (turn.Role == "user" || turn.Role == "assistant") && strings.TrimSpace(turn.Content) != "" {
			valid = append(valid, turn)
		}
	}
	if len(valid) > validation.MaxChatbotHistory {
		valid = valid[len(valid)-validation.MaxChatbotHistory:]
	}

	messages := make([]ChatTurn, 0, len(valid)+2)
	messages = append(messages, ChatTurn{Role: "system", Content: chatbotSystemPrompt})
	messages = append(messages, valid...)
	messages = append(messages, ChatTurn{Role: "user", Content: message})
	return messages
}

// Ask sends message with recent history and returns the assistant's reply
func (s *ChatbotService) Ask(ctx context.Context, userID int64, message string, history []ChatTurn) (*ChatbotReply, error) {
	message, ok := validation.CleanContent(message)
	if !ok {
		return nil, apperrors.NewValidationError("Message is required")
	}
	if !s.Enabled() {
		return nil, apperrors.NewServiceUnavailableError("Chatbot is not configured")
	}

	body, err := json.Marshal(completionRequest{
		Model:       s.config.Model,
		Messages:    buildMessages(message, history),
		MaxTokens:   chatbotMaxTokens,
		Temperature: chatbotTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding chatbot request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building chatbot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "CampusConnect")
	if s.config.Referer != "" {
		req.Header.Set("HTTP-Referer", s.config.Referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Chatbot request failed")
		return nil, fmt.Errorf("error calling chatbot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Int64("userID", userID).
			Msg("Chatbot API returned an error")
		return nil, fmt.Errorf("chatbot API returned status %d", resp.StatusCode)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("error decoding chatbot response: %w", err)
	}

	reply := chatbotFallback
	if len(completion.Choices) > 0 && completion.Choices[0].Message.Content != "" {
		reply = completion.Choices[0].Message.Content
	}

	return &ChatbotReply{Message: reply, Model: s.config.Model}, nil
}
