package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/eiken/internal/inference"
	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// DefaultBaseURL is the OpenAI REST endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
}

func NewClient(apiKey, model, baseURL string, retryAttempts uint) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Explain implements the inference.Client interface
func (client *Client) Explain(
	ctx context.Context,
	params inference.ExplainRequest,
) (inference.ExplainResponse, error) {
	var result inference.ExplainResponse
	if err := retry.Do(
		func() error {
			response, err := client.explain(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retryOptions(ctx, client.maxRetryAttempts, params.Question)...,
	); err != nil {
		return inference.ExplainResponse{}, err
	}
	return result, nil
}

const explainSystemPrompt = `あなたは英検4級の英語講師です。中学1・2年生レベルの学習者に、四択の穴埋め問題の解説をします。

GOAL
Return ONLY a JSON object:
{"explanation": "<解説>", "point": "<文法・語彙のポイント名>"}

RULES
- 解説は日本語で、3文以内にまとめる。
- 正しい答えがなぜ正しいのかを、文中の手がかり（主語、時制を表す語、前後の語句など）を示して説明する。
- 学習者の答えが間違っている場合は、その選択肢がなぜ合わないのかを1文で説明する。
- 学習者の答えが正しい場合は、ほめる言葉から始める。
- "point" は「be動詞」「過去形」「前置詞」「助動詞 can」のような短い名前にする。
- JSON以外のテキストを出力しない。`

func (client *Client) getRequestBody(params inference.ExplainRequest) (ChatCompletionRequest, error) {
	userContent, err := json.Marshal(params)
	if err != nil {
		return ChatCompletionRequest{}, fmt.Errorf("json.Marshal(params) > %w", err)
	}

	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.3,
		Messages: []Message{
			{Role: RoleSystem, Content: explainSystemPrompt},
			{Role: RoleUser, Content: string(userContent)},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}, nil
}

func (client *Client) explain(
	ctx context.Context,
	params inference.ExplainRequest,
) (inference.ExplainResponse, error) {
	requestBody, err := client.getRequestBody(params)
	if err != nil {
		return inference.ExplainResponse{}, fmt.Errorf("getRequestBody > %w", err)
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.ExplainResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return inference.ExplainResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.ExplainResponse{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return inference.ExplainResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)

	var decoded inference.ExplainResponse
	if err := json.NewDecoder(strings.NewReader(extractJSONObject(content))).Decode(&decoded); err != nil {
		slog.Default().Error("Failed to parse OpenAI response as JSON",
			"question", params.Question,
			"error", err)
		return inference.ExplainResponse{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}
	if strings.TrimSpace(decoded.Explanation) == "" {
		return inference.ExplainResponse{}, fmt.Errorf("json.Unmarshal(%s) > missing explanation", content)
	}
	return decoded, nil
}
