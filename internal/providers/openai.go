package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/af-corp/relay/internal/config"
)

// OpenAIAdapter talks to OpenAI-compatible chat-completion APIs.
type OpenAIAdapter struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOpenAIAdapter(name string, cfg config.ProviderConfig, client *http.Client) *OpenAIAdapter {
	return &OpenAIAdapter{name: name, cfg: cfg, client: client}
}

func (a *OpenAIAdapter) Name() string { return a.name }

func (a *OpenAIAdapter) DefaultModel() string { return a.cfg.DefaultModel }

func (a *OpenAIAdapter) Complete(ctx context.Context, inv *Invocation) (*Completion, error) {
	body := openAIRequestBody{
		Model: BareModel(inv.Model),
		Messages: []openAIMessage{
			{Role: "system", Content: inv.System},
			{Role: "user", Content: inv.User},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal openai request: %w", err)
	}

	url := a.cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	for k, v := range a.cfg.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		kind := KindTerminal
		if retryableStatus(resp.StatusCode) {
			kind = KindRetryable
		}
		return nil, newDispatchError(kind, a.name,
			fmt.Sprintf("openai returned status %d: %s", resp.StatusCode, string(raw)))
	}

	var oaiResp openAIResponseBody
	if err := json.Unmarshal(raw, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal openai response: %w", err)
	}

	// The exact response shape varies across OpenAI-compatible servers;
	// try each known location for the generated text in order.
	text := ""
	if len(oaiResp.Choices) > 0 {
		text = oaiResp.Choices[0].Message.Content
		if text == "" {
			text = oaiResp.Choices[0].Text
		}
	}
	if text == "" {
		text = oaiResp.OutputText
	}
	if text == "" {
		return nil, newDispatchError(KindEmptyResponse, a.name, "openai returned no extractable text")
	}

	tokens := oaiResp.Usage.TotalTokens
	if tokens == 0 {
		tokens = oaiResp.Usage.PromptTokens + oaiResp.Usage.CompletionTokens
	}

	model := oaiResp.Model
	if model == "" {
		model = inv.Model
	}

	return &Completion{Text: text, Model: model, Tokens: tokens}, nil
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequestBody struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIResponseBody struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      openAIMessage `json:"message"`
		Text         string        `json:"text"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
	Usage      struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
