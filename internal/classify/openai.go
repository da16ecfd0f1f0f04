package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/SaidBouzegarn/sevenbot-prod-v2/internal/model"
)

// maxPromptBytes caps the markup or markdown handed to the model. News
// pages can carry megabytes of boilerplate; everything past this limit
// adds cost without adding signal.
const maxPromptBytes = 48 * 1024

// DefaultRequestTimeout bounds a single completion call. Navigation and
// extraction carry their own deadlines in the browser session; without
// one here a stalled API call would block the crawl loop indefinitely.
const DefaultRequestTimeout = 90 * time.Second

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("classification service returned an empty response")

// OpenAIClassifier implements Classifier on top of the OpenAI chat
// completions API with JSON-schema constrained responses.
type OpenAIClassifier struct {
	client  *openai.Client
	model   openai.ChatModel
	timeout time.Duration
}

// OpenAIOption configures an OpenAIClassifier.
type OpenAIOption func(*openAIOptions)

type openAIOptions struct {
	model       openai.ChatModel
	timeout     time.Duration
	requestOpts []option.RequestOption
}

// WithModel selects the chat model. Defaults to gpt-4o-mini: triage and
// extraction are high-volume calls and do not need a frontier model.
func WithModel(m openai.ChatModel) OpenAIOption {
	return func(o *openAIOptions) {
		if m != "" {
			o.model = m
		}
	}
}

// WithRequestTimeout bounds each completion call. Non-positive values
// keep the default.
func WithRequestTimeout(d time.Duration) OpenAIOption {
	return func(o *openAIOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBaseURL points the client at a different API endpoint. Used by tests
// and by deployments fronting the API with a gateway.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(o *openAIOptions) {
		if baseURL != "" {
			o.requestOpts = append(o.requestOpts, option.WithBaseURL(baseURL))
		}
	}
}

// NewOpenAIClassifier creates a classifier backed by the OpenAI API.
func NewOpenAIClassifier(apiKey string, opts ...OpenAIOption) *OpenAIClassifier {
	o := &openAIOptions{model: openai.ChatModelGPT4oMini, timeout: DefaultRequestTimeout}
	for _, opt := range opts {
		opt(o)
	}

	requestOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, o.requestOpts...)

	return &OpenAIClassifier{
		client:  openai.NewClient(requestOpts...),
		model:   o.model,
		timeout: o.timeout,
	}
}

// DetectLoginURL infers the login page URL from rendered page markup.
func (c *OpenAIClassifier) DetectLoginURL(ctx context.Context, pageHTML string) (string, error) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"login_url": map[string]any{"type": "string"},
		},
		"required":             []string{"login_url"},
		"additionalProperties": false,
	}

	raw, err := c.complete(ctx, "login_url", schema, loginURLSystemPrompt, truncate(pageHTML))
	if err != nil {
		return "", err
	}

	var out struct {
		LoginURL string `json:"login_url"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode login url response: %w", err)
	}
	return out.LoginURL, nil
}

// DetectSelectors infers the login form selectors from login page markup.
func (c *OpenAIClassifier) DetectSelectors(ctx context.Context, loginHTML string) (Selectors, error) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"username_selector":      map[string]any{"type": "string"},
			"password_selector":      map[string]any{"type": "string"},
			"submit_button_selector": map[string]any{"type": "string"},
		},
		"required":             []string{"username_selector", "password_selector", "submit_button_selector"},
		"additionalProperties": false,
	}

	raw, err := c.complete(ctx, "login_selectors", schema, selectorsSystemPrompt, truncate(loginHTML))
	if err != nil {
		return Selectors{}, err
	}

	var out Selectors
	if err := json.Unmarshal(raw, &out); err != nil {
		return Selectors{}, fmt.Errorf("failed to decode selectors response: %w", err)
	}
	return out, nil
}

// SelectLikelyURLs triages likely article/category URLs from the observed
// link set. The caller still intersects the result with the observed hrefs;
// the model may fabricate URLs.
func (c *OpenAIClassifier) SelectLikelyURLs(ctx context.Context, links []model.Link) ([]string, error) {
	payload, err := json.Marshal(links)
	if err != nil {
		return nil, fmt.Errorf("failed to encode link list: %w", err)
	}

	// likely_urls may legitimately come back as a bare string when the
	// model found a single candidate; the schema allows both shapes and
	// normalizeLikelyURLs flattens them.
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"likely_urls": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string"},
					map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"required":             []string{"likely_urls"},
		"additionalProperties": false,
	}

	raw, err := c.complete(ctx, "likely_urls", schema, likelyURLsSystemPrompt, truncate(string(payload)))
	if err != nil {
		return nil, err
	}

	var out struct {
		LikelyURLs json.RawMessage `json:"likely_urls"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode likely urls response: %w", err)
	}

	return normalizeLikelyURLs(out.LikelyURLs)
}

// ClassifyArticle converts page markup to markdown and classifies it.
func (c *OpenAIClassifier) ClassifyArticle(ctx context.Context, pageHTML string) (*model.Article, error) {
	markdown, err := htmltomarkdown.ConvertString(pageHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to markdown: %w", err)
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"classification": map[string]any{
				"type": "string",
				"enum": []string{model.ClassificationArticle, model.ClassificationCategory, model.ClassificationOther},
			},
			"title": map[string]any{"type": "string"},
			"body":  map[string]any{"type": "string"},
		},
		"required":             []string{"classification", "title", "body"},
		"additionalProperties": false,
	}

	raw, err := c.complete(ctx, "article", schema, articleSystemPrompt, truncate(markdown))
	if err != nil {
		return nil, err
	}

	var article model.Article
	if err := json.Unmarshal(raw, &article); err != nil {
		return nil, fmt.Errorf("failed to decode article response: %w", err)
	}
	return &article, nil
}

// complete runs one schema-constrained chat completion and returns the raw
// JSON content of the first choice.
func (c *OpenAIClassifier) complete(ctx context.Context, name string, schema map[string]any, system, user string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.F(c.model),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		}),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONSchemaParam{
				Type: openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   openai.F(name),
					Schema: openai.F[any](schema),
					Strict: openai.Bool(true),
				}),
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("classification request %q failed: %w", name, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	return json.RawMessage(resp.Choices[0].Message.Content), nil
}

// normalizeLikelyURLs flattens the string-or-list shape of likely_urls.
// null and empty values normalize to an empty slice.
func normalizeLikelyURLs(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, u := range list {
			if u != "" {
				out = append(out, u)
			}
		}
		return out, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil, nil
		}
		return []string{single}, nil
	}

	return nil, fmt.Errorf("likely_urls has unexpected shape: %s", string(raw))
}

// truncate caps prompt payloads at maxPromptBytes without splitting the
// final rune.
func truncate(s string) string {
	if len(s) <= maxPromptBytes {
		return s
	}
	cut := s[:maxPromptBytes]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}
