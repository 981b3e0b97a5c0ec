// Package nlp extracts date and time entities from free text using an
// OpenAI-compatible chat model.
package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/susnata2002/ai-scheduling-bot/internal/availability"
)

const extractSystemPrompt = `You are a named-entity tagger. Find every date reference and every time reference in the user's message.

Rules:
- kind "DATE": calendar date references ("Monday", "next Tuesday", "March 3", "tomorrow").
- kind "TIME": clock times and day parts ("10 AM", "3pm", "morning", "noon").
- Report entities in the order they appear in the text, with their literal substring.
- Do not invent entities. If there are none, return an empty list.`

var entitySchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"entities": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"kind": {Type: jsonschema.String, Enum: []string{"DATE", "TIME"}},
					"text": {Type: jsonschema.String},
				},
				Required:             []string{"kind", "text"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"entities"},
	AdditionalProperties: false,
}

type Config struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible endpoints
	Model   string
}

// Extractor implements availability.EntityExtractor over a chat model
// constrained to a strict JSON schema.
type Extractor struct {
	client *openai.Client
	model  string
}

func NewExtractor(cfg Config) *Extractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) ([]availability.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "entity_extraction",
				Strict: true,
				Schema: &entitySchema,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("entity extraction request failed",
			"error", err,
			"latency_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("entity extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("entity extraction: empty response")
	}

	entities, err := parseEntities(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("entity extraction returned unparseable content",
			"content", resp.Choices[0].Message.Content,
			"error", err)
		return nil, fmt.Errorf("entity extraction: %w", err)
	}

	slog.Debug("entity extraction completed",
		"entities", len(entities),
		"latency_ms", time.Since(start).Milliseconds(),
		"tokens", resp.Usage.TotalTokens)
	return entities, nil
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

func parseEntities(content string) ([]availability.Entity, error) {
	content = strings.TrimSpace(content)
	// Some models wrap JSON in markdown fences even under a schema.
	if strings.HasPrefix(content, "```") {
		if m := fenceRe.FindStringSubmatch(content); len(m) > 1 {
			content = m[1]
		}
	}

	var raw struct {
		Entities []struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		} `json:"entities"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}

	var out []availability.Entity
	for _, ent := range raw.Entities {
		var kind availability.EntityKind
		switch strings.ToUpper(ent.Kind) {
		case string(availability.KindDate):
			kind = availability.KindDate
		case string(availability.KindTime):
			kind = availability.KindTime
		default:
			continue
		}
		if strings.TrimSpace(ent.Text) == "" {
			continue
		}
		out = append(out, availability.Entity{Kind: kind, Text: ent.Text})
	}
	return out, nil
}
