// Package gemini wraps the Google generative AI API: text rewrite for the
// publish cycle and sentence embeddings for the relevance classifier.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	rewriteModel   = "gemini-1.5-flash"
	embeddingModel = "text-embedding-004"

	// Keep prompts bounded; over-long articles are cut on a sentence edge.
	maxPromptChars = 6000
)

type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Rewrite asks the model for a short, lively Telegram rendition of the news
// text. The caller gets back plain trimmed text.
func (c *Client) Rewrite(ctx context.Context, text string) (string, error) {
	model := c.client.GenerativeModel(rewriteModel)

	prompt := fmt.Sprintf(`Ты редактор новостей.

Перепиши новость для Telegram:
— коротко
— живо
— 1–2 абзаца
— без клише
— без разметки markdown

Текст:
%s`, sanitizeInput(text))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	out := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty rewrite from Gemini")
	}

	return out, nil
}

// Embed computes a sentence embedding for the classifier.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	model := c.client.EmbeddingModel(embeddingModel)

	resp, err := model.EmbedContent(ctx, genai.Text(sanitizeInput(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from Gemini")
	}

	return resp.Embedding.Values, nil
}

// sanitizeInput collapses whitespace and trims over-long content on a rune
// boundary, preferring to end at a sentence.
func sanitizeInput(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")

	if utf8.RuneCountInString(content) <= maxPromptChars {
		return content
	}

	runes := []rune(content)
	trimmed := string(runes[:maxPromptChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}
