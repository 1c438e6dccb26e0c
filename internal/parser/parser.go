// Package parser turns free-text messages ("кофе 250 в Шоколаднице") into a
// best-effort transaction guess using a Gemini model.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("parser: empty response from model")

// Request is one message to parse.
type Request struct {
	Text  string
	Today time.Time
	// Categories are the household's existing names, offered to the model as hints.
	Categories []string
}

// Guess is the model's structured reading of a message. Nothing in it is validated.
type Guess struct {
	Amount      decimal.Decimal
	Currency    string
	Kind        string
	Category    string
	Description string
	Merchant    string
	Date        *time.Time
}

// Generator produces raw JSON text for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// Parser asks a Generator to read transactions out of text.
type Parser struct {
	gen     Generator
	timeout time.Duration
}

// New builds a Parser backed by the Gemini API.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Parser, error) {
	if apiKey == "" {
		return nil, errors.New("parser: GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("parser: create genai client: %w", err)
	}
	return NewWithGenerator(&geminiGenerator{client: client, model: model}, timeout), nil
}

// NewWithGenerator builds a Parser around any Generator.
func NewWithGenerator(gen Generator, timeout time.Duration) *Parser {
	return &Parser{gen: gen, timeout: timeout}
}

type modelAnswer struct {
	Amount      decimal.NullDecimal `json:"amount"`
	Currency    *string             `json:"currency"`
	Kind        *string             `json:"kind"`
	Category    *string             `json:"category"`
	Description *string             `json:"description"`
	Merchant    *string             `json:"merchant"`
	Date        *string             `json:"date"`
}

// Parse sends the message to the model and decodes its answer.
func (p *Parser) Parse(ctx context.Context, req Request) (*Guess, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("parser: empty text")
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.gen.GenerateJSON(ctx, buildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("parser: generate content: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyResponse
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &answer); err != nil {
		return nil, fmt.Errorf("parser: unmarshal JSON: %w", err)
	}

	guess := &Guess{
		Currency:    strings.ToUpper(deref(answer.Currency)),
		Kind:        strings.ToLower(deref(answer.Kind)),
		Category:    deref(answer.Category),
		Description: deref(answer.Description),
		Merchant:    deref(answer.Merchant),
	}
	if answer.Amount.Valid {
		guess.Amount = answer.Amount.Decimal.Abs()
	}
	if d := deref(answer.Date); d != "" {
		if parsed, err := time.Parse("2006-01-02", d); err == nil {
			guess.Date = &parsed
		}
	}
	return guess, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You extract a single household income or expense from a chat message.\n\n")
	fmt.Fprintf(&b, "Today is %s.\n", req.Today.Format("2006-01-02"))
	b.WriteString("Return STRICT JSON only, one object with these fields:\n" +
		"- \"amount\": positive number, or null if no amount is present\n" +
		"- \"currency\": ISO 4217 code, or null if not mentioned\n" +
		"- \"kind\": \"expense\" or \"income\"\n" +
		"- \"category\": short category name\n" +
		"- \"description\": short description in the message's language\n" +
		"- \"merchant\": shop or vendor name, or null\n" +
		"- \"date\": \"YYYY-MM-DD\" (resolve words like yesterday against today)\n")
	if len(req.Categories) > 0 {
		b.WriteString("\nPrefer one of the existing categories when it fits: ")
		b.WriteString(strings.Join(req.Categories, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nDo NOT wrap the response in code fences.\n\nMessage:\n")
	b.WriteString(req.Text)
	return b.String()
}

// cleanModelJSON strips markdown fences and stray prose around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
