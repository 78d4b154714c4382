package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the slice of the OpenAI client the classifier needs.
// Interface allows a fake in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLM classifies utterances with a chat model constrained to the same
// intent taxonomy as the rule-based path. Any transport or parse failure
// is returned as an error so the fallback wrapper can take over; the model
// never produces a partial or mixed result.
type LLM struct {
	client chatCompleter
	model  string
}

// NewLLM creates a model-backed classifier using the given API key.
func NewLLM(apiKey, model string) *LLM {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLM{client: openai.NewClient(apiKey), model: model}
}

// newLLMWithClient is the test seam.
func newLLMWithClient(client chatCompleter, model string) *LLM {
	return &LLM{client: client, model: model}
}

const systemPrompt = `You classify a shopper's chat message for a price-negotiation bot.
Reply with JSON only, no prose, using this schema:
{"intent": "state_offer" | "request_discount" | "accept_counter" | "reject_counter" | "browse" | "greeting" | "unknown",
 "amount_rupees": 0,
 "query": ""}
Rules:
- "state_offer" when the message contains a concrete price the shopper is willing to pay; put the price in rupees in amount_rupees.
- "request_discount" for haggling without a number.
- "accept_counter" / "reject_counter" for accepting or refusing a previously quoted price.
- "browse" for product discovery; put the search text in query.
- "greeting" for small talk openers.
- "unknown" when unsure. Amounts may use Indian notation (₹, k, thousand, Telugu numerals).`

// llmResult is the wire schema the model is instructed to emit.
type llmResult struct {
	Intent       string  `json:"intent"`
	AmountRupees float64 `json:"amount_rupees"`
	Query        string  `json:"query"`
}

// Classify sends the utterance to the model and maps the JSON reply onto
// the taxonomy. An out-of-taxonomy intent is an error, not Unknown: the
// deterministic fallback should answer instead of trusting a confused model.
func (l *LLM) Classify(ctx context.Context, utterance string) (Classification, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: utterance},
		},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Classification{}, fmt.Errorf("chat completion: empty response")
	}

	var result llmResult
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Classification{}, fmt.Errorf("parse model reply %q: %w", content, err)
	}
	return result.toClassification()
}

func (r llmResult) toClassification() (Classification, error) {
	in := Intent(r.Intent)
	switch in {
	case StateOffer:
		if r.AmountRupees <= 0 {
			return Classification{}, fmt.Errorf("state_offer without amount")
		}
		amount := int64(math.Round(r.AmountRupees * 100))
		return Classification{Intent: StateOffer, Amount: &amount}, nil
	case Browse:
		return Classification{Intent: Browse, Query: r.Query}, nil
	case RequestDiscount, AcceptCounter, RejectCounter, Greeting, Unknown:
		return Classification{Intent: in}, nil
	default:
		return Classification{}, fmt.Errorf("model returned unknown intent %q", r.Intent)
	}
}
