// Package agents contém os agentes LLM do pipeline de e-mails: classificação
// de intenção, extração de entidades, validação de políticas, análise de
// risco, redação de respostas e aprendizado de estilo.
package agents

import (
	"context"
	"fmt"

	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/knowledge"
)

var intentPrompt = fmt.Sprintf(`You are an email intent classifier for Das ELB Hotel & Restaurant in Magdeburg, Germany.

%s

Analyze the incoming email and classify its primary intent. Return ONLY valid JSON, no markdown, no explanation.

INTENT CATEGORIES:
- room_booking:            Guest wants to book a hotel room/apartment
- room_cancellation:       Guest wants to cancel or modify an existing room booking
- restaurant_reservation:  Guest wants to reserve a table at the restaurant
- conference_inquiry:      Inquiry about meeting rooms, conference packages, or events
- group_booking:           Group of 10+ persons for rooms or dining
- complaint:               Guest expressing dissatisfaction, negative experience, or formal complaint
- general_inquiry:         Questions about hotel, amenities, location, policies, pricing
- vip_request:             Special treatment, known VIP guest, media/press, high-value request
- event_booking:           Booking tickets for hotel events (parties, galas, themed nights)
- other:                   Does not fit any above category

URGENCY LEVELS:
- low:      No time pressure
- medium:   Request within 1-2 weeks
- high:     Request within 1-7 days
- critical: Today or complaint requiring immediate response

Return JSON in this exact format:
{
  "primary_intent": "<intent_category>",
  "secondary_intent": "<intent_category or null>",
  "confidence": <0.0 to 1.0>,
  "language": "de" | "en" | "other",
  "urgency": "low" | "medium" | "high" | "critical",
  "reasoning": "<1 sentence explanation>"
}`, knowledge.HotelKB)

// IntentClassifier classifica a intenção primária de um e-mail recebido
type IntentClassifier struct {
	llm llm.Completer
}

// NewIntentClassifier cria o agente de classificação de intenção
func NewIntentClassifier(completer llm.Completer) *IntentClassifier {
	return &IntentClassifier{llm: completer}
}

// Classify classifica o e-mail e devolve intenção, idioma e urgência
func (a *IntentClassifier) Classify(ctx context.Context, subject, body string) (model.JSONMap, error) {
	userMessage := fmt.Sprintf("Subject: %s\n\nBody:\n%s", subject, body)
	return a.llm.Complete(ctx, "intent", intentPrompt, userMessage, 512)
}
