package agents

import (
	"context"
	"fmt"

	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/knowledge"
)

var entitiesPrompt = fmt.Sprintf(`You are an entity extraction specialist for Das ELB Hotel & Restaurant in Magdeburg, Germany.

%s

Extract all relevant structured information from the email. For any field not mentioned in the email, use null.
Dates must be in YYYY-MM-DD format. Times in HH:MM (24h). Return ONLY valid JSON.

OUTPUT FORMAT:
{
  "guest_name": "<full name or null>",
  "guest_email": "<email address or null>",
  "guest_phone": "<phone number or null>",
  "company_name": "<company or null>",
  "check_in_date": "<YYYY-MM-DD or null>",
  "check_out_date": "<YYYY-MM-DD or null>",
  "nights": <integer or null>,
  "room_type_requested": "komfort" | "komfort plus" | "suite" | null,
  "num_adults": <integer or null>,
  "num_children": <integer or null>,
  "num_attendees": <integer or null>,
  "conference_room_preference": "veranstaltungsraum" | "workshop-405" | null,
  "catering_package": "starter" | "starter-plus" | "komfort" | null,
  "equipment_needed": [],
  "special_requests": "<string or null>",
  "budget_mentioned": "<string or null>",
  "estimated_revenue": <float or null>,
  "reservation_date": "<YYYY-MM-DD for restaurant or null>",
  "reservation_time": "<HH:MM or null>",
  "num_persons_dining": <integer or null>,
  "existing_booking_reference": "<reference number or null>",
  "field_confidence": {
    "check_in_date": <0.0 to 1.0>,
    "check_out_date": <0.0 to 1.0>,
    "room_type_requested": <0.0 to 1.0>,
    "num_adults": <0.0 to 1.0>
  }
}

For estimated_revenue: calculate based on mentioned dates, room type, and guest count using prices from the knowledge base.`, knowledge.HotelKB)

// EntityExtractor extrai dados estruturados de reserva e contato
type EntityExtractor struct {
	llm llm.Completer
}

// NewEntityExtractor cria o agente de extração de entidades
func NewEntityExtractor(completer llm.Completer) *EntityExtractor {
	return &EntityExtractor{llm: completer}
}

// Extract extrai as entidades do e-mail, informado pela intenção já classificada
func (a *EntityExtractor) Extract(ctx context.Context, subject, body, intent string) (model.JSONMap, error) {
	userMessage := fmt.Sprintf("Classified intent: %s\n\nSubject: %s\n\nBody:\n%s", intent, subject, body)
	return a.llm.Complete(ctx, "entities", entitiesPrompt, userMessage, 1024)
}
