package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/das-elb/email-agent-go/internal/adapter/hotelapi"
	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/knowledge"
)

var policyPrompt = fmt.Sprintf(`You are a hotel policy validator for Das ELB Hotel & Restaurant.

%s

You are given extracted booking entities and real-time availability data from the hotel's live API.
Determine whether the request is fulfillable, calculate accurate pricing, identify policy issues,
suggest alternatives if needed, and flag upsell opportunities.

Return ONLY valid JSON:
{
  "is_fulfillable": <true | false>,
  "availability_checked": <true | false>,
  "room_available": <true | false | null>,
  "live_price_per_night": <float or null>,
  "total_estimated_price": <float or null>,
  "price_breakdown": {
    "room_nights": <float or null>,
    "conference_room": <float or null>,
    "catering": <float or null>,
    "equipment": <float or null>,
    "total": <float or null>
  },
  "policy_issues": ["<issue description>"],
  "alternatives": [
    {
      "room_type": "<alternative>",
      "price_per_night": <float>,
      "reason": "<why recommended>"
    }
  ],
  "requires_manager_approval": <true | false>,
  "manager_approval_reason": "<string or null>",
  "upsell_opportunities": ["<natural upsell suggestion>"],
  "policy_notes": "<any policy to communicate to guest or null>"
}

APPROVAL RULES:
- Group >10 guests -> requires_manager_approval: true
- Estimated revenue >EUR 5,000 -> requires_manager_approval: true
- Cancellation dispute -> requires_manager_approval: true`, knowledge.HotelKB)

// PolicyValidator valida as entidades extraídas contra as regras do hotel
// e consulta as APIs ao vivo de disponibilidade e preços.
type PolicyValidator struct {
	llm      llm.Completer
	hotelAPI *hotelapi.Client
}

// NewPolicyValidator cria o agente de validação de políticas
func NewPolicyValidator(completer llm.Completer, hotelAPI *hotelapi.Client) *PolicyValidator {
	return &PolicyValidator{llm: completer, hotelAPI: hotelAPI}
}

// Validate verifica se o pedido é atendível, com dados ao vivo quando disponíveis
func (a *PolicyValidator) Validate(ctx context.Context, entities model.JSONMap, intent string) (model.JSONMap, error) {
	availability := model.JSONMap{}
	var rooms []interface{}

	checkIn := entities.String("check_in_date")
	checkOut := entities.String("check_out_date")
	roomType := entities.String("room_type_requested")

	if a.hotelAPI != nil {
		if checkIn != "" && roomType != "" {
			availability = a.hotelAPI.FetchAvailability(ctx, roomType, checkIn, checkOut)
		}

		if intent == "room_booking" || intent == "group_booking" {
			rooms = a.hotelAPI.FetchRooms(ctx)
		}
	}

	entitiesJSON, _ := json.MarshalIndent(entities, "", "  ")
	availabilityJSON, _ := json.MarshalIndent(availability, "", "  ")
	roomsJSON, _ := json.MarshalIndent(rooms, "", "  ")

	userMessage := fmt.Sprintf(
		"INTENT: %s\n\nEXTRACTED ENTITIES:\n%s\n\nLIVE AVAILABILITY RESPONSE:\n%s\n\nLIVE ROOMS DATA:\n%s",
		intent, entitiesJSON, availabilityJSON, roomsJSON)
	return a.llm.Complete(ctx, "policy", policyPrompt, userMessage, 1024)
}
