package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/knowledge"
)

var responsePrompt = fmt.Sprintf(`You are the professional guest relations email writer for Das ELB Hotel & Restaurant in Magdeburg, Germany.

%s

STRICT WRITING RULES:
1. Match the guest's language exactly (DE or EN). If uncertain, write German with a brief English note.
2. German: Use formal "Sie" form (never "du"). Warm but professional tone.
3. English: Professional and welcoming tone.
4. Always use exact prices from the knowledge base or live API data, never invent pricing.
5. For bookings: always state check-in time (13:00) and check-out time (11:00).
6. For unavailable rooms: apologize genuinely, offer real alternatives with their prices.
7. For complaints with anger_level >= 6: lead with sincere empathy, offer concrete resolution, do NOT be defensive.
8. Naturally weave in the most relevant upsell opportunity if appropriate, never pushy.
9. Maximum length: 350 words for standard replies, 500 words for conference quotes.
10. Always end with the hotel contact block.

GERMAN SIGN-OFF:
Mit freundlichen Grüßen,
Das Team vom Das ELB Hotel & Restaurant
Seilerweg 19, 39114 Magdeburg
+49 391 756 326 60 | rezeption@das-elb.de | www.das-elb-hotel.com

ENGLISH SIGN-OFF:
Warm regards,
The Das ELB Team
Seilerweg 19, 39114 Magdeburg, Germany
+49 391 756 326 60 | rezeption@das-elb.de | www.das-elb-hotel.com

Return ONLY valid JSON (no markdown):
{
  "subject": "<reply subject line, Re: original subject>",
  "body_text": "<full plain-text email body with correct line breaks>",
  "detected_language": "de" | "en",
  "includes_price_quote": <true | false>,
  "includes_booking_confirmation": <true | false>,
  "action_required_by_staff": "<any action staff must take before sending, or null>"
}`, knowledge.HotelKB)

var refinePrompt = fmt.Sprintf(`You are the professional guest relations email writer for Das ELB Hotel & Restaurant in Magdeburg, Germany.

%s

The user (a hotel staff member) has instructed you to modify an existing email draft.
You must strictly follow their instruction while maintaining the exact same language format and professional tone of the existing draft.

Return ONLY valid JSON (no markdown):
{
  "subject": "<updated subject line>",
  "body_text": "<full plain-text email body with correct line breaks>"
}`, knowledge.HotelKB)

// Draft é o resultado tipado do agente redator
type Draft struct {
	Subject                     string
	BodyText                    string
	DetectedLanguage            string
	IncludesPriceQuote          bool
	IncludesBookingConfirmation bool
	ActionRequiredByStaff       string
}

// WriteInput reúne as saídas dos agentes anteriores para o redator
type WriteInput struct {
	Subject        string
	Body           string
	Intent         string
	Language       string
	Entities       model.JSONMap
	Policy         model.JSONMap
	Risk           model.JSONMap
	VIP            *model.VIPInfo
	StyleInjection string
	SimilarReplies []SimilarReply
}

// SimilarReply é uma resposta humana anterior recuperada por similaridade
type SimilarReply struct {
	Subject    string
	Body       string
	Similarity float64
}

// ResponseWriter gera a resposta profissional bilíngue (DE/EN)
type ResponseWriter struct {
	llm llm.Completer
}

// NewResponseWriter cria o agente redator de respostas
func NewResponseWriter(completer llm.Completer) *ResponseWriter {
	return &ResponseWriter{llm: completer}
}

// Write gera o rascunho de resposta com base nas saídas dos agentes anteriores
func (a *ResponseWriter) Write(ctx context.Context, in WriteInput) (*Draft, error) {
	systemPrompt := responsePrompt
	if in.StyleInjection != "" {
		systemPrompt = responsePrompt + "\n\n" + in.StyleInjection
	}

	entitiesJSON, _ := json.MarshalIndent(in.Entities, "", "  ")
	policyJSON, _ := json.MarshalIndent(in.Policy, "", "  ")
	riskJSON, _ := json.MarshalIndent(in.Risk, "", "  ")

	vipStatus := "Not a known VIP guest"
	if in.VIP != nil {
		vipJSON, _ := json.Marshal(in.VIP)
		vipStatus = string(vipJSON)
	}

	var rag strings.Builder
	if len(in.SimilarReplies) > 0 {
		rag.WriteString("\n\nPAST HUMAN REPLIES TO HIGHLY SIMILAR EMAILS (Use these as absolute primary templates for phrasing, tone, and formatting):\n")
		for i, ref := range in.SimilarReplies {
			fmt.Fprintf(&rag, "-- Reference %d (Relevance: %.2f) --\n", i+1, ref.Similarity)
			fmt.Fprintf(&rag, "Human Subject: %s\n", ref.Subject)
			fmt.Fprintf(&rag, "Human Body:\n%s\n\n", ref.Body)
		}
	}

	userMessage := fmt.Sprintf(
		"ORIGINAL EMAIL:\nSubject: %s\nBody:\n%s\n\nINTENT: %s\nDETECTED LANGUAGE: %s\n\n"+
			"EXTRACTED ENTITIES:\n%s\n\nPOLICY VALIDATION:\n%s\n\nRISK ASSESSMENT:\n%s\n\nVIP STATUS: %s\n%s",
		in.Subject, in.Body, in.Intent, in.Language,
		entitiesJSON, policyJSON, riskJSON, vipStatus, rag.String())

	out, err := a.llm.Complete(ctx, "response", systemPrompt, userMessage, 2048)
	if err != nil {
		return nil, err
	}

	return draftFromMap(out), nil
}

// Refine aplica a instrução da equipe sobre um rascunho existente
func (a *ResponseWriter) Refine(ctx context.Context, originalSubject, originalBody, draftSubject, draftBody, instructions, language string) (*Draft, error) {
	userMessage := fmt.Sprintf(
		"ORIGINAL EMAIL RECEIVED FROM GUEST:\nSubject: %s\nBody:\n%s\n\n"+
			"CURRENT AI DRAFT REPLY:\nSubject: %s\nBody:\n%s\n\n"+
			"STAFF INSTRUCTION TO REFINE DRAFT:\n%s\n\nLANGUAGE DETECTED: %s\n\n"+
			"Apply the staff instruction to the draft. Keep everything else intact. Adhere to hotel policies from the knowledge base.",
		originalSubject, originalBody, draftSubject, draftBody, instructions, language)

	out, err := a.llm.Complete(ctx, "refine", refinePrompt, userMessage, 2048)
	if err != nil {
		return nil, err
	}

	return draftFromMap(out), nil
}

func draftFromMap(out model.JSONMap) *Draft {
	return &Draft{
		Subject:                     out.String("subject"),
		BodyText:                    out.String("body_text"),
		DetectedLanguage:            out.String("detected_language"),
		IncludesPriceQuote:          out.Bool("includes_price_quote"),
		IncludesBookingConfirmation: out.Bool("includes_booking_confirmation"),
		ActionRequiredByStaff:       out.String("action_required_by_staff"),
	}
}
