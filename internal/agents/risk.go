package agents

import (
	"context"
	"fmt"

	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

const riskPrompt = `You are a risk and sentiment analysis specialist for a hotel email management system.

Analyze the incoming email for:
1. Emotional tone and anger level
2. Legal risk indicators (threats, consumer protection complaints, review threats)
3. VIP or high-value signals
4. Complaint severity
5. Revenue potential
6. Whether this is an automated/system message that needs no reply

Return ONLY valid JSON with no markdown or explanation:
{
  "sentiment": "very_negative" | "negative" | "neutral" | "positive" | "very_positive",
  "anger_level": <0 to 10>,
  "legal_risk": <true | false>,
  "legal_risk_indicators": ["<specific phrase or signal>"],
  "is_vip_signal": <true | false>,
  "vip_indicators": ["<what signals VIP status>"],
  "complaint_severity": "none" | "low" | "medium" | "high" | "critical",
  "requires_manager_escalation": <true | false>,
  "escalation_reason": "<string or null>",
  "estimated_revenue_eur": <float or null>,
  "revenue_category": "low" | "medium" | "high" | "vip",
  "notify_staff_immediately": <true | false>,
  "notification_reason": "<string or null>",
  "overall_risk_score": <0.0 to 1.0>,
  "recommended_priority": "low" | "normal" | "high" | "urgent",
  "is_automated_message": <true | false>,
  "automated_message_reason": "<why this is automated/no-reply-needed, or null>"
}

AUTOMATED MESSAGE RULES -- set is_automated_message: true if:
- Subject starts with "Automatische Antwort", "Auto-reply", "Out of office", "Abwesenheit"
- Subject or body contains "Newsletter", "Unsubscribe", "Abmelden"
- From a booking platform (booking.com, expedia, hotels.com, airbnb, trivago)
- Contains "noreply@", "no-reply@", "donotreply@" in From header
- Is a payment confirmation, invoice, or system notification
- Contains "Buchungsbestätigung", "Ihre Reservierung", "Zahlungseingang"
- Is a bounce/delivery failure notification

ESCALATION RULES:
- complaint_severity high or critical -> requires_manager_escalation: true
- legal_risk: true -> requires_manager_escalation: true
- estimated_revenue_eur > 5000 -> notify_staff_immediately: true
- anger_level >= 8 -> recommended_priority: urgent`

// RiskAnalyzer detecta raiva, risco legal, sinais VIP e potencial de receita.
// Roda em paralelo com a classificação de intenção e extração de entidades.
type RiskAnalyzer struct {
	llm llm.Completer
}

// NewRiskAnalyzer cria o agente de análise de risco e sentimento
func NewRiskAnalyzer(completer llm.Completer) *RiskAnalyzer {
	return &RiskAnalyzer{llm: completer}
}

// Analyze avalia risco e sentimento do e-mail
func (a *RiskAnalyzer) Analyze(ctx context.Context, subject, body, intent string, estimatedRevenue *float64) (model.JSONMap, error) {
	revenue := "null"
	if estimatedRevenue != nil {
		revenue = fmt.Sprintf("%.2f", *estimatedRevenue)
	}

	userMessage := fmt.Sprintf(
		"Intent: %s\nEstimated revenue from entities: %s\n\nSubject: %s\n\nBody:\n%s",
		intent, revenue, subject, body)
	return a.llm.Complete(ctx, "risk", riskPrompt, userMessage, 768)
}
