package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/adapter/llm"
	"github.com/das-elb/email-agent-go/internal/domain/model"
)

const styleLearnerPrompt = `You are analyzing a collection of emails sent by Das ELB Hotel & Restaurant staff.
Your goal is to deeply understand their exact writing style so an AI agent can replicate it perfectly.

Analyze ALL provided emails and extract:

1. GREETING PATTERNS -- How do they address guests? (e.g., "Sehr geehrter Herr X", "Guten Tag Frau X", "Liebes Team")
2. SIGN-OFF STYLE -- The exact closing block used (name, title, contact info format)
3. TONE MARKERS -- Characteristic words/phrases they always use (e.g., "gerne", "herzlich", "selbstverständlich")
4. STRUCTURAL HABITS -- Do they use bullet points? Numbered lists? Short paragraphs?
5. AVERAGE LENGTH -- Approximate word count of their replies
6. ALWAYS INCLUDES -- Things they never forget (check-in time, contact block, specific disclaimer)
7. NEVER DOES -- Patterns they avoid (informal language, certain phrases)
8. NO-REPLY INDICATORS -- Patterns in subjects/bodies of emails they DO NOT reply to (automated, newsletters, OTA booking confirmations, internal CC chains)
9. PER-INTENT EXAMPLES -- For each intent type, find the best example body text

Return ONLY valid JSON (no markdown):
{
  "greeting_patterns": ["<pattern 1>", "<pattern 2>"],
  "sign_off": "<exact full sign-off block including name, title, hotel contact>",
  "tone_words": ["<word/phrase 1>", "<word/phrase 2>"],
  "structural_style": "<description of how they format replies>",
  "avg_length_words": <integer>,
  "always_includes": ["<item 1>", "<item 2>"],
  "never_does": ["<item 1>", "<item 2>"],
  "no_reply_indicators": ["<subject pattern 1>", "<subject pattern 2>"],
  "no_reply_sender_patterns": ["<domain/keyword that means no-reply needed>"],
  "per_intent_samples": {
    "conference_inquiry": "<best example reply body, or null if not found>",
    "room_booking": "<best example reply body, or null if not found>",
    "complaint": "<best example reply body, or null if not found>",
    "general_inquiry": "<best example reply body, or null if not found>"
  },
  "key_insights": "<2-3 sentence summary of what makes this hotel's writing style distinctive>"
}`

// StyleLearner analisa e-mails enviados pela equipe e extrai o perfil de
// escrita do hotel, injetado depois no prompt do redator.
type StyleLearner struct {
	llm    llm.Completer
	logger *zap.Logger
}

// NewStyleLearner cria o agente de aprendizado de estilo
func NewStyleLearner(completer llm.Completer, logger *zap.Logger) *StyleLearner {
	return &StyleLearner{llm: completer, logger: logger}
}

// AnalyzeSentEmails extrai o perfil de estilo a partir dos e-mails enviados.
// Sem e-mails disponíveis, devolve o perfil padrão.
func (a *StyleLearner) AnalyzeSentEmails(ctx context.Context, sentEmails []model.SentEmail) model.JSONMap {
	if len(sentEmails) == 0 {
		a.logger.Warn("nenhum e-mail enviado disponível para análise de estilo")
		return DefaultStyleProfile()
	}

	// Máximo de 40 e-mails, 800 caracteres cada, para caber no budget de tokens
	capped := sentEmails
	if len(capped) > 40 {
		capped = capped[:40]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are %d emails sent by Das ELB Hotel staff.\nAnalyze them and extract the writing style profile.\n\n", len(sentEmails))
	for i, e := range capped {
		body := e.Body
		if len(body) > 800 {
			body = body[:800]
		}
		fmt.Fprintf(&sb, "--- EMAIL %d ---\nSubject: %s\nTo: %s\nBody:\n%s\n\n", i+1, e.Subject, e.To, body)
	}

	result, err := a.llm.Complete(ctx, "style", styleLearnerPrompt, sb.String(), 4096)
	if err != nil || len(result) == 0 {
		a.logger.Error("análise de estilo falhou, usando perfil padrão", zap.Error(err))
		return DefaultStyleProfile()
	}

	a.logger.Info("análise de estilo concluída", zap.Int("emails", len(sentEmails)))
	return result
}

// BuildStyleInjection converte o perfil extraído na seção de prompt que é
// injetada no agente redator.
func BuildStyleInjection(profile model.JSONMap) string {
	lines := []string{"## LEARNED WRITING STYLE (from actual hotel email history)\n"}

	if signOff := profile.String("sign_off"); signOff != "" {
		lines = append(lines, fmt.Sprintf("EXACT SIGN-OFF TO USE:\n%s\n", signOff))
	}

	if greetings := profile.Strings("greeting_patterns"); len(greetings) > 0 {
		lines = append(lines, "GREETING PATTERNS USED BY STAFF:")
		for _, p := range capStrings(greetings, 4) {
			lines = append(lines, "  - "+p)
		}
		lines = append(lines, "")
	}

	if toneWords := profile.Strings("tone_words"); len(toneWords) > 0 {
		lines = append(lines, "CHARACTERISTIC TONE WORDS: "+strings.Join(capStrings(toneWords, 10), ", "))
	}

	if structural := profile.String("structural_style"); structural != "" {
		lines = append(lines, "STRUCTURAL STYLE: "+structural)
	}

	if avgLen := profile.Float("avg_length_words"); avgLen > 0 {
		lines = append(lines, fmt.Sprintf("TARGET LENGTH: approximately %d words", int(avgLen)))
	}

	if always := profile.Strings("always_includes"); len(always) > 0 {
		lines = append(lines, "\nALWAYS INCLUDE:")
		for _, item := range capStrings(always, 5) {
			lines = append(lines, "  - "+item)
		}
	}

	if never := profile.Strings("never_does"); len(never) > 0 {
		lines = append(lines, "\nNEVER DO:")
		for _, item := range capStrings(never, 5) {
			lines = append(lines, "  - "+item)
		}
	}

	if samples, ok := profile["per_intent_samples"].(map[string]interface{}); ok {
		for intent, raw := range samples {
			sample, _ := raw.(string)
			if len(sample) <= 50 {
				continue
			}
			if len(sample) > 600 {
				sample = sample[:600]
			}
			label := strings.ToUpper(strings.ReplaceAll(intent, "_", " "))
			lines = append(lines, fmt.Sprintf("\nEXAMPLE %s REPLY:", label))
			lines = append(lines, sample)
		}
	}

	if insights := profile.String("key_insights"); insights != "" {
		lines = append(lines, "\nSTYLE INSIGHT: "+insights)
	}

	return strings.Join(lines, "\n")
}

// DefaultStyleProfile é o perfil usado enquanto não há e-mails enviados analisados
func DefaultStyleProfile() model.JSONMap {
	return model.JSONMap{
		"greeting_patterns": []interface{}{"Sehr geehrter Herr/Frau X", "Guten Tag,"},
		"sign_off":          "Mit freundlichen Grüßen,\nDas Team vom Das ELB Hotel & Restaurant\nSeilerweg 19, 39114 Magdeburg\n+49 391 756 326 60 | info@das-elb.de",
		"tone_words":        []interface{}{"gerne", "herzlich willkommen", "freuen uns", "selbstverständlich"},
		"structural_style":  "Short paragraphs, professional German formal style",
		"avg_length_words":  float64(120),
		"always_includes":   []interface{}{"check-in time 13:00", "check-out time 11:00", "contact block"},
		"never_does":        []interface{}{"uses informal 'du'", "invents prices"},
		"no_reply_indicators": []interface{}{
			"Automatische Antwort", "Newsletter", "Buchungsbestätigung", "Unzustellbar", "Abwesenheitsnotiz",
		},
		"no_reply_sender_patterns": []interface{}{
			"noreply", "no-reply", "donotreply", "booking.com", "expedia", "hotels.com",
		},
		"per_intent_samples": map[string]interface{}{},
		"key_insights":       "Professional German hotel tone with formal Sie form, warm but concise replies.",
	}
}

func capStrings(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
