package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

// Remetentes do próprio hotel: nunca responder a nós mesmos
var hotelSenders = []string{"rezeption@das-elb.de", "info@das-elb.de", "das-elb.de"}

// Endereços noreply inequívocos
var noReplySenderPrefixes = []string{
	"noreply@", "no-reply@", "donotreply@", "do-not-reply@",
	"mailer-daemon@", "postmaster@",
}

// Remetentes automatizados de sistemas de reserva e marketing (não hóspedes)
var automatedSenders = []string{
	"dirs21.de", "booking.com", "expedia.com", "hotels.com",
	"airbnb.com", "trivago.com", "hrs.com", "hrs.de",
	"newsletter.", "versandbestaetigung@", "amazon.de",
	"ionos-online-marketing", "bueromarkt", "paypal",
}

// Assuntos de respostas automáticas (frases exatas apenas)
var autoSubjectPatterns = []string{
	"automatische antwort", "auto-reply", "out of office",
	"abwesenheitsnotiz", "außer haus", "nicht im büro",
	"unsubscribe", "delivery failure", "undelivered",
	"unzustellbar", "mailer-daemon",
}

// Marcadores de corpo gerado automaticamente
var autoBodyMarkers = []string{
	"diese e-mail wurde automatisch generiert",
	"diese nachricht wurde automatisch",
	"this is an automated message",
	"this email was sent automatically",
	"do not reply to this email",
	"bitte nicht auf diese e-mail antworten",
}

// isNoReplyNeeded decide se um e-mail dispensa resposta da IA.
// Conservador: na dúvida, gera rascunho. Só pula mensagens realmente
// automatizadas, nunca e-mails reais de hóspedes.
func isNoReplyNeeded(intentResult, riskResult model.JSONMap, email model.InboundEmail, styleProfile *model.StyleProfile) bool {
	subject := strings.ToLower(email.Subject)
	fromEmail := strings.ToLower(email.FromEmail)
	body := strings.ToLower(email.Body)
	if len(body) > 2000 {
		body = body[:2000]
	}

	for _, hs := range hotelSenders {
		if strings.HasSuffix(fromEmail, hs) || fromEmail == hs {
			return true
		}
	}

	for _, prefix := range noReplySenderPrefixes {
		if strings.HasPrefix(fromEmail, prefix) || strings.Contains(fromEmail, "<"+prefix) {
			return true
		}
	}

	for _, pattern := range automatedSenders {
		if strings.Contains(fromEmail, pattern) {
			return true
		}
	}

	for _, pattern := range autoSubjectPatterns {
		if strings.Contains(subject, pattern) {
			return true
		}
	}

	for _, marker := range autoBodyMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}

	// IA marcou como automatizado E a intenção é realmente de sistema
	if riskResult.Bool("is_automated_message") && intentResult.String("primary_intent") == "other" {
		return true
	}

	// Padrões aprendidos do perfil de estilo
	if styleProfile != nil && styleProfile.ProfileJSON != nil {
		for _, pattern := range styleProfile.ProfileJSON.Strings("no_reply_sender_patterns") {
			if pattern != "" && strings.Contains(fromEmail, strings.ToLower(pattern)) {
				return true
			}
		}
	}

	return false
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// CleanBody remove tags HTML e trunca o corpo antes de enviar aos agentes.
// Confirmações de reserva costumam ser páginas HTML de 50k+ caracteres que
// estouram o budget de tokens.
func CleanBody(body string, maxChars int) string {
	if body == "" {
		return ""
	}
	if maxChars <= 0 {
		maxChars = 4000
	}

	text := htmlTagRe.ReplaceAllString(body, " ")
	text = spacesRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > maxChars {
		runes := []rune(text)
		text = string(runes[:maxChars]) + "\n...[truncated]"
	}
	return text
}
