package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

func TestIsNoReplyNeeded_RemetenteDoHotel(t *testing.T) {
	email := model.InboundEmail{FromEmail: "rezeption@das-elb.de", Subject: "Re: Anfrage"}
	assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, nil))
}

func TestIsNoReplyNeeded_RemetenteNoReply(t *testing.T) {
	cases := []string{
		"noreply@example.com",
		"no-reply@shop.de",
		"mailer-daemon@mail.ionos.de",
		"Sistema <donotreply@platform.com>",
	}
	for _, from := range cases {
		email := model.InboundEmail{FromEmail: strings.ToLower(from)}
		assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, nil), from)
	}
}

func TestIsNoReplyNeeded_PlataformasDeReserva(t *testing.T) {
	email := model.InboundEmail{
		FromEmail: "confirmation@booking.com",
		Subject:   "Neue Buchung",
	}
	assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, nil))
}

func TestIsNoReplyNeeded_AssuntoAutomatico(t *testing.T) {
	email := model.InboundEmail{
		FromEmail: "gast@example.com",
		Subject:   "Automatische Antwort: Ihre Anfrage",
	}
	assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, nil))
}

func TestIsNoReplyNeeded_MarcadorNoCorpo(t *testing.T) {
	email := model.InboundEmail{
		FromEmail: "system@partner.de",
		Subject:   "Bestellung",
		Body:      "Diese E-Mail wurde automatisch generiert. Bitte nicht antworten.",
	}
	assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, nil))
}

func TestIsNoReplyNeeded_FlagDaIAMaisIntencaoOther(t *testing.T) {
	email := model.InboundEmail{FromEmail: "unknown@system.io", Subject: "Notification"}

	intent := model.JSONMap{"primary_intent": "other"}
	risk := model.JSONMap{"is_automated_message": true}
	assert.True(t, isNoReplyNeeded(intent, risk, email, nil))

	// Flag de automatizado sozinha não basta quando a intenção é real
	intent = model.JSONMap{"primary_intent": "room_booking"}
	assert.False(t, isNoReplyNeeded(intent, risk, email, nil))
}

func TestIsNoReplyNeeded_PadroesAprendidos(t *testing.T) {
	email := model.InboundEmail{FromEmail: "news@hotelverband.de", Subject: "Branchennews"}
	profile := &model.StyleProfile{
		ProfileJSON: model.JSONMap{
			"no_reply_sender_patterns": []interface{}{"hotelverband.de"},
		},
	}
	assert.True(t, isNoReplyNeeded(model.JSONMap{}, model.JSONMap{}, email, profile))
}

func TestIsNoReplyNeeded_EmailRealDeHospede(t *testing.T) {
	email := model.InboundEmail{
		FromEmail: "max.mustermann@gmail.com",
		Subject:   "Zimmeranfrage für August",
		Body:      "Guten Tag, ich möchte ein Zimmer buchen.",
	}
	intent := model.JSONMap{"primary_intent": "room_booking"}
	assert.False(t, isNoReplyNeeded(intent, model.JSONMap{}, email, nil))
}

func TestCleanBody_RemoveHTML(t *testing.T) {
	body := "<html><body><p>Guten Tag,</p><p>ich möchte ein <b>Zimmer</b> buchen.</p></body></html>"
	cleaned := CleanBody(body, 4000)

	assert.NotContains(t, cleaned, "<")
	assert.Contains(t, cleaned, "Guten Tag,")
	assert.Contains(t, cleaned, "Zimmer")
}

func TestCleanBody_Truncamento(t *testing.T) {
	body := strings.Repeat("a", 5000)
	cleaned := CleanBody(body, 4000)

	assert.True(t, strings.HasSuffix(cleaned, "\n...[truncated]"))
	assert.Len(t, cleaned, 4000+len("\n...[truncated]"))
}

func TestCleanBody_TruncaEmLimiteDeRuna(t *testing.T) {
	// Umlauts ocupam dois bytes em UTF-8; o corte conta caracteres,
	// nunca partindo uma runa no meio.
	body := strings.Repeat("ü", 5000)
	cleaned := CleanBody(body, 4000)

	require.True(t, utf8.ValidString(cleaned))
	assert.True(t, strings.HasSuffix(cleaned, "\n...[truncated]"))
	truncated := strings.TrimSuffix(cleaned, "\n...[truncated]")
	assert.Equal(t, 4000, utf8.RuneCountInString(truncated))
}

func TestCleanBody_Vazio(t *testing.T) {
	assert.Equal(t, "", CleanBody("", 4000))
}
