package database

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/das-elb/email-agent-go/internal/domain/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.EmailRecord{},
		&model.AuditLog{},
		&model.VIPGuest{},
		&model.StyleProfile{},
		&model.UserEntity{},
	)
	require.NoError(t, err)

	return db
}

func newTestRecord(messageID string) *model.EmailRecord {
	received := time.Now().Add(-time.Hour)
	return &model.EmailRecord{
		MessageID:    messageID,
		FromEmail:    "hóspede@example.com",
		Subject:      "Anfrage Doppelzimmer",
		Body:         "Guten Tag, haben Sie ein Zimmer frei?",
		ReceivedAt:   &received,
		ProcessedAt:  time.Now(),
		Intent:       "availability_inquiry",
		Confidence:   0.91,
		Language:     "de",
		Status:       model.StatusDraftCreated,
		DraftSubject: "Re: Anfrage Doppelzimmer",
		DraftBody:    "Sehr geehrter Gast, ...",
	}
}

func TestEmailRepository_SaveRecordEGetByID(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveRecord(ctx, newTestRecord("<msg-1@example.com>"), 0)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "<msg-1@example.com>", got.MessageID)
	assert.Equal(t, "availability_inquiry", got.Intent)
	assert.Equal(t, model.StatusDraftCreated, got.Status)
}

func TestEmailRepository_SaveRecordAtualizaNoLugar(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveRecord(ctx, newTestRecord("<msg-2@example.com>"), 0)
	require.NoError(t, err)

	retry := newTestRecord("<msg-2@example.com>")
	retry.Intent = "booking_request"
	retry.DraftBody = "Sehr geehrter Gast, gerne bestätigen wir..."

	updated, err := repo.SaveRecord(ctx, retry, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "booking_request", updated.Intent)

	var count int64
	repo.db.Model(&model.EmailRecord{}).Count(&count)
	assert.Equal(t, int64(1), count, "reprocessamento não deve criar registro novo")
}

func TestEmailRepository_SaveRecordUpdateIDInexistente(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))

	_, err := repo.SaveRecord(context.Background(), newTestRecord("<msg-3@example.com>"), 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestEmailRepository_IsProcessed(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.SaveRecord(ctx, newTestRecord("<msg-4@example.com>"), 0)
	require.NoError(t, err)

	processed, err := repo.IsProcessed(ctx, "<msg-4@example.com>")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = repo.IsProcessed(ctx, "<desconhecido@example.com>")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestEmailRepository_ListComFiltros(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	first := newTestRecord("<msg-5@example.com>")
	_, err := repo.SaveRecord(ctx, first, 0)
	require.NoError(t, err)

	second := newTestRecord("<msg-6@example.com>")
	second.Status = model.StatusSent
	second.Intent = "complaint"
	later := time.Now()
	second.ReceivedAt = &later
	_, err = repo.SaveRecord(ctx, second, 0)
	require.NoError(t, err)

	all, err := repo.List(ctx, "", "", 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "<msg-6@example.com>", all[0].MessageID, "mais recente primeiro")

	sent, err := repo.List(ctx, model.StatusSent, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "complaint", sent[0].Intent)

	complaints, err := repo.List(ctx, "", "complaint", 50, 0)
	require.NoError(t, err)
	assert.Len(t, complaints, 1)
}

func TestEmailRepository_FluxoDeAprovacao(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveRecord(ctx, newTestRecord("<msg-7@example.com>"), 0)
	require.NoError(t, err)

	err = repo.MarkSent(ctx, saved.ID, "maria", "Corpo final editado", 450.0)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, got.Status)
	assert.Equal(t, "maria", got.ApprovedBy)
	assert.Equal(t, "Corpo final editado", got.DraftBody)
	assert.NotNil(t, got.SentAt)
	assert.Equal(t, 450.0, got.RevenueAttributed)
}

func TestEmailRepository_MarkRejected(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveRecord(ctx, newTestRecord("<msg-8@example.com>"), 0)
	require.NoError(t, err)

	err = repo.MarkRejected(ctx, saved.ID, "joao", "tom inadequado")
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, "tom inadequado", got.RejectionReason)

	err = repo.MarkRejected(ctx, 999, "joao", "x")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestEmailRepository_AuditLog(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveRecord(ctx, newTestRecord("<msg-9@example.com>"), 0)
	require.NoError(t, err)

	err = repo.AddAuditLog(ctx, &model.AuditLog{
		EmailRecordID: saved.ID,
		Action:        "approved_and_sent",
		PerformedBy:   "maria",
		DiffChars:     12,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, got.AuditLogs, 1)
	assert.Equal(t, "approved_and_sent", got.AuditLogs[0].Action)
	assert.False(t, got.AuditLogs[0].Timestamp.IsZero())
}

func TestEmailRepository_Summary(t *testing.T) {
	repo := NewEmailRepository(setupTestDB(t))
	ctx := context.Background()

	first := newTestRecord("<msg-10@example.com>")
	first.RiskScore = 0.2
	_, err := repo.SaveRecord(ctx, first, 0)
	require.NoError(t, err)

	second := newTestRecord("<msg-11@example.com>")
	second.Status = model.StatusSent
	second.Intent = "booking_request"
	second.RiskScore = 0.6
	second.RevenueAttributed = 890.0
	_, err = repo.SaveRecord(ctx, second, 0)
	require.NoError(t, err)

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalEmails)
	assert.Equal(t, int64(1), summary.PendingApproval)
	assert.Equal(t, 890.0, summary.TotalRevenue)
	assert.InDelta(t, 0.4, summary.AverageRisk, 0.001)
	assert.Len(t, summary.ByIntent, 2)
}
