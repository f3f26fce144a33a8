// Package pipeline coordena os cinco agentes sobre cada e-mail recebido e
// persiste o resultado para revisão da equipe.
//
// Ordem de execução:
//
//	Etapa 1 (paralela):   intenção + entidades + risco + consulta VIP
//	Etapa 2 (sequencial): validação de políticas (precisa das entidades e API ao vivo)
//	Etapa 3 (sequencial): redator de resposta (precisa de tudo acima)
//	Etapa 4:              rascunho salvo no banco, equipe aprova via dashboard
//	Etapa 5:              notificações à equipe quando necessário
package pipeline

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/das-elb/email-agent-go/internal/agents"
	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/logging"
)

// RecordStore persiste registros de e-mail processados
type RecordStore interface {
	SaveRecord(ctx context.Context, record *model.EmailRecord, updateID uint) (*model.EmailRecord, error)
}

// VIPLookup consulta o cadastro de hóspedes VIP
type VIPLookup interface {
	Lookup(ctx context.Context, email string) (*model.VIPInfo, error)
}

// StyleProvider fornece o perfil de estilo aprendido mais recente
type StyleProvider interface {
	LatestProfile(ctx context.Context) (*model.StyleProfile, error)
}

// ReferenceSearcher busca respostas humanas anteriores similares
type ReferenceSearcher interface {
	Search(ctx context.Context, query string, topK int) []agents.SimilarReply
}

// StaffNotifier alerta a equipe sobre e-mails que exigem atenção imediata
type StaffNotifier interface {
	NotifyIfNeeded(ctx context.Context, risk, policy model.JSONMap, subject, fromEmail string, recordID uint)
}

// Orchestrator executa a pipeline multi-agente completa
type Orchestrator struct {
	intent   *agents.IntentClassifier
	entities *agents.EntityExtractor
	risk     *agents.RiskAnalyzer
	policy   *agents.PolicyValidator
	response *agents.ResponseWriter

	store      RecordStore
	vips       VIPLookup
	styles     StyleProvider
	references ReferenceSearcher
	notifier   StaffNotifier

	maxBodyChars  int
	promptVersion string

	metrics *metrics.AgentMetrics
	logger  *logging.ContextLogger
}

// Options agrupa as dependências do orquestrador
type Options struct {
	Intent   *agents.IntentClassifier
	Entities *agents.EntityExtractor
	Risk     *agents.RiskAnalyzer
	Policy   *agents.PolicyValidator
	Response *agents.ResponseWriter

	Store      RecordStore
	VIPs       VIPLookup
	Styles     StyleProvider
	References ReferenceSearcher
	Notifier   StaffNotifier

	MaxBodyChars  int
	PromptVersion string

	Metrics *metrics.AgentMetrics
	Logger  *zap.Logger
}

// NewOrchestrator cria o orquestrador da pipeline
func NewOrchestrator(opts Options) *Orchestrator {
	maxBodyChars := opts.MaxBodyChars
	if maxBodyChars <= 0 {
		maxBodyChars = 4000
	}
	promptVersion := opts.PromptVersion
	if promptVersion == "" {
		promptVersion = "v1"
	}

	return &Orchestrator{
		intent:        opts.Intent,
		entities:      opts.Entities,
		risk:          opts.Risk,
		policy:        opts.Policy,
		response:      opts.Response,
		store:         opts.Store,
		vips:          opts.VIPs,
		styles:        opts.Styles,
		references:    opts.References,
		notifier:      opts.Notifier,
		maxBodyChars:  maxBodyChars,
		promptVersion: promptVersion,
		metrics:       opts.Metrics,
		logger:        logging.NewContextLogger(opts.Logger),
	}
}

// Process executa a pipeline completa para um e-mail recebido.
// Se email.UpdateID for diferente de zero, atualiza o registro existente
// no lugar de inserir um novo.
func (o *Orchestrator) Process(ctx context.Context, email model.InboundEmail) (*model.EmailRecord, error) {
	subject := email.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	body := CleanBody(email.Body, o.maxBodyChars)

	o.logger.InfoCtx(ctx, "processando e-mail",
		zap.String("messageID", email.MessageID),
		zap.String("subject", truncateStr(subject, 60)))

	record, err := o.process(ctx, email, subject, body)
	if err != nil {
		o.logger.ErrorCtx(ctx, "erro na pipeline",
			zap.String("messageID", email.MessageID),
			zap.Error(err))

		// Registro com falha ainda aparece no dashboard
		failed := &model.EmailRecord{
			MessageID:     email.MessageID,
			ThreadID:      email.ThreadID,
			FromEmail:     email.FromEmail,
			FromName:      email.FromName,
			Subject:       subject,
			Body:          email.Body,
			ReceivedAt:    email.ReceivedAt,
			ProcessedAt:   model.NowBerlin(),
			Status:        model.StatusFailed,
			PromptVersion: o.promptVersion,
		}
		if _, saveErr := o.store.SaveRecord(ctx, failed, email.UpdateID); saveErr != nil {
			o.logger.ErrorCtx(ctx, "falha ao salvar registro com erro", zap.Error(saveErr))
		}
		o.metrics.EmailProcessed("unknown", model.StatusFailed)
		return nil, err
	}

	o.metrics.EmailProcessed(record.Intent, record.Status)
	return record, nil
}

func (o *Orchestrator) process(ctx context.Context, email model.InboundEmail, subject, body string) (*model.EmailRecord, error) {
	// Etapa 1: intenção, entidades e risco em paralelo, mais a consulta VIP
	stageStart := time.Now()

	var (
		intentResult   model.JSONMap
		entitiesResult model.JSONMap
		riskResult     model.JSONMap
		vipInfo        *model.VIPInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		intentResult, err = o.intent.Classify(gctx, subject, body)
		return err
	})
	g.Go(func() error {
		var err error
		entitiesResult, err = o.entities.Extract(gctx, subject, body, "unknown")
		return err
	})
	g.Go(func() error {
		var err error
		riskResult, err = o.risk.Analyze(gctx, subject, body, "unknown", nil)
		return err
	})
	g.Go(func() error {
		var err error
		vipInfo, err = o.vips.Lookup(gctx, email.FromEmail)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("etapa de análise falhou: %w", err)
	}
	o.metrics.StageCompleted("analysis", time.Since(stageStart))

	intent := intentResult.String("primary_intent")
	if intent == "" {
		intent = "other"
	}
	language := intentResult.String("language")
	if language == "" {
		language = "de"
	}

	o.logger.InfoCtx(ctx, "análise concluída",
		zap.String("messageID", email.MessageID),
		zap.String("intent", intent),
		zap.String("language", language),
		zap.Float64("confidence", intentResult.Float("confidence")))

	styleProfile, err := o.styles.LatestProfile(ctx)
	if err != nil {
		o.logger.WarnCtx(ctx, "falha ao carregar perfil de estilo", zap.Error(err))
		styleProfile = nil
	}

	// Detecção de no-reply: e-mails automatizados não geram rascunho
	if isNoReplyNeeded(intentResult, riskResult, email, styleProfile) {
		o.logger.InfoCtx(ctx, "e-mail dispensa resposta",
			zap.String("messageID", email.MessageID))

		record := &model.EmailRecord{
			MessageID:     email.MessageID,
			ThreadID:      email.ThreadID,
			FromEmail:     email.FromEmail,
			FromName:      email.FromName,
			Subject:       subject,
			Body:          email.Body, // original, não truncado
			ReceivedAt:    email.ReceivedAt,
			ProcessedAt:   model.NowBerlin(),
			Intent:        intent,
			Confidence:    intentResult.Float("confidence"),
			Language:      language,
			Risk:          riskResult,
			RiskScore:     riskResult.Float("overall_risk_score"),
			Status:        model.StatusNoReplyNeeded,
			PromptVersion: o.promptVersion,
		}
		return o.store.SaveRecord(ctx, record, email.UpdateID)
	}

	// Etapa 2: validação de políticas com dados ao vivo
	stageStart = time.Now()
	policyResult, err := o.policy.Validate(ctx, entitiesResult, intent)
	if err != nil {
		return nil, fmt.Errorf("validação de políticas falhou: %w", err)
	}
	o.metrics.StageCompleted("policy", time.Since(stageStart))

	// Etapa 3: redator, com estilo aprendido e referências similares
	stageStart = time.Now()

	styleInjection := ""
	if styleProfile != nil {
		styleInjection = styleProfile.InjectedPrompt
	}

	var similar []agents.SimilarReply
	if o.references != nil {
		similar = o.references.Search(ctx, fmt.Sprintf("Subject: %s\nBody:\n%s", subject, body), 3)
	}

	draft, err := o.response.Write(ctx, agents.WriteInput{
		Subject:        subject,
		Body:           body,
		Intent:         intent,
		Language:       language,
		Entities:       entitiesResult,
		Policy:         policyResult,
		Risk:           riskResult,
		VIP:            vipInfo,
		StyleInjection: styleInjection,
		SimilarReplies: similar,
	})
	if err != nil {
		return nil, fmt.Errorf("redação da resposta falhou: %w", err)
	}
	o.metrics.StageCompleted("response", time.Since(stageStart))

	draftSubject := draft.Subject
	if draftSubject == "" {
		draftSubject = "Re: " + subject
	}

	// Etapas 4 e 5: salvar rascunho e notificar a equipe
	record := &model.EmailRecord{
		MessageID:               email.MessageID,
		ThreadID:                email.ThreadID,
		FromEmail:               email.FromEmail,
		FromName:                email.FromName,
		Subject:                 subject,
		Body:                    email.Body, // original, não truncado
		ReceivedAt:              email.ReceivedAt,
		ProcessedAt:             model.NowBerlin(),
		Intent:                  intent,
		SecondaryIntent:         intentResult.String("secondary_intent"),
		Confidence:              intentResult.Float("confidence"),
		Language:                language,
		Urgency:                 intentResult.String("urgency"),
		Entities:                entitiesResult,
		Policy:                  policyResult,
		Risk:                    riskResult,
		RiskScore:               riskResult.Float("overall_risk_score"),
		DraftSubject:            draftSubject,
		DraftBody:               draft.BodyText,
		Status:                  model.StatusDraftCreated,
		RequiresManagerApproval: policyResult.Bool("requires_manager_approval"),
		RevenueAttributed:       entitiesResult.Float("estimated_revenue"),
		PromptVersion:           o.promptVersion,
	}

	saved, err := o.store.SaveRecord(ctx, record, email.UpdateID)
	if err != nil {
		return nil, fmt.Errorf("falha ao salvar registro: %w", err)
	}

	if o.notifier != nil {
		o.notifier.NotifyIfNeeded(ctx, riskResult, policyResult, subject, email.FromEmail, saved.ID)
	}

	o.logger.InfoCtx(ctx, "e-mail processado, rascunho salvo",
		zap.String("messageID", email.MessageID),
		zap.String("priority", riskResult.String("recommended_priority")))
	return saved, nil
}

func truncateStr(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
