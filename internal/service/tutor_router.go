package service

import (
	"context"
	"errors"
	"time"

	"github.com/projectk/projectk-backend/internal/llm"
	"github.com/projectk/projectk-backend/internal/metrics"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/projectk/projectk-backend/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ApologyMessage is the reply stored and returned when the model cannot answer.
const ApologyMessage = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

var errModelNotConfigured = errors.New("language model not configured")

// TutorReply is the outcome of routing one user message.
type TutorReply struct {
	BotType  model.BotType
	Response string
	IsError  bool
}

// TutorRouter picks the persona for a subject and asks the model for a reply.
type TutorRouter struct {
	client       llm.Client
	timeout      time.Duration
	historyTurns int
	log          zerolog.Logger
}

// NewTutorRouter creates a new TutorRouter. A nil client makes every reply
// the apology.
func NewTutorRouter(client llm.Client, timeout time.Duration, historyTurns int, log zerolog.Logger) *TutorRouter {
	return &TutorRouter{
		client:       client,
		timeout:      timeout,
		historyTurns: historyTurns,
		log:          log.With().Str("component", "tutor_router").Logger(),
	}
}

// HistoryTurns is how many prior messages of a session Route wants.
func (r *TutorRouter) HistoryTurns() int {
	return r.historyTurns
}

// Route answers userMessage with the persona for subject. Prior error replies
// in history are not forwarded. Failures never surface as errors: they yield
// the apology with IsError set.
func (r *TutorRouter) Route(ctx context.Context, subject model.Subject, userMessage string, history []model.Message) TutorReply {
	botType := model.BotTypeFor(subject)

	ctx, span := tracing.Tracer.Start(ctx, "tutor.route",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tutor.subject", string(subject)),
			attribute.String("tutor.bot_type", string(botType)),
			attribute.Int("tutor.history_turns", len(history)),
		),
	)
	defer span.End()

	start := time.Now()
	content, err := r.complete(ctx, subject, userMessage, history)
	metrics.TutorLatency.WithLabelValues(string(botType)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model call failed")
		metrics.TutorReplies.WithLabelValues(string(botType), "error").Inc()
		r.log.Warn().Err(err).Str("bot_type", string(botType)).Msg("Tutor reply failed, returning apology")
		return TutorReply{BotType: botType, Response: ApologyMessage, IsError: true}
	}

	metrics.TutorReplies.WithLabelValues(string(botType), "ok").Inc()
	return TutorReply{BotType: botType, Response: content}
}

func (r *TutorRouter) complete(ctx context.Context, subject model.Subject, userMessage string, history []model.Message) (string, error) {
	if r.client == nil {
		return "", errModelNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.client.Complete(ctx, llm.Request{
		System:  systemPrompt(subject),
		History: r.turns(history),
		Prompt:  userMessage,
	})
}

// turns converts the tail of a session into alternating user/assistant turns.
func (r *TutorRouter) turns(history []model.Message) []llm.Turn {
	if r.historyTurns > 0 && len(history) > r.historyTurns {
		history = history[len(history)-r.historyTurns:]
	}

	out := make([]llm.Turn, 0, len(history)*2)
	for _, m := range history {
		if m.IsError {
			continue
		}
		out = append(out,
			llm.Turn{Role: llm.RoleUser, Content: m.UserMessage},
			llm.Turn{Role: llm.RoleAssistant, Content: m.BotResponse},
		)
	}
	return out
}
