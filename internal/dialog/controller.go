// SPDX-License-Identifier: MIT

package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flkbot/wa2bank/internal/llm"
	"github.com/flkbot/wa2bank/internal/log"
	"github.com/flkbot/wa2bank/internal/metrics"
	"github.com/flkbot/wa2bank/internal/money"
	"github.com/flkbot/wa2bank/internal/telemetry"
)

// Outcome is the result of fulfilling an intent against the bank.
type Outcome struct {
	OK        bool
	Balance   string // raw decimal string, check_balance only
	Reference string // transaction reference, transfer only
	Err       string // human-readable failure reason when !OK
}

// Store persists sessions with a TTL. Sessions are never explicitly
// deleted; they expire at the storage layer or are overwritten by a
// fresh idle shell.
type Store interface {
	Load(ctx context.Context, userKey string) (Session, error)
	Save(ctx context.Context, sess Session) error
}

// Parser turns one utterance into a structured NLU result.
type Parser interface {
	Parse(ctx context.Context, req llm.ParseRequest) (llm.ParseResult, error)
}

// Localizer rewrites one English line into the target language.
type Localizer interface {
	OneLiner(ctx context.Context, lang, english string) (string, error)
}

// Fulfiller executes a completed intent against the banking backend.
type Fulfiller interface {
	Fulfill(ctx context.Context, intent Intent, slots Slots) Outcome
}

// Sender delivers one outbound message to the user.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// FulfillmentRecord is one audit entry for an executed intent.
type FulfillmentRecord struct {
	TurnID    string
	UserKey   string
	Intent    string
	OK        bool
	Reference string
	Err       string
	At        time.Time
}

// Auditor records fulfillment attempts. Failures are the auditor's
// problem; the dialogue never blocks on it.
type Auditor interface {
	RecordFulfillment(ctx context.Context, rec FulfillmentRecord)
}

const fallbackReply = "Sorry, I did not get that. Please try again."

// Config tunes the controller.
type Config struct {
	// IdleReset is the silence window after which a session is discarded
	// before processing the next message. The language survives.
	IdleReset time.Duration
	// DefaultLang is the language for brand-new conversations.
	DefaultLang string
}

// Controller runs one dialogue turn end to end: load state, parse,
// resolve language, merge slots, then ask, fulfill or reset.
type Controller struct {
	store     Store
	parser    Parser
	localizer Localizer
	fulfiller Fulfiller
	sender    Sender
	auditor   Auditor

	resolver    *LangResolver
	idleReset   time.Duration
	defaultLang string
	now         func() time.Time
}

// NewController wires a controller. auditor may be nil.
func NewController(cfg Config, store Store, parser Parser, localizer Localizer, fulfiller Fulfiller, sender Sender, auditor Auditor, resolver *LangResolver) *Controller {
	if cfg.IdleReset <= 0 {
		cfg.IdleReset = 60 * time.Second
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "en"
	}
	if resolver == nil {
		resolver = NewLangResolver(cfg.DefaultLang, nil)
	}
	return &Controller{
		store:       store,
		parser:      parser,
		localizer:   localizer,
		fulfiller:   fulfiller,
		sender:      sender,
		auditor:     auditor,
		resolver:    resolver,
		idleReset:   cfg.IdleReset,
		defaultLang: cfg.DefaultLang,
		now:         time.Now,
	}
}

// HandleTurn processes one inbound text message. Every turn sends
// exactly one reply; errors degrade to a deterministic fallback rather
// than silence.
func (c *Controller) HandleTurn(ctx context.Context, userKey, text string) {
	turnID := uuid.NewString()
	ctx = log.ContextWithTurnID(ctx, turnID)
	ctx = log.ContextWithUserKey(ctx, userKey)
	logger := log.WithComponentFromContext(ctx, "dialog")

	ctx, span := telemetry.Tracer("wa2bank/dialog").Start(ctx, "dialog.turn")
	defer span.End()

	start := c.now()
	sess, err := c.store.Load(ctx, userKey)
	if err != nil {
		logger.Error().Err(err).Msg("session load failed, starting fresh")
		sess = NewIdleSession(userKey, c.defaultLang)
	}
	sess.ApplyDefaults(userKey, c.defaultLang)

	// Silence beyond the idle window abandons the old dialogue. The
	// current message still gets processed, against a clean session.
	if sess.UpdatedAt > 0 && start.Unix()-sess.UpdatedAt > int64(c.idleReset.Seconds()) {
		logger.Info().
			Int64("idle_seconds", start.Unix()-sess.UpdatedAt).
			Msg("idle session reset")
		sess = NewIdleSession(userKey, sess.Lang)
		metrics.IncSessionReset("idle")
	}

	preferred := "auto"
	if !sess.Fresh() && sess.Lang != "" {
		preferred = sess.Lang
	}

	parsed, err := c.parser.Parse(ctx, llm.ParseRequest{
		Text:          text,
		PrevIntent:    string(sess.Intent),
		PrevSlots:     sess.Slots,
		PreferredLang: preferred,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("nlu parse failed")
		c.save(ctx, logger, sess)
		c.send(ctx, logger, userKey, fallbackReply)
		c.finishTurn(logger, start, "parse_error")
		return
	}

	lang := c.resolver.Resolve(sess.Lang, parsed.Lang.Detected, parsed.Lang.Confidence, text)
	sess.Lang = lang
	metrics.IncResolvedLanguage(lang)

	sess.Slots.Merge(parsed.Slots)
	if sess.Intent == IntentUnknown {
		sess.Intent = ParseIntent(parsed.Intent)
	}
	directive := ParseDirective(parsed.Action)
	span.SetAttributes(telemetry.TurnAttributes(turnID, string(sess.Intent), lang, string(directive))...)

	logger.Info().
		Str(log.FieldIntent, string(sess.Intent)).
		Str(log.FieldLang, lang).
		Str(log.FieldDirective, string(directive)).
		Int("slot_count", len(sess.Slots)).
		Msg("turn parsed")

	if directive == DirectiveReset || ParseIntent(parsed.Intent) == IntentReset {
		c.save(ctx, logger, NewIdleSession(userKey, lang))
		metrics.IncSessionReset("explicit")
		reply := strings.TrimSpace(parsed.Reply)
		if reply == "" {
			reply = "Okay, I have cancelled that."
		}
		c.send(ctx, logger, userKey, reply)
		c.finishTurn(logger, start, "reset")
		return
	}

	nextMissing := NextMissing(sess.Intent, sess.Slots)
	if directive == DirectiveFulfill && nextMissing == "" {
		c.fulfill(ctx, logger, turnID, userKey, &sess)
		c.finishTurn(logger, start, "fulfill")
		return
	}

	c.ask(ctx, logger, userKey, &sess, parsed, nextMissing)
	c.finishTurn(logger, start, "ask")
}

// ask persists the in-progress session and sends the fixed prompt for
// the next slot. Policy order beats the NLU's suggestion.
func (c *Controller) ask(ctx context.Context, logger zerolog.Logger, userKey string, sess *Session, parsed llm.ParseResult, nextMissing string) {
	askSlot := nextMissing
	if askSlot == "" {
		askSlot = strings.TrimSpace(parsed.AskSlot)
	}
	if askSlot == "" && len(parsed.MissingSlots) > 0 {
		askSlot = parsed.MissingSlots[0]
	}

	sess.State = StateInProgress
	switch {
	case MissingSlots(sess.Intent, sess.Slots) != nil:
		sess.MissingSlots = MissingSlots(sess.Intent, sess.Slots)
	case len(parsed.MissingSlots) > 0:
		sess.MissingSlots = parsed.MissingSlots
	case askSlot != "":
		sess.MissingSlots = []string{askSlot}
	default:
		sess.MissingSlots = []string{}
	}
	c.save(ctx, logger, *sess)

	// With no slot to ask for, the model's own reply carries the turn.
	var prompt string
	if askSlot != "" {
		prompt = PromptFor(sess.Lang, askSlot)
	}
	if prompt == "" {
		prompt = strings.TrimSpace(parsed.Reply)
	}
	if prompt == "" {
		prompt = fallbackReply
	}

	logger.Info().
		Str(log.FieldAskSlot, askSlot).
		Str(log.FieldLang, sess.Lang).
		Msg("asking for slot")
	c.send(ctx, logger, userKey, prompt)
}

// fulfill executes the committed intent, replies with the localized
// outcome and resets the session.
func (c *Controller) fulfill(ctx context.Context, logger zerolog.Logger, turnID, userKey string, sess *Session) {
	lang := sess.Lang
	intent := sess.Intent

	var outcome Outcome
	var base string
	switch intent {
	case IntentCheckBalance, IntentTransfer:
		outcome = c.fulfiller.Fulfill(ctx, intent, sess.Slots)
		base = outcomeSentence(intent, outcome)
		metrics.IncFulfillment(string(intent), outcome.OK)
		if c.auditor != nil {
			c.auditor.RecordFulfillment(ctx, FulfillmentRecord{
				TurnID:    turnID,
				UserKey:   userKey,
				Intent:    string(intent),
				OK:        outcome.OK,
				Reference: outcome.Reference,
				Err:       outcome.Err,
				At:        c.now(),
			})
		}
	default:
		base = "I am not sure how to help with that."
	}

	final := base
	if lang != "" && lang != "en" {
		if localized, err := c.localizer.OneLiner(ctx, lang, base); err == nil && strings.TrimSpace(localized) != "" {
			final = strings.TrimSpace(localized)
		} else if err != nil {
			logger.Warn().Err(err).Str(log.FieldLang, lang).Msg("localization failed, replying in English")
		}
	}

	c.send(ctx, logger, userKey, final)
	c.save(ctx, logger, NewIdleSession(userKey, lang))
	metrics.IncSessionReset("fulfillment")
}

// outcomeSentence renders the canonical English result line the
// localizer translates from.
func outcomeSentence(intent Intent, outcome Outcome) string {
	switch intent {
	case IntentCheckBalance:
		if !outcome.OK {
			return fmt.Sprintf("Balance check failed: %s.", failureReason(outcome))
		}
		formatted, err := money.FormatNGN(outcome.Balance)
		if err != nil {
			formatted = "NGN " + outcome.Balance
		}
		return fmt.Sprintf("Your current balance is %s.", formatted)
	case IntentTransfer:
		if !outcome.OK {
			return fmt.Sprintf("Transfer failed: %s.", failureReason(outcome))
		}
		return fmt.Sprintf("Transfer successful. Reference %s.", outcome.Reference)
	default:
		return "I am not sure how to help with that."
	}
}

func failureReason(outcome Outcome) string {
	reason := strings.TrimSpace(strings.TrimSuffix(outcome.Err, "."))
	if reason == "" {
		reason = "something went wrong"
	}
	return reason
}

func (c *Controller) save(ctx context.Context, logger zerolog.Logger, sess Session) {
	sess.UpdatedAt = c.now().Unix()
	if err := c.store.Save(ctx, sess); err != nil {
		logger.Error().Err(err).Msg("session save failed")
	}
}

func (c *Controller) send(ctx context.Context, logger zerolog.Logger, userKey, body string) {
	if err := c.sender.SendText(ctx, userKey, body); err != nil {
		logger.Error().Err(err).Msg("outbound send failed")
		metrics.IncOutboundSendError()
	}
}

func (c *Controller) finishTurn(logger zerolog.Logger, start time.Time, outcome string) {
	elapsed := c.now().Sub(start)
	metrics.IncTurn(outcome)
	metrics.ObserveTurn(elapsed)
	logger.Info().
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Msg("turn complete")
}
