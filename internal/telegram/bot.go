package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"smart-diet-planner/internal/client"
	"smart-diet-planner/internal/config"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/metrics"
	"smart-diet-planner/internal/render"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// UsageReader reads recorded generator usage.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

// NewAPI authorizes with Telegram and points its webhook at cfg.TelegramWebhookURL.
func NewAPI(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.L().Info("Authorized on account", zap.String("username", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.L().Info("Webhook set", zap.String("response", resp.Description))
	return api, nil
}

// Bot answers /plan and /metrics over a webhook.
type Bot struct {
	api       API
	submitter client.Submitter
	usage     UsageReader
	cfg       *config.Config
	dbPath    string
	tick      time.Duration

	wg sync.WaitGroup
}

// NewBot creates a bot submitting plans through submitter. usage may be nil;
// dbPath is the usage database reported by /metrics.
func NewBot(cfg *config.Config, api API, submitter client.Submitter, usage UsageReader, dbPath string) *Bot {
	return &Bot{
		api:       api,
		submitter: submitter,
		usage:     usage,
		cfg:       cfg,
		dbPath:    dbPath,
		tick:      800 * time.Millisecond,
	}
}

// RegisterHandlers registers the webhook handler on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// Wait blocks until every accepted message has been answered.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		logger.L().Warn("Error parsing update", zap.Error(err))
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if !b.isAllowed(msg.From.ID) {
		logger.L().Warn("Unauthorized access attempt",
			zap.Int64("user_id", msg.From.ID),
			zap.String("username", msg.From.UserName))
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processMessage(msg)
	}()
}

func (b *Bot) isAllowed(id int64) bool {
	for _, allowed := range b.cfg.TelegramAllowedUserIDs {
		if id == allowed {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx := logger.WithContext(context.Background(), logger.ChatIDKey, strconv.FormatInt(msg.Chat.ID, 10))

	switch msg.Command() {
	case "metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, "⛔ Access Denied: Admin only."))
			return
		}
		b.handleMetricsCommand(ctx, msg.Chat.ID)
	case "plan":
		b.handlePlanCommand(ctx, msg)
	default:
		b.send(ctx, markdownMessage(msg.Chat.ID, usageText))
	}
}

func (b *Bot) handlePlanCommand(ctx context.Context, msg *tgbotapi.Message) {
	c, err := parsePlanCommand(msg.CommandArguments())
	if err != nil {
		b.send(ctx, markdownMessage(msg.Chat.ID, fmt.Sprintf("❌ %s\n\n%s", escape(err.Error()), usageText)))
		return
	}

	sent, err := b.api.Send(markdownMessage(msg.Chat.ID, progressText(0)))
	if err != nil {
		logger.FromContext(ctx).Error("Failed to send initial reply", zap.Error(err))
		return
	}

	logger.FromContext(ctx).Info("Generating plan for chat",
		zap.String("diet_type", string(c.DietType)),
		zap.String("cuisine", c.CuisinePreference))

	ctrl := client.NewController(b.submitter,
		client.WithTickInterval(b.tick),
		client.WithSettleDelay(0),
		client.WithObserver(&progressEditor{bot: b, ctx: ctx, chatID: msg.Chat.ID, messageID: sent.MessageID, last: -1}),
	)
	_ = ctrl.Update(func(d *mealplan.Constraints) { *d = c })

	state, err := ctrl.Submit(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("plan submission refused", zap.Error(err))
		return
	}

	if state.Phase == client.PhaseFailed {
		text := fmt.Sprintf("❌ *Error generating plan:*\n```\n%s\n```", strings.ReplaceAll(state.Err, "`", "'"))
		b.send(ctx, markdownEdit(msg.Chat.ID, sent.MessageID, text))
		return
	}

	parts := render.MarkdownParts(render.BuildView(state.Plan, c), render.TelegramMessageLimit)
	for i, part := range parts {
		if i == 0 {
			b.send(ctx, markdownEdit(msg.Chat.ID, sent.MessageID, part))
			continue
		}
		b.send(ctx, markdownMessage(msg.Chat.ID, part))
	}
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	if b.usage == nil {
		b.send(ctx, tgbotapi.NewMessage(chatID, "❌ Usage store is not configured."))
		return
	}

	usage, err := b.usage.GetDailyUsage(ctx, 7)
	if err != nil {
		logger.FromContext(ctx).Error("failed to read usage", zap.Error(err))
		b.send(ctx, tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	b.send(ctx, markdownMessage(chatID, formatUsageReport(usage, metrics.GetSysHealth(b.dbPath))))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.FromContext(ctx).Warn("telegram send failed", zap.Error(err))
	}
}

// progressEditor mirrors controller progress into the status message, once
// per 20%.
type progressEditor struct {
	bot       *Bot
	ctx       context.Context
	chatID    int64
	messageID int
	last      int
}

func (p *progressEditor) OnState(s client.State) {
	if s.Phase != client.PhaseSubmitting {
		return
	}
	bucket := s.Progress / 20
	if bucket == p.last {
		return
	}
	p.last = bucket
	if s.Progress == 0 {
		return
	}
	p.bot.send(p.ctx, markdownEdit(p.chatID, p.messageID, progressText(s.Progress)))
}

func progressText(progress int) string {
	return fmt.Sprintf("🧑‍🍳 *Generating your plan...* (%d%%)", progress)
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
		if d.Failures > 0 {
			sb.WriteString(fmt.Sprintf(", %d failed", d.Failures))
		}
		sb.WriteString(")\n")
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Usage DB: %s\n", health.UsageDBSize))
	return sb.String()
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func markdownEdit(chatID int64, messageID int, text string) tgbotapi.EditMessageTextConfig {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	return edit
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "'", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
