package telegram

import (
	"context"
	"fmt"

	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/planner"
	"smart-diet-planner/internal/shared"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// contextBloatTokens is the prompt size that triggers an admin alert.
const contextBloatTokens = 4000

// UsageAlerter forwards usage to next and warns the admin chat about
// oversized prompts.
type UsageAlerter struct {
	next    planner.UsageRecorder
	api     API
	adminID int64
}

// NewUsageAlerter creates an alerter. next may be nil; adminID 0 disables alerts.
func NewUsageAlerter(next planner.UsageRecorder, api API, adminID int64) *UsageAlerter {
	return &UsageAlerter{next: next, api: api, adminID: adminID}
}

// RecordMeta implements planner.UsageRecorder.
func (a *UsageAlerter) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	if meta.Usage.PromptTokens > contextBloatTokens && a.adminID != 0 {
		text := fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d",
			meta.AgentName, meta.Usage.Model, meta.Usage.PromptTokens)
		msg := tgbotapi.NewMessage(a.adminID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := a.api.Send(msg); err != nil {
			logger.FromContext(ctx).Warn("failed to send admin alert", zap.Error(err))
		}
	}

	if a.next == nil {
		return nil
	}
	return a.next.RecordMeta(ctx, meta)
}
