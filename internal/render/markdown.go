package render

import (
	"fmt"
	"strings"
)

// TelegramMessageLimit is the maximum length of one Telegram message.
const TelegramMessageLimit = 4096

var markdownEscaper = strings.NewReplacer("_", " ", "*", "", "`", "'", "[", "(", "]", ")")

// MarkdownParts renders v as Telegram Markdown split into messages no longer
// than limit. Days are never split across messages.
func MarkdownParts(v PlanView, limit int) []string {
	var header strings.Builder
	header.WriteString(fmt.Sprintf("📅 *%s*\n", v.Title))
	if v.Target > 0 {
		header.WriteString(fmt.Sprintf("_Target: %s/day_\n", v.TargetLabel))
	}
	header.WriteString("\n")

	var parts []string
	current := header.String()
	for _, d := range v.Days {
		block := markdownDay(d)
		if len(current)+len(block) > limit && strings.TrimSpace(current) != "" {
			parts = append(parts, strings.TrimRight(current, "\n"))
			current = ""
		}
		current += block
	}
	if strings.TrimSpace(current) != "" {
		parts = append(parts, strings.TrimRight(current, "\n"))
	}
	return parts
}

func markdownDay(d DayView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*Day %d* %s %s · %d%% · %d kcal\n", d.Day, tierEmoji(d.Tier), d.CostLabel, d.Percent, d.TotalKcal))
	for _, m := range d.Meals {
		sb.WriteString(fmt.Sprintf("%s *%s*: %s (%s)\n", m.Icon, markdownEscaper.Replace(m.Type), markdownEscaper.Replace(m.Dish), m.Cost))
		if m.Summary != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", markdownEscaper.Replace(m.Summary)))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func tierEmoji(t Tier) string {
	switch t {
	case TierUnder:
		return "🟢"
	case TierOnTrack:
		return "🟡"
	default:
		return "🔴"
	}
}
