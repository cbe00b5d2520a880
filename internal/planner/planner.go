package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smart-diet-planner/internal/apperr"
	"smart-diet-planner/internal/llm"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/metrics"
	"smart-diet-planner/internal/prompt"
	"smart-diet-planner/internal/shared"
	"smart-diet-planner/internal/tracer"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// AgentName labels usage records of plan generation.
const AgentName = "PlanGenerator"

// costTolerance is how far (INR) a daily total may drift from its meals.
const costTolerance = 1.0

// UsageRecorder persists generator usage.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Option configures a Planner.
type Option func(*Planner)

// WithRecorder records the usage of every generator call.
func WithRecorder(r UsageRecorder) Option {
	return func(p *Planner) {
		p.recorder = r
	}
}

// Planner turns constraints into a validated 7-day plan with one generator
// call. It never retries and never caches.
type Planner struct {
	textGen  llm.StructuredGenerator
	validate *validator.Validate
	recorder UsageRecorder
}

// NewPlanner creates a new Planner instance.
func NewPlanner(textGen llm.StructuredGenerator, opts ...Option) *Planner {
	p := &Planner{
		textGen:  textGen,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanResult is a generated plan with the metadata of the call.
type PlanResult struct {
	Plan mealplan.MealPlan
	Meta shared.AgentMeta
}

// GeneratePlan validates c, asks the generator for a plan and checks the
// result. Errors are *apperr.AppError values: validation failures happen
// before any external call, everything else is a generation failure.
func (p *Planner) GeneratePlan(ctx context.Context, c mealplan.Constraints) (PlanResult, error) {
	log := logger.FromContext(ctx)

	if err := p.validate.Struct(c); err != nil {
		metrics.PlanGenerationsTotal.WithLabelValues(string(apperr.KindValidation)).Inc()
		log.Debug("rejected constraints", zap.Error(err))
		return PlanResult{}, apperr.Validation(apperr.MsgMissingConstraints)
	}

	log.Info("Generating plan",
		zap.String("cuisine", c.CuisinePreference),
		zap.Float64("daily_budget_inr", float64(c.DailyBudget)),
		zap.String("diet_type", string(c.DietType)),
	)

	ctx, span := tracer.Start(ctx, "planner.GeneratePlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.cuisine", c.CuisinePreference),
		attribute.Float64("plan.daily_budget", float64(c.DailyBudget)),
	)

	plan, meta, err := p.generate(ctx, c)
	meta.Success = err == nil
	p.record(ctx, meta)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.PlanGenerationsTotal.WithLabelValues(string(apperr.KindGeneration)).Inc()
		log.Error("plan generation failed", zap.Error(err), zap.Duration("latency", meta.Latency))
		return PlanResult{Meta: meta}, apperr.Generation(err)
	}

	metrics.PlanGenerationsTotal.WithLabelValues("success").Inc()
	log.Info("plan generated",
		zap.Int("days", len(plan)),
		zap.Int("total_tokens", meta.Usage.TotalTokens),
		zap.Duration("latency", meta.Latency),
	)
	return PlanResult{Plan: plan, Meta: meta}, nil
}

func (p *Planner) generate(ctx context.Context, c mealplan.Constraints) (mealplan.MealPlan, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: AgentName}

	text, err := prompt.BuildPlanPrompt(c)
	if err != nil {
		return nil, meta, err
	}

	start := time.Now()
	resp, err := p.textGen.GenerateJSON(ctx, text, prompt.PlanSchema())
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	observeUsage(meta)
	if err != nil {
		return nil, meta, err
	}

	plan, err := parsePlan(resp.Content)
	if err != nil {
		return nil, meta, err
	}

	plan, err = finalizePlan(ctx, plan)
	if err != nil {
		return nil, meta, err
	}
	return plan, meta, nil
}

// parsePlan decodes the generator output. Surrounding whitespace and a
// Markdown code fence are tolerated.
func parsePlan(content string) (mealplan.MealPlan, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if s == "" {
		return nil, fmt.Errorf("generator returned an empty response")
	}

	var plan mealplan.MealPlan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse meal plan: %w", err)
	}
	return plan, nil
}

func finalizePlan(ctx context.Context, plan mealplan.MealPlan) (mealplan.MealPlan, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid meal plan: %w", err)
	}

	plan, adjusted := plan.Reconcile(costTolerance)
	if len(adjusted) > 0 {
		metrics.PlanReconciledDaysTotal.Add(float64(len(adjusted)))
		logger.FromContext(ctx).Warn("daily totals did not match meal costs",
			zap.Ints("days", adjusted))
	}

	for i := range plan {
		for j := range plan[i].Meals {
			m := &plan[i].Meals[j]
			m.MealType = cleanText(m.MealType)
			m.DishName = cleanText(m.DishName)
			m.RecipeSummary = cleanText(m.RecipeSummary)
		}
	}
	return plan, nil
}

func (p *Planner) record(ctx context.Context, meta shared.AgentMeta) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordMeta(ctx, meta); err != nil {
		logger.FromContext(ctx).Warn("failed to record usage", zap.Error(err))
	}
}

func observeUsage(meta shared.AgentMeta) {
	model := meta.Usage.Model
	if model == "" {
		model = "unknown"
	}
	metrics.LLMRequestDuration.WithLabelValues(model).Observe(meta.Latency.Seconds())
	metrics.LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(meta.Usage.PromptTokens))
	metrics.LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(meta.Usage.CompletionTokens))
}
