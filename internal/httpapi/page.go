package httpapi

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"smart-diet-planner/internal/auth"
	"smart-diet-planner/internal/client"
	"smart-diet-planner/internal/logger"
	"smart-diet-planner/internal/mealplan"
	"smart-diet-planner/internal/render"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("Page").Parse(pageHTML))

// Form page access token sources.
const (
	accessTokenField  = "accessToken"
	accessTokenCookie = "planner_token"
)

// Form page messages.
const (
	MsgAccessTokenRequired = "A valid access token is required."
	MsgAccessTokenExpired  = "Your access token has expired."
)

type pageData struct {
	Form          mealplan.Constraints
	DietTypes     []mealplan.DietType
	TokenRequired bool
	Error         string
	Plan          template.HTML
}

// Form handles GET /, the constraint form with its defaults.
func (h *Handler) Form(c *gin.Context) {
	h.renderPage(c, http.StatusOK, pageData{Form: mealplan.DefaultConstraints()})
}

// SubmitForm handles POST /plan. The submission runs through the same
// controller as the terminal client, against the in-process generator.
func (h *Handler) SubmitForm(c *gin.Context) {
	ctx := c.Request.Context()

	draft := formConstraints(c)
	if msg := h.authorizeForm(c); msg != "" {
		h.renderPage(c, http.StatusUnauthorized, pageData{Form: draft, Error: msg})
		return
	}

	ctrl := client.NewController(
		client.LocalSubmitter{Generator: h.generator},
		client.WithSettleDelay(0),
	)
	_ = ctrl.Update(func(d *mealplan.Constraints) { *d = draft })

	state, err := ctrl.Submit(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("form submission failed", zap.Error(err))
	}

	data := pageData{Form: ctrl.Draft(), Error: state.Err}
	if state.Phase == client.PhaseSucceeded {
		frag, err := render.HTMLFragment(render.BuildView(state.Plan, data.Form))
		if err != nil {
			logger.FromContext(ctx).Error("failed to render plan", zap.Error(err))
			data.Error = err.Error()
		}
		data.Plan = frag
	}
	h.renderPage(c, http.StatusOK, data)
}

// authorizeForm checks the form access token when auth is enabled and returns
// the message to show when it is refused. A token posted with the form is
// kept in a cookie for later submissions.
func (h *Handler) authorizeForm(c *gin.Context) string {
	if h.tokens == nil {
		return ""
	}

	raw := strings.TrimSpace(c.PostForm(accessTokenField))
	posted := raw != ""
	if !posted {
		raw, _ = c.Cookie(accessTokenCookie)
	}
	if raw == "" {
		return MsgAccessTokenRequired
	}

	claims, err := h.tokens.Parse(raw)
	if err != nil {
		logger.FromContext(c.Request.Context()).Info("form access refused", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return MsgAccessTokenExpired
		}
		return MsgAccessTokenRequired
	}

	if posted {
		maxAge := 0
		if claims.ExpiresAt != nil {
			maxAge = int(time.Until(claims.ExpiresAt.Time).Seconds())
		}
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(accessTokenCookie, raw, maxAge, "/", "", c.Request.TLS != nil, true)
	}
	return ""
}

func (h *Handler) renderPage(c *gin.Context, status int, data pageData) {
	data.DietTypes = mealplan.DietTypes
	data.TokenRequired = h.tokens != nil

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := pageTemplate.Execute(c.Writer, data); err != nil {
		logger.FromContext(c.Request.Context()).Error("failed to render page", zap.Error(err))
	}
}

func formConstraints(c *gin.Context) mealplan.Constraints {
	return mealplan.Constraints{
		DietType:          mealplan.ParseDietType(c.PostForm("dietType")),
		CalorieTarget:     formNumber(c.PostForm("calorieTarget")),
		Allergies:         strings.TrimSpace(c.PostForm("allergies")),
		CuisinePreference: strings.TrimSpace(c.PostForm("cuisinePreference")),
		DailyBudget:       formNumber(c.PostForm("dailyBudget")),
	}
}

// formNumber parses a numeric form field. Anything unparsable or non-finite
// becomes zero, which the controller rejects before any generator call.
func formNumber(raw string) mealplan.Number {
	n, err := mealplan.ParseNumber(raw)
	if err != nil {
		return 0
	}
	return n
}
