package httpapi

import (
	"smart-diet-planner/internal/auth"
	"smart-diet-planner/internal/client"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP surface.
type Options struct {
	Generator      client.PlanGenerator
	Store          Pinger
	AllowedOrigins []string
	// TokenSecret enables bearer auth on /api and the access token check on
	// the form page when set.
	TokenSecret string
	Tracing     bool
	ServiceName string
}

// Router is the gin engine with middleware and routes installed.
type Router struct {
	engine *gin.Engine
	opts   Options
}

// New creates the router.
func New(opts Options) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "smart-diet-planner"
	}

	r := &Router{
		engine: gin.New(),
		opts:   opts,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Engine returns the gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(Recovery())
	r.engine.Use(RequestID())
	r.engine.Use(CORS(r.opts.AllowedOrigins))

	if r.opts.Tracing {
		r.engine.Use(Trace(r.opts.ServiceName))
		r.engine.Use(TraceContext())
	}

	r.engine.Use(Metrics())
	r.engine.Use(Logging())
}

func (r *Router) setupRoutes() {
	var tokens *auth.TokenManager
	if r.opts.TokenSecret != "" {
		tokens = auth.NewTokenManager(r.opts.TokenSecret)
	}
	h := NewHandler(r.opts.Generator, r.opts.Store, tokens)

	r.engine.GET("/health", h.Health)
	r.engine.GET("/ready", h.Ready)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.engine.GET("/", h.Form)
	r.engine.POST("/plan", h.SubmitForm)

	api := r.engine.Group("/api", Auth(tokens))
	{
		api.POST("/generate-plan", h.GeneratePlan)
	}
}
