package server

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hostwatch/internal/auth"
	"hostwatch/internal/collector"
	"hostwatch/internal/logscan"
	"hostwatch/internal/report"
)

// API bundles the core components the handlers operate on. All state is
// injected at construction; the package holds no globals.
type API struct {
	Sessions   *auth.Manager
	Summarizer *report.Summarizer
	Thresholds *collector.Registry
	Collector  *collector.Collector
}

// RegisterRoutes wires the full REST surface onto the engine.
//
//	Public:    POST /api/register, POST /api/login, GET /api/health
//	Protected: everything else under /api (Bearer session token)
func (a *API) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ── Public endpoints ──────────────────────────────────────────────────────
	api.POST("/register", a.handleRegister)
	api.POST("/login", a.handleLogin)
	api.GET("/health", a.handleHealth)

	// ── Session-protected endpoints ───────────────────────────────────────────
	protected := api.Group("/", AuthMiddleware(a.Sessions))
	{
		protected.GET("/validate-session", a.handleValidateSession)
		protected.POST("/logout", a.handleLogout)

		protected.GET("/metrics", a.handleMetrics)
		protected.GET("/alerts", a.handleAlerts)
		protected.GET("/summary", a.handleSummary)

		protected.GET("/thresholds", a.handleGetThresholds)
		protected.PUT("/thresholds", a.handleSetThresholds)

		protected.POST("/analyze-logs", a.handleAnalyzeLogs)
	}
}

// ── Handlers ──────────────────────────────────────────────────────────────────

type credentialsBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister creates a new account.
//
//	POST /api/register
//	Body: { "username": "alice", "password": "secret" }
func (a *API) handleRegister(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "username and password required")
		return
	}

	if err := a.Sessions.Register(body.Username, body.Password); err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			fail(c, http.StatusConflict, "user already exists")
			return
		}
		log.Printf("[server] register error: %v", err)
		fail(c, http.StatusInternalServerError, "registration failed")
		return
	}
	ok(c, nil)
}

// handleLogin verifies credentials and issues a session token.
func (a *API) handleLogin(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "username and password required")
		return
	}

	sess, err := a.Sessions.Login(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("[server] login error: %v", err)
		fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    sess.Token,
		"username": sess.Username,
	})
}

// handleValidateSession is a no-op behind the auth middleware: reaching it
// means the token is valid.
func (a *API) handleValidateSession(c *gin.Context) {
	ok(c, nil)
}

// handleLogout destroys the caller's session. Idempotent by design.
func (a *API) handleLogout(c *gin.Context) {
	a.Sessions.Logout(c.GetString(ctxToken))
	ok(c, nil)
}

// handleMetrics returns the most recent samples, oldest-first.
//
//	GET /api/metrics?limit=20
func (a *API) handleMetrics(c *gin.Context) {
	limit := report.DefaultSampleLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	points, err := a.Summarizer.RecentSamples(limit)
	if err != nil {
		log.Printf("[server] metrics query error: %v", err)
		fail(c, http.StatusInternalServerError, "failed to read metrics")
		return
	}
	ok(c, points)
}

// handleAlerts returns the full alert history, newest-first.
func (a *API) handleAlerts(c *gin.Context) {
	alerts, err := a.Summarizer.AllAlerts()
	if err != nil {
		log.Printf("[server] alerts query error: %v", err)
		fail(c, http.StatusInternalServerError, "failed to read alerts")
		return
	}
	ok(c, alerts)
}

// handleSummary returns the aggregated reporting view.
func (a *API) handleSummary(c *gin.Context) {
	sum, err := a.Summarizer.Summary()
	if err != nil {
		log.Printf("[server] summary error: %v", err)
		fail(c, http.StatusInternalServerError, "failed to build summary")
		return
	}
	ok(c, sum)
}

// handleGetThresholds returns the current limit snapshot.
func (a *API) handleGetThresholds(c *gin.Context) {
	ok(c, a.Thresholds.Get())
}

// handleSetThresholds atomically replaces both limits.
//
//	PUT /api/thresholds
//	Body: { "cpu": 85, "memory": 90 }
func (a *API) handleSetThresholds(c *gin.Context) {
	var body struct {
		CPU    *float64 `json:"cpu" binding:"required"`
		Memory *float64 `json:"memory" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "cpu and memory required")
		return
	}
	if err := a.Thresholds.Set(*body.CPU, *body.Memory); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	ok(c, nil)
}

// handleAnalyzeLogs runs the stateless log analyzer over the named file.
//
//	POST /api/analyze-logs
//	Body: { "log_file": "sample.log" }
func (a *API) handleAnalyzeLogs(c *gin.Context) {
	var body struct {
		LogFile string `json:"log_file"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.LogFile == "" {
		body.LogFile = "sample.log"
	}

	rep, err := logscan.Analyze(body.LogFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fail(c, http.StatusNotFound, "log file not found")
			return
		}
		log.Printf("[server] analyze-logs error: %v", err)
		fail(c, http.StatusBadRequest, "could not parse log file")
		return
	}
	ok(c, rep)
}

// handleHealth is an unauthenticated liveness probe.
func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  float64(time.Now().UnixNano()) / float64(time.Second),
		"collecting": a.Collector.Running(),
	})
}
