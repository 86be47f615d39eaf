package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/phennylalanine/jhvocab/internal/config"
	"github.com/phennylalanine/jhvocab/internal/hub"
	"github.com/phennylalanine/jhvocab/internal/progression"
	"github.com/phennylalanine/jhvocab/internal/scheduler"
	"github.com/phennylalanine/jhvocab/internal/store"
)

// Server is the read-only progress dashboard.
type Server struct {
	cfg     *config.Config
	kv      store.KV
	log     *zap.Logger
	metrics *Metrics
	engine  *gin.Engine
	now     func() time.Time
}

// New builds the dashboard and its routes.
func New(cfg *config.Config, kv store.KV, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	s := &Server{
		cfg:     cfg,
		kv:      kv,
		log:     log,
		metrics: NewMetrics(NewProgressCollector(kv, cfg.Quizzes, cfg.HubEntries(), log)),
		now:     time.Now,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.metrics.Middleware())
	if len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Server.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Accept", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	if cfg.Server.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), max(cfg.Server.RateBurst, 1))))
	}

	r.GET("/healthz", s.health)
	r.GET("/metrics", s.metrics.Handler())

	api := r.Group("/api")
	api.GET("/quizzes", s.listQuizzes)
	api.GET("/quizzes/:id/progress", s.quizProgress)
	api.GET("/hub", s.hubSummary)

	s.engine = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Server.Addr,
		Handler:     s.engine,
		ReadTimeout: s.cfg.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func rateLimit(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func (s *Server) health(c *gin.Context) {
	if _, _, err := s.kv.Get(c.Request.Context(), hub.SelectedMonsterKey); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type quizView struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	TitleJP string `json:"titleJp,omitempty"`
	Icon    string `json:"icon,omitempty"`
	URL     string `json:"url,omitempty"`
	Level   int    `json:"level"`
}

func (s *Server) listQuizzes(c *gin.Context) {
	ctx := c.Request.Context()
	out := make([]quizView, 0, len(s.cfg.Quizzes))
	for _, q := range s.cfg.Quizzes {
		out = append(out, quizView{
			ID:      q.ID,
			Title:   q.Title,
			TitleJP: q.TitleJP,
			Icon:    q.Icon,
			URL:     q.URL,
			Level:   hub.ReadLevel(ctx, s.kv, q.LevelKey),
		})
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": out})
}

type progressView struct {
	ID          string  `json:"id"`
	Level       int     `json:"level"`
	XP          int     `json:"xp"`
	XPRequired  int     `json:"xpRequired"`
	Progress    float64 `json:"progress"`
	CoolingDown int     `json:"coolingDown"`
}

func (s *Server) quizProgress(c *gin.Context) {
	q, ok := s.cfg.Quiz(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown quiz %q", c.Param("id"))})
		return
	}

	ctx := c.Request.Context()
	tracker := progression.New(ctx, s.kv, progression.Keys{XP: q.XPKey, Level: q.LevelKey}, progression.WithLogger(s.log))
	st := tracker.State()
	sched := scheduler.New(ctx, s.kv, scheduler.BoundNamespace(ctx, s.kv, q.NamespaceKey(), q.Namespace),
		scheduler.WithLogger(s.log))

	c.JSON(http.StatusOK, progressView{
		ID:          q.ID,
		Level:       st.Level,
		XP:          st.XP,
		XPRequired:  progression.XPRequired(st.Level),
		Progress:    tracker.Progress(),
		CoolingDown: len(sched.CoolingDown(s.now())),
	})
}

func (s *Server) hubSummary(c *gin.Context) {
	c.JSON(http.StatusOK, hub.Summarize(c.Request.Context(), s.kv, s.cfg.HubEntries()))
}
