// Package webhook serves the inbound alert endpoint and the liveness and metrics endpoints.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"BistSentinel/internal/dispatcher"
	"BistSentinel/internal/metrics"
	"BistSentinel/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// Alerter broadcasts an alert to the current recipients.
type Alerter interface {
	Dispatch(ctx context.Context, evt model.AlertEvent) dispatcher.Result
}

// Server is the HTTP surface of the bot.
type Server struct {
	Alerter Alerter
	Metrics *metrics.Metrics

	engine *gin.Engine
	srv    *http.Server
}

// NewServer builds the routes. alerter may be nil until the bot is ready.
func NewServer(addr string, alerter Alerter, m *metrics.Metrics) *Server {
	s := &Server{Alerter: alerter, Metrics: m}

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, s)
	s.engine = r
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// RegisterRoutes mounts the webhook, liveness and metrics routes.
func RegisterRoutes(r *gin.Engine, s *Server) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is alive")
	})
	r.POST("/webhook", s.handleWebhook)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("[INFO] webhook server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, fmt.Errorf("read body: %w", err))
		return
	}
	evt, err := ParseAlert(body)
	if err != nil {
		s.fail(c, err)
		return
	}
	log.Printf("[INFO] webhook alert: %s %q %v", evt.Symbol, evt.Message, evt.Price)

	if s.Alerter == nil {
		s.reply(c, http.StatusInternalServerError, "Bot not ready")
		return
	}
	res := s.Alerter.Dispatch(c.Request.Context(), evt)
	if res.Recipients == 0 {
		s.reply(c, http.StatusOK, "No subscribers")
		return
	}
	s.reply(c, http.StatusOK, fmt.Sprintf("Alert sent to %d subscribers", res.Delivered))
}

func (s *Server) fail(c *gin.Context, err error) {
	log.Printf("[ERROR] webhook: %v", err)
	s.reply(c, http.StatusInternalServerError, err.Error())
}

func (s *Server) reply(c *gin.Context, status int, text string) {
	s.Metrics.ObserveWebhook(status)
	c.String(status, text)
}

// ParseAlert reads symbol, message and price from a JSON object, falling back
// to "UNKNOWN", "Sinyal Geldi" and 0. Numeric strings are accepted as price.
func ParseAlert(body []byte) (model.AlertEvent, error) {
	if !gjson.ValidBytes(body) {
		return model.AlertEvent{}, errors.New("invalid JSON payload")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return model.AlertEvent{}, errors.New("payload must be a JSON object")
	}

	evt := model.AlertEvent{Symbol: "UNKNOWN", Message: "Sinyal Geldi"}
	if v := root.Get("symbol"); v.Exists() {
		evt.Symbol = v.String()
	}
	if v := root.Get("message"); v.Exists() {
		evt.Message = v.String()
	}
	if v := root.Get("price"); v.Exists() {
		evt.Price = v.Float()
	}
	return evt, nil
}
