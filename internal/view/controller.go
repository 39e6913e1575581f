package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seenimoa/stockdash/internal/analysis"
	"github.com/seenimoa/stockdash/internal/query"
	"github.com/seenimoa/stockdash/pkg/models"
)

// Analyzer fetches the analysis bundle for a query. *analysis.Client
// implements it.
type Analyzer interface {
	Analyze(ctx context.Context, q models.Query) (*models.AnalysisResult, error)
}

// Controller couples the editable form, the state machine and the analyzer.
type Controller struct {
	form     *query.Form
	machine  *Machine
	analyzer Analyzer
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller. A nil logger uses slog.Default.
func NewController(form *query.Form, machine *Machine, analyzer Analyzer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		form:     form,
		machine:  machine,
		analyzer: analyzer,
		logger:   logger.With("component", "view"),
	}
}

// Form returns the controller's input form.
func (c *Controller) Form() *query.Form { return c.form }

// Machine returns the controller's state machine.
func (c *Controller) Machine() *Machine { return c.machine }

// Analyze validates the form, begins a new request and returns its ticket
// without waiting for it. Any request still in flight is cancelled; if it
// resolves anyway its outcome is discarded. ctx bounds the new request.
//
// Invalid input returns an error wrapping query.ErrInvalidQuery and leaves
// the state untouched.
func (c *Controller) Analyze(ctx context.Context) (Ticket, error) {
	t, reqCtx, err := c.begin(ctx)
	if err != nil {
		return Ticket{}, err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(reqCtx, t)
	}()
	return t, nil
}

// AnalyzeAndWait runs one full request cycle synchronously and returns the
// resulting state.
func (c *Controller) AnalyzeAndWait(ctx context.Context) (State, error) {
	t, reqCtx, err := c.begin(ctx)
	if err != nil {
		return c.machine.Current(), err
	}
	c.run(reqCtx, t)
	return c.machine.Current(), nil
}

// Wait blocks until every request started by Analyze has resolved.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels the in-flight request, if any, and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) begin(ctx context.Context) (Ticket, context.Context, error) {
	// The form snapshot and Begin happen under one lock so that ticket order
	// matches snapshot order.
	c.mu.Lock()
	q, err := c.form.Validate()
	if err != nil {
		c.mu.Unlock()
		return Ticket{}, nil, err
	}
	reqCtx, cancel := context.WithCancel(ctx)
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	t := c.machine.Begin(q)
	c.mu.Unlock()

	c.logger.Info("analysis started", "request_id", t.RequestID, "seq", t.Seq, "query", q.Label())
	return t, analysis.WithRequestID(reqCtx, t.RequestID), nil
}

func (c *Controller) run(ctx context.Context, t Ticket) {
	log := c.logger.With("request_id", t.RequestID, "seq", t.Seq)

	result, err := c.analyzer.Analyze(ctx, t.Query)

	var applied bool
	if err != nil {
		applied = c.machine.Fail(t, err)
		if applied {
			log.Warn("analysis failed", "kind", analysis.KindOf(err), "error", err)
		}
	} else {
		applied = c.machine.Succeed(t, result)
		if applied {
			log.Info("analysis loaded", "symbol", result.StockSymbol, "news", len(result.News))
		}
	}
	if !applied {
		log.Debug("stale analysis outcome discarded")
	}
}
