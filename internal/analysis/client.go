// Package analysis talks to the remote stock-analysis service.
//
// One call to Analyze sends one POST and yields either a complete
// AnalysisResult or an *Error describing why there is none. There is no
// retry and no partial result.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// RequestIDHeader carries the per-request correlation id to the service.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response ends up in messages.
const maxErrorBody = 200

// Request is the JSON body sent to the service.
type Request struct {
	StockSymbol string `json:"stock_symbol"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// NewRequest builds the wire request for q.
func NewRequest(q models.Query) Request {
	return Request{
		StockSymbol: q.Symbol,
		StartDate:   q.StartDate.String(),
		EndDate:     q.EndDate.String(),
	}
}

// Client is the analysis service client.
type Client struct {
	http     *resty.Client
	url      string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewClient creates a client for the configured service.
func NewClient(cfg config.ServiceConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	hc := resty.New()
	hc.SetTimeout(cfg.Timeout)
	hc.SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		hc.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.APIKey != "" {
		hc.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:     hc,
		url:      cfg.URL,
		validate: validator.New(),
		logger:   logger.With("component", "analysis"),
	}
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id that Analyze sends as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Analyze sends q to the service and decodes the bundle.
func (c *Client) Analyze(ctx context.Context, q models.Query) (*models.AnalysisResult, error) {
	reqID := requestIDFrom(ctx)
	log := c.logger.With("request_id", reqID, "symbol", q.Symbol)
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, reqID).
		SetBody(NewRequest(q)).
		Post(c.url)
	if err != nil {
		log.Warn("analysis request failed", "error", err, "elapsed", time.Since(start))
		return nil, &Error{Kind: KindNetwork, Message: networkMessage(ctx, err), Err: err}
	}

	log.Debug("analysis response", "status", resp.StatusCode(), "elapsed", time.Since(start))

	if !resp.IsSuccess() {
		body := utils.TruncateText(resp.String(), maxErrorBody)
		msg := fmt.Sprintf("analysis service returned %s", resp.Status())
		if body != "" {
			msg += ": " + body
		}
		return nil, &Error{Kind: KindService, StatusCode: resp.StatusCode(), Message: msg}
	}

	result, err := c.decode(resp.Body())
	if err != nil {
		log.Warn("analysis response rejected", "error", err)
		return nil, err
	}
	return result, nil
}

// decode parses and validates a response body. It never returns a partially
// filled result alongside an error.
func (c *Client) decode(body []byte) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Kind: KindDecode, Message: "response is not a valid analysis bundle: " + err.Error(), Err: err}
	}

	if err := c.validate.Struct(&result); err != nil {
		return nil, &Error{Kind: KindDecode, Message: validationMessage(err), Err: err}
	}

	result.EnsureLists()
	return &result, nil
}

func networkMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "analysis service did not respond in time"
	}
	var ue interface{ Timeout() bool }
	if errors.As(err, &ue) && ue.Timeout() {
		return "analysis service did not respond in time"
	}
	return "could not reach analysis service"
}

// validationMessage lists the offending fields by their JSON path.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "response failed validation: " + err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonPath(fe.Namespace()))
	}
	return "response is missing required fields: " + strings.Join(fields, ", ")
}

var jsonNames = strings.NewReplacer(
	"AnalysisResult.", "",
	"StockSymbol", "stock_symbol",
	"PriceSummary", "price_summary",
	"StartPrice", "start_price",
	"EndPrice", "end_price",
	"GainLossPercent", "gain_loss_percent",
	"High", "high",
	"Low", "low",
	"TotalVolume", "total_volume",
	"Events", "events",
	"Dividends", "dividends",
	"Splits", "splits",
	"News", "news",
	"Title", "title",
	"Date", "date",
)

func jsonPath(ns string) string {
	return jsonNames.Replace(ns)
}
