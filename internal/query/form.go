// Package query holds the editable query the user builds before analyzing.
package query

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/pkg/models"
)

// ErrInvalidQuery is wrapped by every error Validate returns.
var ErrInvalidQuery = errors.New("invalid query")

// Form is the editable query state. Each field can be edited independently;
// edits never perform I/O.
type Form struct {
	mu sync.RWMutex
	q  models.Query
}

// NewForm returns a form initialised to q.
func NewForm(q models.Query) *Form {
	return &Form{q: q}
}

// NewFormFromConfig builds the initial form from the configured defaults.
func NewFormFromConfig(cfg config.QueryConfig) (*Form, error) {
	f := NewForm(models.Query{})
	f.SetSymbol(cfg.Symbol)
	if err := f.SetStartDate(cfg.StartDate); err != nil {
		return nil, fmt.Errorf("query.start_date: %w", err)
	}
	if err := f.SetEndDate(cfg.EndDate); err != nil {
		return nil, fmt.Errorf("query.end_date: %w", err)
	}
	return f, nil
}

// Query returns a snapshot of the current values.
func (f *Form) Query() models.Query {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.q
}

// SetSymbol replaces the symbol. Surrounding whitespace is dropped.
func (f *Form) SetSymbol(symbol string) {
	f.mu.Lock()
	f.q.Symbol = strings.TrimSpace(symbol)
	f.mu.Unlock()
}

// SetStartDate parses and replaces the start date. On a parse error the
// form is left unchanged.
func (f *Form) SetStartDate(s string) error {
	d, err := models.ParseDate(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.q.StartDate = d
	f.mu.Unlock()
	return nil
}

// SetEndDate parses and replaces the end date. On a parse error the form
// is left unchanged.
func (f *Form) SetEndDate(s string) error {
	d, err := models.ParseDate(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.q.EndDate = d
	f.mu.Unlock()
	return nil
}

// Edit is a partial update; nil fields are left alone.
type Edit struct {
	Symbol    *string `json:"stock_symbol,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// Apply applies every non-nil field of e. Date errors are reported for the
// first field that fails; fields applied before it stay applied.
func (f *Form) Apply(e Edit) error {
	if e.Symbol != nil {
		f.SetSymbol(*e.Symbol)
	}
	if e.StartDate != nil {
		if err := f.SetStartDate(*e.StartDate); err != nil {
			return fmt.Errorf("start_date: %w", err)
		}
	}
	if e.EndDate != nil {
		if err := f.SetEndDate(*e.EndDate); err != nil {
			return fmt.Errorf("end_date: %w", err)
		}
	}
	return nil
}

// Validate checks the query is submittable: a symbol, both dates, and an
// end date that does not precede the start date.
func (f *Form) Validate() (models.Query, error) {
	q := f.Query()
	return q, Validate(q)
}

// Validate checks q the same way Form.Validate does.
func Validate(q models.Query) error {
	switch {
	case q.Symbol == "":
		return fmt.Errorf("%w: stock symbol is required", ErrInvalidQuery)
	case q.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidQuery)
	case q.EndDate.IsZero():
		return fmt.Errorf("%w: end date is required", ErrInvalidQuery)
	case q.EndDate.Before(q.StartDate):
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidQuery, q.EndDate, q.StartDate)
	}
	return nil
}
