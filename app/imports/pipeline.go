package imports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/slicehouse/catalog-service/logger"
	"github.com/slicehouse/catalog-service/models"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusCreated Status = "created"
	StatusExists  Status = "already-exists"
	StatusFailed  Status = "failed"
)

var errAlreadyImported = errors.New("sku already in catalog")

// Outcome is the result of importing one feed row.
type Outcome struct {
	Row    int    `json:"row"`
	SKU    string `json:"sku"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Report holds the outcomes of one import batch in feed order.
type Report struct {
	BatchID  string
	Outcomes []Outcome
}

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

func (r *Report) Created() int  { return r.count(StatusCreated) }
func (r *Report) Existing() int { return r.count(StatusExists) }
func (r *Report) Failed() int   { return r.count(StatusFailed) }

func (r *Report) FailedOutcomes() []Outcome {
	failed := []Outcome{}
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Pipeline materialises product feeds into the catalog.
type Pipeline struct {
	store   *models.Store
	workers int
	log     *logger.Logger
}

func NewPipeline(store *models.Store, workers int, log *logger.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		store:   store,
		workers: workers,
		log:     log.With("component", "imports.Pipeline"),
	}
}

// Import reads the whole feed inside one transaction. Row problems become
// failed outcomes and never abort the batch. A feed that cannot be read, a
// cancelled context or a failed commit rolls everything back and is returned
// as the single error.
func (p *Pipeline) Import(ctx context.Context, feed io.Reader) (*Report, error) {
	report := &Report{BatchID: uuid.NewString()}
	log := p.log.With("batch_id", report.BatchID)

	err := p.store.Transaction(ctx, func(tx *models.Store) error {
		reader, err := NewFeedReader(feed)
		if err != nil {
			return err
		}

		// Rows are prepared concurrently but take turns on the transaction.
		var txMu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		var slots []*Outcome
		var readErr error
		for {
			row, err := reader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				readErr = err
				break
			}
			slot := &Outcome{Row: row.Line}
			slots = append(slots, slot)
			g.Go(func() error {
				*slot = p.processRow(gctx, tx, &txMu, log, row)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if readErr != nil {
			return readErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		report.Outcomes = make([]Outcome, len(slots))
		for i, slot := range slots {
			report.Outcomes[i] = *slot
		}
		return nil
	})
	if err != nil {
		log.Error("import rolled back", "error", err)
		return nil, fmt.Errorf("import rolled back: %w", err)
	}

	log.Info("import committed",
		"rows", len(report.Outcomes),
		"created", report.Created(),
		"existing", report.Existing(),
		"failed", report.Failed(),
	)
	return report, nil
}

func (p *Pipeline) processRow(ctx context.Context, tx *models.Store, txMu *sync.Mutex, log *logger.Logger, row FeedRow) Outcome {
	out := Outcome{Row: row.Line, Title: row.Title, SKU: row.SKU}
	fail := func(err error) Outcome {
		out.Status = StatusFailed
		out.Reason = err.Error()
		log.Warn("import row failed", "row", row.Line, "sku", out.SKU, "error", err)
		return out
	}

	if row.Err != nil {
		return fail(row.Err)
	}
	if out.SKU == "" {
		out.SKU = SynthesizeSKU(row.Title)
	}
	if out.SKU == "" {
		return fail(errors.New("row has neither sku nor title"))
	}
	product, err := row.Product(out.SKU)
	if err != nil {
		return fail(err)
	}

	txMu.Lock()
	defer txMu.Unlock()

	// Savepoint per row: a failed statement must not poison the batch.
	err = tx.Transaction(ctx, func(rowTx *models.Store) error {
		if _, err := rowTx.Products.FindBySku(ctx, out.SKU); err == nil {
			return errAlreadyImported
		} else if !errors.Is(err, models.ErrProductNotFound) {
			return err
		}

		resolve := func(table models.LookupTable, name string) (*uint, error) {
			if strings.TrimSpace(name) == "" {
				return nil, nil
			}
			id, err := rowTx.Products.FindOrCreateLookup(ctx, table, name)
			if err != nil {
				return nil, err
			}
			return &id, nil
		}
		var err error
		if product.CategoryID, err = resolve(models.LookupCategories, row.Category); err != nil {
			return err
		}
		if product.DietID, err = resolve(models.LookupDiets, row.Diet); err != nil {
			return err
		}
		if product.PizzaTypeID, err = resolve(models.LookupPizzaTypes, row.PizzaType); err != nil {
			return err
		}
		return rowTx.Products.CreateProduct(ctx, product)
	})
	switch {
	case err == nil:
		out.Status = StatusCreated
		log.Debug("import row created", "row", row.Line, "sku", out.SKU)
		return out
	case errors.Is(err, errAlreadyImported), errors.Is(err, models.ErrDuplicateSku):
		out.Status = StatusExists
		return out
	default:
		return fail(err)
	}
}
