package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	"github.com/kursant77/ajabo-f69de2d8/internal/domain/catalog"
	dominv "github.com/kursant77/ajabo-f69de2d8/internal/domain/inventory"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService   = "inventory-service"
	useCaseStockDeduct = "inventory.deduct"
)

// Skip reasons reported by DeductStockUseCase when nothing was written.
const (
	SkipNoProduct       = "no_product"
	SkipNoStock         = "no_matching_stock"
	SkipAlreadyDeducted = "already_deducted"
)

// ProductFinder resolves the catalog product an order was placed for.
type ProductFinder interface {
	FindProductByName(ctx context.Context, name string) (*catalog.Product, error)
}

type DeductStockInput struct {
	OrderID     string
	ProductName string
	Quantity    int
}

type DeductStockResult struct {
	Applied    bool
	Lines      []dominv.Line
	Fallback   bool
	SkipReason string
}

// DeductStockUseCase takes an order's ingredients from the warehouse exactly once.
type DeductStockUseCase struct {
	repo      dominv.Repository
	products  ProductFinder
	publisher domoutbox.Publisher

	in application.Instruments
}

func NewDeductStockUseCase(repo dominv.Repository, products ProductFinder, publisher domoutbox.Publisher, tel observability.Observability) *DeductStockUseCase {
	return &DeductStockUseCase{
		repo:      repo,
		products:  products,
		publisher: publisher,
		in:        application.NewInstruments(tel, inventoryService),
	}
}

func (uc *DeductStockUseCase) Execute(ctx context.Context, cmd DeductStockInput) (_ *DeductStockResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(
		observability.F("use_case", useCaseStockDeduct),
		observability.F("order_id", cmd.OrderID),
		observability.F("product_name", cmd.ProductName),
		observability.F("quantity", cmd.Quantity),
	)

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"DeductStock",
		attribute.String("use_case", useCaseStockDeduct),
		attribute.String("order.id", cmd.OrderID),
		attribute.Int("order.quantity", cmd.Quantity),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	res := &DeductStockResult{}
	var publishErr error

	defer func() {
		fields := []observability.Field{
			observability.F("applied", res.Applied),
			observability.F("lines", len(res.Lines)),
			observability.F("fallback", res.Fallback),
		}
		if res.SkipReason != "" {
			fields = append(fields, observability.F("skip_reason", res.SkipReason))
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		uc.in.Finish(ctx, logger, span, useCaseStockDeduct, outcome, statusText, start, err, fields...)
	}()

	name := strings.TrimSpace(cmd.ProductName)
	if cmd.OrderID == "" || name == "" || cmd.Quantity <= 0 {
		outcome, statusText = "skipped", "NOTHING_TO_DEDUCT"
		res.SkipReason = SkipNoProduct
		return res, nil
	}

	lines, fallback, err := uc.resolveLines(ctx, name, cmd.Quantity)
	if err != nil {
		outcome, statusText = "error", "RESOLVE_FAILED"
		return res, err
	}
	if len(lines) == 0 {
		// unknown to the warehouse; leave the order unflagged
		outcome, statusText = "skipped", "NO_MATCHING_STOCK"
		res.SkipReason = SkipNoStock
		return res, nil
	}
	res.Lines, res.Fallback = lines, fallback

	applied, err := uc.repo.ApplyDeduction(ctx, cmd.OrderID, lines)
	if err != nil {
		outcome, statusText = "error", "APPLY_FAILED"
		return res, fmt.Errorf("inventory: apply deduction: %w", err)
	}
	if !applied {
		outcome, statusText = "skipped", "ALREADY_DEDUCTED"
		res.SkipReason = SkipAlreadyDeducted
		return res, nil
	}
	res.Applied = true

	span.AddEvent("inventory.deducted",
		trace.WithAttributes(
			attribute.String("order.id", cmd.OrderID),
			attribute.Int("inventory.lines", len(lines)),
		),
	)

	publishErr = uc.in.Publish(ctx, uc.publisher, dominv.NewStockDeductedEvent(cmd.OrderID, lines, fallback))
	if publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
	}
	return res, nil
}

// resolveLines prefers the product's ingredient mapping and falls back to a stock item
// carrying the product's own name, one unit per unit sold.
func (uc *DeductStockUseCase) resolveLines(ctx context.Context, name string, qty int) ([]dominv.Line, bool, error) {
	if uc.products != nil {
		p, err := uc.products.FindProductByName(ctx, name)
		switch {
		case err == nil:
			ingredients, ierr := uc.repo.Ingredients(ctx, p.ID)
			if ierr != nil {
				return nil, false, fmt.Errorf("inventory: load ingredients: %w", ierr)
			}
			if len(ingredients) > 0 {
				lines := make([]dominv.Line, 0, len(ingredients))
				for _, ing := range ingredients {
					lines = append(lines, dominv.Line{
						StockItemID: ing.StockItemID,
						Amount:      ing.QuantityPerUnit * float64(qty),
					})
				}
				return lines, false, nil
			}
		case !errors.Is(err, catalog.ErrNotFound):
			return nil, false, fmt.Errorf("inventory: find product: %w", err)
		}
	}

	item, err := uc.repo.FindStockByName(ctx, name)
	switch {
	case errors.Is(err, dominv.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("inventory: find stock: %w", err)
	}
	return []dominv.Line{{StockItemID: item.ID, Amount: float64(qty)}}, true, nil
}
