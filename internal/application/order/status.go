package order

import (
	"context"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/validation"
	domain "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
	domoutbox "github.com/kursant77/ajabo-f69de2d8/internal/domain/outbox"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseOrderUpdateStatus = "order.update_status"

// UpdateStatusUseCase moves an order along the transition table on behalf of staff or the system.
type UpdateStatusUseCase struct {
	repo      domain.Repository
	publisher domoutbox.Publisher
	now       func() time.Time

	in application.Instruments
}

func NewUpdateStatusUseCase(repo domain.Repository, publisher domoutbox.Publisher, tel observability.Observability) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
		in:        application.NewInstruments(tel, orderService),
	}
}

type UpdateStatusInput struct {
	OrderID        string
	Status         string
	Actor          domain.Actor
	DeliveryPerson string
}

type UpdateStatusResult struct {
	Order *domain.Order
	From  domain.Status
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusInput) (_ *UpdateStatusResult, err error) {
	logger := logctx.FromOr(ctx, uc.in.Log).With(
		observability.F("use_case", useCaseOrderUpdateStatus),
		observability.F("order_id", cmd.OrderID),
		observability.F("actor", string(cmd.Actor)),
	)

	ctx, span := uc.in.Tracer.Start(ctx, application.SpanPrefix+"UpdateOrderStatus",
		attribute.String("use_case", useCaseOrderUpdateStatus),
		attribute.String("order.id", cmd.OrderID),
		attribute.String("order.status.to", cmd.Status),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var from domain.Status
	var publishErr error

	defer func() {
		fields := []observability.Field{
			observability.F("from", string(from)),
			observability.F("to", cmd.Status),
		}
		if publishErr != nil {
			fields = append(fields, observability.F("event_publish_error", publishErr.Error()))
		}
		uc.in.Finish(ctx, logger, span, useCaseOrderUpdateStatus, outcome, statusText, start, err, fields...)
	}()

	to, err := domain.ParseStatus(cmd.Status)
	if err != nil {
		outcome, statusText = "error", "STATUS_INVALID"
		return nil, validation.Wrap(err)
	}

	entity, err := uc.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		outcome, statusText = "error", "ORDER_LOAD_FAILED"
		return nil, wrapRepositoryError(err)
	}
	from = entity.Status

	if err := entity.Transition(to, cmd.Actor, cmd.DeliveryPerson, uc.now()); err != nil {
		outcome, statusText = "error", "TRANSITION_REJECTED"
		return nil, err
	}

	if err := uc.repo.UpdateStatus(ctx, entity, from); err != nil {
		outcome, statusText = "error", "REPO_UPDATE_FAILED"
		return nil, wrapRepositoryError(err)
	}

	publishErr = uc.in.Publish(ctx, uc.publisher, domain.NewOrderStatusChangedEvent(entity, from, cmd.Actor))
	if publishErr != nil {
		statusText = "EVENT_PUBLISH_FAILED"
	}

	span.SetAttributes(attribute.String("order.status.from", string(from)))
	return &UpdateStatusResult{Order: entity, From: from}, nil
}
