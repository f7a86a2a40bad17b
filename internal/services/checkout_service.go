package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Nanpapu/eventhub-sub001/internal/models"
	"github.com/Nanpapu/eventhub-sub001/internal/queue"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DemoSuccess = "DEMO_SUCCESS"
	DemoFail    = "DEMO_FAIL"
)

var ErrPaymentDeclined = errors.New("payment was declined by the demo gateway")

// sideEffectTimeout bounds the post-commit notification and publish, which
// run detached from the request context.
const sideEffectTimeout = 10 * time.Second

type PurchasePublisher interface {
	PublishTicketPurchased(ctx context.Context, event queue.TicketPurchasedEvent) error
}

type CheckoutInput struct {
	EventID      primitive.ObjectID
	TicketTypeID primitive.ObjectID
	Quantity     int
	Contact      models.AttendeeContact
	PaymentType  string
}

type CheckoutService struct {
	purchases models.PurchaseRepo
	notifier  *NotificationService
	publisher PurchasePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewCheckoutService accepts a nil publisher when no broker is configured.
func NewCheckoutService(purchases models.PurchaseRepo, notifier *NotificationService, publisher PurchasePublisher, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		purchases: purchases,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessPayment simulates the gateway, then runs the purchase transaction.
// A declined demo payment returns ErrPaymentDeclined before any read or
// write touches the database.
func (cs *CheckoutService) ProcessPayment(ctx context.Context, buyerID uuid.UUID, in CheckoutInput) (*models.PurchaseResult, error) {
	if buyerID == uuid.Nil {
		return nil, fmt.Errorf("%w: buyer is required", models.ErrValidation)
	}
	if err := models.Validate.Struct(in.Contact); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	switch in.PaymentType {
	case DemoSuccess:
	case DemoFail:
		cs.logger.Info("demo payment declined",
			"user_id", buyerID,
			"event_id", in.EventID.Hex(),
		)
		return nil, ErrPaymentDeclined
	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", models.ErrValidation, in.PaymentType)
	}

	res, err := cs.purchases.Purchase(ctx, models.PurchaseRequest{
		BuyerID:      buyerID,
		EventID:      in.EventID,
		TicketTypeID: in.TicketTypeID,
		Quantity:     in.Quantity,
		Contact:      in.Contact,
	}, cs.now().UTC())
	if err != nil {
		return nil, err
	}

	cs.logger.Info("purchase committed",
		"user_id", buyerID,
		"event_id", in.EventID.Hex(),
		"registration_id", res.Registration.ID.Hex(),
		"quantity", in.Quantity,
		"transaction_id", res.Payment.TransactionID,
	)

	cs.afterCommit(ctx, res)
	return res, nil
}

// afterCommit runs the best-effort side effects. Their failures are logged
// and never reach the caller; the purchase is already durable.
func (cs *CheckoutService) afterCommit(ctx context.Context, res *models.PurchaseResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := cs.notifier.NotifyTicketConfirmation(ctx, res); err != nil {
		cs.logger.Error("ticket confirmation notification failed",
			"user_id", res.Registration.UserID,
			"registration_id", res.Registration.ID.Hex(),
			"error", err,
		)
	}

	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.PublishTicketPurchased(ctx, purchasedEvent(res)); err != nil {
		cs.logger.Warn("purchase message not published",
			"registration_id", res.Registration.ID.Hex(),
			"error", err,
		)
	}
}

func purchasedEvent(res *models.PurchaseResult) queue.TicketPurchasedEvent {
	codes := make([]string, len(res.Tickets))
	for i, t := range res.Tickets {
		codes[i] = t.Code
	}
	reg := res.Registration
	return queue.TicketPurchasedEvent{
		RegistrationID: reg.ID.Hex(),
		PaymentID:      res.Payment.ID.Hex(),
		TransactionID:  res.Payment.TransactionID,
		UserID:         reg.UserID.String(),
		EventID:        res.Event.ID.Hex(),
		EventTitle:     res.Event.Title,
		EventDate:      res.Event.Date.UTC().Format("2006-01-02"),
		StartTime:      res.Event.StartTime,
		TicketTypeName: reg.TicketTypeName,
		Quantity:       reg.Quantity,
		TotalAmount:    reg.TotalAmount,
		Currency:       res.Payment.Currency,
		AttendeeName:   reg.Attendee.FullName,
		AttendeeEmail:  reg.Attendee.Email,
		TicketCodes:    codes,
		PurchasedAt:    reg.CreatedAt.UTC().Format(time.RFC3339),
	}
}
