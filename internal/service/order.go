package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Gracdom/Ecommercebabyproducts-sub001/pkg/errors"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/mailer"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/repository"
	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/webhook"
)

// EventTypeSessionCompleted is the only webhook event type that materializes
// an order. Everything else is acknowledged without side effects.
const EventTypeSessionCompleted = "checkout.session.completed"

// SessionVerifier validates webhook deliveries. Satisfied by
// *webhook.Verifier.
type SessionVerifier interface {
	Verify(payload []byte, sigHeader string) (*webhook.Event, error)
}

// LookupStore is the session→order snapshot store. Satisfied by
// *lookup.Store.
type LookupStore interface {
	Put(ctx context.Context, sessionID string, snapshot *domain.OrderSnapshot) error
	Get(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error)
}

// SendLedger is the send-once email ledger. Satisfied by
// *lookup.EmailLedger.
type SendLedger interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
	Release(ctx context.Context, sessionID string) error
}

// MailConfig holds the addresses used for transactional email.
type MailConfig struct {
	FromAddress  string
	SalesAddress string
}

// OrderService turns verified payment webhooks into durable orders, lookup
// entries, and confirmation emails.
type OrderService struct {
	verifier      SessionVerifier
	orders        repository.OrderRepository
	pendingOrders repository.PendingOrderRepository
	lookups       LookupStore
	ledger        SendLedger
	mailer        mailer.Mailer
	events        EventPublisher
	mail          MailConfig
	logger        *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	verifier SessionVerifier,
	orders repository.OrderRepository,
	pendingOrders repository.PendingOrderRepository,
	lookups LookupStore,
	ledger SendLedger,
	m mailer.Mailer,
	events EventPublisher,
	mail MailConfig,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		verifier:      verifier,
		orders:        orders,
		pendingOrders: pendingOrders,
		lookups:       lookups,
		ledger:        ledger,
		mailer:        m,
		events:        events,
		mail:          mail,
		logger:        logger,
	}
}

// HandleWebhook processes one webhook delivery. Signature failures map to
// 400; everything after verification that fails maps to 500 so the provider
// redelivers. The pipeline is: verify, filter, persist (swallowed on
// failure), lookup write (propagates), emails (send-once, propagate).
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook signature verification failed",
			slog.String("error", err.Error()),
		)
		return apperrors.InvalidSignature(err.Error())
	}

	if event.Type != EventTypeSessionCompleted {
		s.logger.DebugContext(ctx, "webhook event skipped",
			slog.String("event_type", event.Type),
		)
		return nil
	}

	session, err := event.Session()
	if err != nil {
		return apperrors.Internal(fmt.Errorf("decode session object: %w", err))
	}

	order := s.materializeOrder(ctx, session)

	// Order-row persistence is non-critical: the customer-facing lookup and
	// the emails must not be blocked by it.
	inserted, err := s.orders.Upsert(ctx, order)
	if err != nil {
		s.logger.ErrorContext(ctx, "order upsert failed",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	} else if !inserted {
		s.logger.InfoContext(ctx, "order already persisted, redelivery",
			slog.String("session_id", session.ID),
		)
	}

	snapshot := order.Snapshot()
	if err := s.lookups.Put(ctx, session.ID, &snapshot); err != nil {
		return fmt.Errorf("write order lookup: %w", err)
	}

	if err := s.dispatchEmails(ctx, order); err != nil {
		return err
	}

	if inserted {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			s.logger.WarnContext(ctx, "failed to publish order created event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "webhook processed",
		slog.String("session_id", session.ID),
		slog.String("order_reference", order.InternalReference),
		slog.Bool("order_inserted", inserted),
	)

	return nil
}

// materializeOrder builds the order from the pending-order row referenced in
// session metadata, falling back to the metadata bag itself for sessions
// created before the pending-order flow existed.
func (s *OrderService) materializeOrder(ctx context.Context, session *webhook.SessionObject) *domain.Order {
	order := &domain.Order{
		ID:                uuid.New().String(),
		InternalReference: newOrderReference(),
		CheckoutSessionID: session.ID,
		Customer:          domain.Customer{Email: session.CustomerEmail},
		TotalCents:        session.AmountTotal,
		SubtotalCents:     session.AmountTotal,
		PaymentMethod:     "stripe",
		CreatedAt:         time.Now().UTC(),
	}

	if pendingID := session.Metadata["pending_order_id"]; pendingID != "" {
		pending, err := s.pendingOrders.GetByID(ctx, pendingID)
		if err != nil {
			s.logger.WarnContext(ctx, "pending order not resolvable, using metadata fallback",
				slog.String("pending_order_id", pendingID),
				slog.String("error", err.Error()),
			)
		} else {
			order.Customer = pending.Customer
			order.ShippingAddress = pending.ShippingAddress
			order.ShippingService = pending.ShippingService
			order.SubtotalCents = pending.SubtotalCents
			order.ShippingCents = pending.ShippingService.CostCents
			order.TotalCents = pending.TotalCents

			if err := s.pendingOrders.MarkCompleted(ctx, pendingID); err != nil {
				s.logger.WarnContext(ctx, "failed to mark pending order completed",
					slog.String("pending_order_id", pendingID),
					slog.String("error", err.Error()),
				)
			}
			return order
		}
	}

	applyMetadataFallback(order, session.Metadata)
	return order
}

// applyMetadataFallback fills order fields from the legacy metadata bag.
func applyMetadataFallback(order *domain.Order, metadata map[string]string) {
	if email := metadata["customer_email"]; email != "" && order.Customer.Email == "" {
		order.Customer.Email = email
	}
	order.Customer.FirstName = metadata["customer_first_name"]
	order.Customer.LastName = metadata["customer_last_name"]
	order.Customer.Phone = metadata["customer_phone"]
	order.ShippingAddress = domain.ShippingAddress{
		Country:  metadata["shipping_country"],
		Postcode: metadata["shipping_postcode"],
		Town:     metadata["shipping_town"],
		Address:  metadata["shipping_address"],
	}
	order.ShippingService.Name = metadata["shipping_service"]
}

// dispatchEmails sends the customer confirmation and the internal sales
// notification at most once per session. Failures release the claim and
// propagate so the provider redelivers.
func (s *OrderService) dispatchEmails(ctx context.Context, order *domain.Order) error {
	claimed, err := s.ledger.Claim(ctx, order.CheckoutSessionID)
	if err != nil {
		return fmt.Errorf("claim email ledger: %w", err)
	}
	if !claimed {
		s.logger.InfoContext(ctx, "emails already dispatched for session",
			slog.String("session_id", order.CheckoutSessionID),
		)
		return nil
	}

	if err := s.sendOrderEmails(ctx, order); err != nil {
		if relErr := s.ledger.Release(ctx, order.CheckoutSessionID); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to release email ledger claim",
				slog.String("session_id", order.CheckoutSessionID),
				slog.String("error", relErr.Error()),
			)
		}
		return err
	}
	return nil
}

func (s *OrderService) sendOrderEmails(ctx context.Context, order *domain.Order) error {
	if emailPattern.MatchString(order.Customer.Email) {
		html, err := mailer.ConfirmationHTML(order)
		if err != nil {
			return err
		}
		err = s.mailer.Send(ctx, &mailer.Message{
			From:    s.mail.FromAddress,
			To:      order.Customer.Email,
			Subject: fmt.Sprintf("Confirmación de pedido %s", order.InternalReference),
			HTML:    html,
		})
		if err != nil {
			return fmt.Errorf("send confirmation email: %w", err)
		}
	} else {
		s.logger.WarnContext(ctx, "skipping confirmation email, no valid customer email",
			slog.String("session_id", order.CheckoutSessionID),
		)
	}

	html, err := mailer.SalesNotificationHTML(order)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, &mailer.Message{
		From:    s.mail.FromAddress,
		To:      s.mail.SalesAddress,
		Subject: fmt.Sprintf("Nuevo pedido %s", order.InternalReference),
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("send sales notification email: %w", err)
	}
	return nil
}

// LookupOrder returns the client-facing snapshot for a checkout session,
// reading the fast lookup store first and the order table as fallback.
func (s *OrderService) LookupOrder(ctx context.Context, sessionID string) (*domain.OrderSnapshot, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session_id is required")
	}

	snapshot, err := s.lookups.Get(ctx, sessionID)
	if err == nil {
		return snapshot, nil
	}

	order, repoErr := s.orders.GetBySessionID(ctx, sessionID)
	if repoErr != nil {
		return nil, err
	}
	fallback := order.Snapshot()
	return &fallback, nil
}

// newOrderReference generates a human-readable order reference.
func newOrderReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("EB-%s-%s", time.Now().UTC().Format("2006"), id[:8])
}
