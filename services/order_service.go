package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-backend/models"
	"storefront-backend/providers"
	"storefront-backend/repository"
)

const (
	// createIDAttempts bounds retries on a duplicate external order id.
	createIDAttempts = 3
	// mutateAttempts bounds retries after losing an optimistic-concurrency race.
	mutateAttempts = 3
	// autoShipmentTimeout bounds the best-effort shipment auto-creation.
	autoShipmentTimeout = 30 * time.Second
)

// OrderService owns the order state machine. Checkout requests, payment
// events and shipping events are folded into the order under per-order
// optimistic concurrency; every event handler computes the new status from
// (current status, event payload) and is safe to re-apply.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest, userID *primitive.ObjectID) (*models.Order, *ServiceError)
	ListOrders(ctx context.Context, userID *primitive.ObjectID, email string, all bool) ([]models.Order, *ServiceError)
	GetOrder(ctx context.Context, ref string, userID *primitive.ObjectID, email string) (*models.Order, *ServiceError)
	UpdateStatus(ctx context.Context, ref, status, notes string) (*models.Order, *ServiceError)
	UpdatePaymentDetails(ctx context.Context, ref string, req *models.UpdatePaymentDetailsRequest) (*models.Order, *ServiceError)

	// RecordPaymentSession persists gateway correlation ids onto the order
	// so a later webhook or verify call can find it.
	RecordPaymentSession(ctx context.Context, orderID, gatewayOrderID, sessionID string) *ServiceError

	// ApplyPaymentResult folds a verify-poll or webhook payment result into
	// the order. Idempotent; a stale failure never downgrades a completed
	// payment.
	ApplyPaymentResult(ctx context.Context, result *providers.PaymentResult) (*models.Order, *ServiceError)

	CreateShipment(ctx context.Context, ref string) (*models.Order, *providers.ShipmentRef, *ServiceError)
	TrackOrder(ctx context.Context, ref string, userID *primitive.ObjectID, email string) (*models.Order, *providers.TrackingResult, *ServiceError)
	CancelShipment(ctx context.Context, ref string) (*models.Order, *ServiceError)
	GetLabel(ctx context.Context, ref string) (*providers.LabelResult, *ServiceError)
	ListCouriers(ctx context.Context, pincode string) ([]providers.Courier, *ServiceError)

	// ApplyShippingUpdate folds a carrier webhook into the order. Idempotent;
	// terminal statuses absorb stale updates.
	ApplyShippingUpdate(ctx context.Context, event *providers.ShippingEvent) (*models.Order, *ServiceError)
}

type orderService struct {
	repo               repository.OrderRepository
	shipping           providers.ShippingProvider
	autoCreateShipment bool
	shippingCharge     float64
	logger             *zap.Logger
}

// NewOrderService creates an OrderService. When autoCreateShipment is set,
// transitions into confirmed/processing trigger a best-effort shipment
// creation in the background.
func NewOrderService(
	repo repository.OrderRepository,
	shipping providers.ShippingProvider,
	autoCreateShipment bool,
	shippingCharge float64,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		repo:               repo,
		shipping:           shipping,
		autoCreateShipment: autoCreateShipment,
		shippingCharge:     shippingCharge,
		logger:             logger,
	}
}

// GenerateOrderID builds the external order identifier: sortable by creation
// time, with enough random entropy that collisions are negligible. A store
// uniqueness violation is still retried with a fresh id.
func GenerateOrderID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

func (s *orderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, userID *primitive.ObjectID) (*models.Order, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, NewValidationError("order must have at least one item")
	}

	subtotal := 0.0
	for _, item := range req.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}

	shippingCharge := s.shippingCharge
	if req.ShippingCharge != nil {
		shippingCharge = *req.ShippingCharge
	}
	discount := 0.0
	if req.Discount != nil {
		discount = *req.Discount
	}

	// A supplied total is trusted input; it is validated for non-negativity
	// only, never recomputed later.
	total := subtotal + shippingCharge - discount
	if req.Total != nil {
		total = *req.Total
	}
	if total < 0 {
		return nil, NewValidationError("total must not be negative")
	}

	paymentDetails := models.PaymentDetails{PaymentStatus: models.PaymentStatusPending}
	if req.PaymentDetails != nil {
		paymentDetails = *req.PaymentDetails
		if paymentDetails.PaymentStatus == "" {
			paymentDetails.PaymentStatus = models.PaymentStatusPending
		}
	}

	status := models.OrderStatusPending
	if req.PaymentMethod == models.PaymentMethodCOD ||
		paymentDetails.PaymentStatus == models.PaymentStatusCompleted {
		status = models.OrderStatusConfirmed
	}

	order := &models.Order{
		Items:           req.Items,
		ShippingInfo:    req.ShippingInfo,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  paymentDetails,
		ShippingDetails: models.ShippingDetails{Status: models.ShipmentStatusPending},
		Subtotal:        subtotal,
		ShippingCharge:  shippingCharge,
		Discount:        discount,
		Coupon:          req.Coupon,
		Total:           total,
		Status:          status,
		UserID:          userID,
		UserEmail:       strings.ToLower(req.ShippingInfo.Email),
		Notes:           req.Notes,
	}

	var err error
	for attempt := 0; attempt < createIDAttempts; attempt++ {
		order.OrderID = GenerateOrderID()
		err = s.repo.Create(ctx, order)
		if err == nil {
			s.logger.Info("Order created",
				zap.String("order_id", order.OrderID),
				zap.String("status", order.Status),
				zap.String("user_email", order.UserEmail),
			)
			return order, nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderID) {
			break
		}
	}
	s.logger.Error("Failed to create order", zap.Error(err))
	return nil, NewInternalError("failed to create order", err)
}

func (s *orderService) ListOrders(ctx context.Context, userID *primitive.ObjectID, email string, all bool) ([]models.Order, *ServiceError) {
	if !all && userID == nil && email == "" {
		return nil, NewValidationError("either an authenticated user or an email is required")
	}
	orders, err := s.repo.FindByOwnerOrEmail(ctx, userID, email, all)
	if err != nil {
		return nil, NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, ref string, userID *primitive.ObjectID, email string) (*models.Order, *ServiceError) {
	order, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if !ownershipMatches(order, userID, email) {
		// Indistinguishable from a missing order so existence never leaks.
		return nil, NewNotFoundError("order not found")
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, ref, status, notes string) (*models.Order, *ServiceError) {
	if !models.IsValidOrderStatus(status) {
		return nil, NewValidationError("invalid order status: " + status)
	}

	order, svcErr := s.mutate(ctx, ref, func(o *models.Order) bool {
		if o.Status == status && o.Notes == notes {
			return false
		}
		o.Status = status
		o.Notes = notes
		return true
	})
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", order.OrderID),
		zap.String("status", status),
	)
	s.maybeAutoCreateShipment(order)
	return order, nil
}

func (s *orderService) UpdatePaymentDetails(ctx context.Context, ref string, req *models.UpdatePaymentDetailsRequest) (*models.Order, *ServiceError) {
	order, svcErr := s.mutate(ctx, ref, func(o *models.Order) bool {
		o.PaymentDetails = models.PaymentDetails{
			PaymentStatus:            req.PaymentStatus,
			CashfreeOrderID:          req.CashfreeOrderID,
			CashfreePaymentID:        req.CashfreePaymentID,
			CashfreePaymentStatus:    req.CashfreePaymentStatus,
			CashfreePaymentSessionID: req.CashfreePaymentSessionID,
		}
		if !models.IsTerminalStatus(o.Status) {
			if req.PaymentStatus == models.PaymentStatusCompleted {
				o.Status = models.OrderStatusConfirmed
			} else {
				o.Status = models.OrderStatusPending
			}
		}
		return true
	})
	if svcErr != nil {
		return nil, svcErr
	}
	s.maybeAutoCreateShipment(order)
	return order, nil
}

func (s *orderService) RecordPaymentSession(ctx context.Context, orderID, gatewayOrderID, sessionID string) *ServiceError {
	_, svcErr := s.mutate(ctx, orderID, func(o *models.Order) bool {
		if o.PaymentDetails.CashfreeOrderID == gatewayOrderID &&
			o.PaymentDetails.CashfreePaymentSessionID == sessionID {
			return false
		}
		o.PaymentDetails.CashfreeOrderID = gatewayOrderID
		o.PaymentDetails.CashfreePaymentSessionID = sessionID
		return true
	})
	return svcErr
}

func (s *orderService) ApplyPaymentResult(ctx context.Context, result *providers.PaymentResult) (*models.Order, *ServiceError) {
	order, svcErr := s.mutate(ctx, result.GatewayOrderID, func(o *models.Order) bool {
		return foldPaymentResult(o, result)
	})
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Payment result applied",
		zap.String("order_id", order.OrderID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("payment_status", order.PaymentDetails.PaymentStatus),
	)
	if result.Outcome == providers.PaymentOutcomeSuccess {
		s.maybeAutoCreateShipment(order)
	}
	return order, nil
}

func (s *orderService) CreateShipment(ctx context.Context, ref string) (*models.Order, *providers.ShipmentRef, *ServiceError) {
	order, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, nil, notFoundOrInternal(err)
	}
	if order.HasShipment() {
		return nil, nil, NewConflictError("shipment already created for this order")
	}

	shipment, provErr := s.shipping.CreateShipment(ctx, order)
	if provErr != nil {
		if errors.Is(provErr, providers.ErrMissingCredentials) {
			return nil, nil, NewConfigurationError("shipping provider is not configured", provErr)
		}
		s.logger.Error("Shipment creation failed", zap.String("order_id", order.OrderID), zap.Error(provErr))
		return nil, nil, NewUpstreamError("failed to create shipment", provErr)
	}

	updated, svcErr := s.persistShipment(ctx, order.OrderID, shipment)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	s.logger.Info("Shipment created",
		zap.String("order_id", updated.OrderID),
		zap.String("shipment_id", shipment.ShipmentID),
		zap.String("tracking_number", shipment.TrackingNumber),
	)
	return updated, shipment, nil
}

func (s *orderService) TrackOrder(ctx context.Context, ref string, userID *primitive.ObjectID, email string) (*models.Order, *providers.TrackingResult, *ServiceError) {
	order, svcErr := s.GetOrder(ctx, ref, userID, email)
	if svcErr != nil {
		return nil, nil, svcErr
	}

	trackingNumber := order.ShippingDetails.TrackingNumber
	if trackingNumber == "" {
		trackingNumber = order.ShippingDetails.AWBNumber
	}
	if trackingNumber == "" {
		return nil, nil, NewNotFoundError("no tracking number found for this order")
	}

	tracking, provErr := s.shipping.Track(ctx, trackingNumber)
	if provErr != nil {
		if errors.Is(provErr, providers.ErrMissingCredentials) {
			return nil, nil, NewConfigurationError("shipping provider is not configured", provErr)
		}
		return nil, nil, NewUpstreamError("failed to fetch tracking status", provErr)
	}

	updated, svcErr := s.mutate(ctx, order.OrderID, func(o *models.Order) bool {
		return foldShippingStatus(o, tracking.Status, tracking.EstimatedDeliveryDate, tracking.DeliveredDate, "tracking", tracking.Raw)
	})
	if svcErr != nil {
		return nil, nil, svcErr
	}
	return updated, tracking, nil
}

func (s *orderService) CancelShipment(ctx context.Context, ref string) (*models.Order, *ServiceError) {
	order, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if !order.HasShipment() {
		return nil, NewNotFoundError("no shipment found for this order")
	}

	if provErr := s.shipping.Cancel(ctx, order.ShippingDetails.ShipmentID); provErr != nil {
		if errors.Is(provErr, providers.ErrMissingCredentials) {
			return nil, NewConfigurationError("shipping provider is not configured", provErr)
		}
		return nil, NewUpstreamError("failed to cancel shipment", provErr)
	}

	updated, svcErr := s.mutate(ctx, order.OrderID, func(o *models.Order) bool {
		if o.ShippingDetails.Status == models.ShipmentStatusCancelled &&
			o.Status == models.OrderStatusCancelled {
			return false
		}
		o.ShippingDetails.Status = models.ShipmentStatusCancelled
		o.Status = models.OrderStatusCancelled
		return true
	})
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Shipment cancelled", zap.String("order_id", updated.OrderID))
	return updated, nil
}

func (s *orderService) GetLabel(ctx context.Context, ref string) (*providers.LabelResult, *ServiceError) {
	order, err := s.resolveRef(ctx, ref)
	if err != nil {
		return nil, notFoundOrInternal(err)
	}
	if !order.HasShipment() {
		return nil, NewNotFoundError("no shipment found for this order")
	}

	label, provErr := s.shipping.GetLabel(ctx, order.ShippingDetails.ShipmentID)
	if provErr != nil {
		if errors.Is(provErr, providers.ErrMissingCredentials) {
			return nil, NewConfigurationError("shipping provider is not configured", provErr)
		}
		return nil, NewUpstreamError("failed to get label", provErr)
	}

	if order.ShippingDetails.LabelURL == "" && label.LabelURL != "" {
		if _, svcErr := s.mutate(ctx, order.OrderID, func(o *models.Order) bool {
			if o.ShippingDetails.LabelURL != "" {
				return false
			}
			o.ShippingDetails.LabelURL = label.LabelURL
			return true
		}); svcErr != nil {
			s.logger.Warn("Failed to persist label URL", zap.String("order_id", order.OrderID), zap.Error(svcErr))
		}
	}
	return label, nil
}

func (s *orderService) ListCouriers(ctx context.Context, pincode string) ([]providers.Courier, *ServiceError) {
	couriers, err := s.shipping.ListServiceableCouriers(ctx, pincode)
	if err != nil {
		if errors.Is(err, providers.ErrMissingCredentials) {
			return nil, NewConfigurationError("shipping provider is not configured", err)
		}
		return nil, NewUpstreamError("failed to get available couriers", err)
	}
	return couriers, nil
}

func (s *orderService) ApplyShippingUpdate(ctx context.Context, event *providers.ShippingEvent) (*models.Order, *ServiceError) {
	ref := event.OrderRef
	if ref == "" {
		order, err := s.repo.FindByTrackingNumber(ctx, event.TrackingNumber)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}
		ref = order.OrderID
	}

	order, svcErr := s.mutate(ctx, ref, func(o *models.Order) bool {
		return foldShippingStatus(o, event.Status, event.EstimatedDeliveryDate, event.DeliveredDate, "webhook", event.Raw)
	})
	if svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Shipping update applied",
		zap.String("order_id", order.OrderID),
		zap.String("carrier_status", event.CarrierStatus),
		zap.String("shipment_status", order.ShippingDetails.Status),
		zap.String("order_status", order.Status),
	)
	return order, nil
}

// ---- state machine folds ----

// foldPaymentResult folds a payment result into the order. It mutates o and
// reports whether anything changed. Success confirms only from pending;
// failure is recorded only while no confirmation has landed, so a stale
// failed event never downgrades a completed payment. Terminal order statuses
// absorb everything.
func foldPaymentResult(o *models.Order, res *providers.PaymentResult) bool {
	before := *o

	if res.GatewayOrderID != "" {
		o.PaymentDetails.CashfreeOrderID = res.GatewayOrderID
	}
	if res.GatewayPaymentID != "" {
		o.PaymentDetails.CashfreePaymentID = res.GatewayPaymentID
	}
	if res.RawStatus != "" {
		o.PaymentDetails.CashfreePaymentStatus = res.RawStatus
	}

	switch res.Outcome {
	case providers.PaymentOutcomeSuccess:
		o.PaymentDetails.PaymentStatus = models.PaymentStatusCompleted
		if o.Status == models.OrderStatusPending {
			o.Status = models.OrderStatusConfirmed
		}
	case providers.PaymentOutcomeFailed:
		if o.PaymentDetails.PaymentStatus != models.PaymentStatusCompleted {
			o.PaymentDetails.PaymentStatus = models.PaymentStatusFailed
		}
	}

	return before.Status != o.Status || before.PaymentDetails != o.PaymentDetails
}

// foldShippingStatus folds a mapped carrier status into the order. Terminal
// order statuses absorb the event entirely, which keeps a stale "in_transit"
// from ever overwriting "delivered".
func foldShippingStatus(o *models.Order, status string, estimated, delivered *time.Time, source string, raw map[string]interface{}) bool {
	if models.IsTerminalStatus(o.Status) {
		return false
	}
	if status == "" {
		return false
	}

	changed := o.ShippingDetails.Status != status
	o.ShippingDetails.Status = status
	if estimated != nil {
		changed = changed || o.ShippingDetails.EstimatedDeliveryDate == nil || !o.ShippingDetails.EstimatedDeliveryDate.Equal(*estimated)
		o.ShippingDetails.EstimatedDeliveryDate = estimated
	}
	if delivered != nil {
		changed = changed || o.ShippingDetails.DeliveredDate == nil || !o.ShippingDetails.DeliveredDate.Equal(*delivered)
		o.ShippingDetails.DeliveredDate = delivered
	}

	switch status {
	case models.ShipmentStatusDelivered:
		if o.Status != models.OrderStatusDelivered {
			o.Status = models.OrderStatusDelivered
			changed = true
		}
	case models.ShipmentStatusInTransit, models.ShipmentStatusOutForDelivery:
		if o.Status != models.OrderStatusShipped {
			o.Status = models.OrderStatusShipped
			changed = true
		}
	case models.ShipmentStatusCancelled, models.ShipmentStatusFailed:
		if o.Status != models.OrderStatusCancelled {
			o.Status = models.OrderStatusCancelled
			changed = true
		}
	}

	if changed && raw != nil {
		if o.ShippingDetails.ShipwayData == nil {
			o.ShippingDetails.ShipwayData = map[string]interface{}{}
		}
		o.ShippingDetails.ShipwayData[source] = raw
	}
	return changed
}

// ---- auto-shipment ----

// maybeAutoCreateShipment starts a best-effort background shipment creation
// when the policy is enabled, the order just reached confirmed/processing,
// and no shipment exists. Failure never affects the triggering operation.
func (s *orderService) maybeAutoCreateShipment(order *models.Order) {
	if !s.autoCreateShipment || s.shipping == nil {
		return
	}
	if order.Status != models.OrderStatusConfirmed && order.Status != models.OrderStatusProcessing {
		return
	}
	if order.HasShipment() {
		return
	}

	orderID := order.OrderID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoShipmentTimeout)
		defer cancel()

		// Re-read: the trigger may have raced with a manual creation.
		fresh, err := s.repo.FindByOrderID(ctx, orderID)
		if err != nil {
			s.logger.Warn("Auto-shipment: order lookup failed", zap.String("order_id", orderID), zap.Error(err))
			return
		}
		if fresh.HasShipment() {
			return
		}

		shipment, err := s.shipping.CreateShipment(ctx, fresh)
		if err != nil {
			s.logger.Warn("Auto-shipment creation failed, left for retry",
				zap.String("order_id", orderID),
				zap.Error(err),
			)
			return
		}

		if _, svcErr := s.persistShipment(ctx, orderID, shipment); svcErr != nil {
			s.logger.Error("Auto-shipment: failed to persist shipment, duplicate possible at carrier",
				zap.String("order_id", orderID),
				zap.String("shipment_id", shipment.ShipmentID),
				zap.Error(svcErr),
			)
			return
		}
		s.logger.Info("Auto-created shipment",
			zap.String("order_id", orderID),
			zap.String("shipment_id", shipment.ShipmentID),
		)
	}()
}

// persistShipment records provider correlation ids on the order, re-checking
// the shipment-not-yet-created guard immediately before the write. If another
// writer attached a shipment first, the new one is left to operators rather
// than silently overwritten.
func (s *orderService) persistShipment(ctx context.Context, orderID string, shipment *providers.ShipmentRef) (*models.Order, *ServiceError) {
	raced := false
	order, svcErr := s.mutate(ctx, orderID, func(o *models.Order) bool {
		if o.HasShipment() {
			raced = true
			return false
		}
		o.ShippingDetails = models.ShippingDetails{
			ShipmentID:            shipment.ShipmentID,
			TrackingNumber:        shipment.TrackingNumber,
			AWBNumber:             shipment.AWBNumber,
			CourierName:           shipment.CourierName,
			CourierTrackingURL:    shipment.CourierTrackingURL,
			LabelURL:              shipment.LabelURL,
			ManifestURL:           shipment.ManifestURL,
			Status:                shipment.Status,
			EstimatedDeliveryDate: shipment.EstimatedDeliveryDate,
			ShipwayData:           shipment.Raw,
		}
		if o.Status == models.OrderStatusConfirmed {
			o.Status = models.OrderStatusProcessing
		}
		return true
	})
	if raced {
		s.logger.Warn("Shipment already attached to order, newly created shipment needs operator attention",
			zap.String("order_id", orderID),
			zap.String("shipment_id", shipment.ShipmentID),
		)
	}
	return order, svcErr
}

// ---- lookup and concurrency helpers ----

// resolveRef resolves an order reference: identifiers in the external format
// go through the order_id field, everything else through the internal key.
func (s *orderService) resolveRef(ctx context.Context, ref string) (*models.Order, error) {
	if strings.Contains(ref, "ORD-") {
		return s.repo.FindByOrderID(ctx, ref)
	}
	id, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// ownershipMatches enforces the lookup policy for non-administrative
// callers: the authenticated user or the supplied email must match.
func ownershipMatches(order *models.Order, userID *primitive.ObjectID, email string) bool {
	if userID != nil {
		return order.UserID != nil && *order.UserID == *userID
	}
	if email != "" {
		return strings.EqualFold(order.UserEmail, email)
	}
	// Administrative resolution without a caller identity.
	return true
}

// mutate runs a read-modify-write cycle under per-order serialization: read
// the current record, apply the fold, and write back conditioned on the
// version being unchanged. A lost race retries from a fresh read because the
// transition table is not commutative.
func (s *orderService) mutate(ctx context.Context, ref string, apply func(o *models.Order) bool) (*models.Order, *ServiceError) {
	for attempt := 0; attempt < mutateAttempts; attempt++ {
		order, err := s.resolveRef(ctx, ref)
		if err != nil {
			return nil, notFoundOrInternal(err)
		}

		if !apply(order) {
			return order, nil
		}

		set := bson.M{
			"status":           order.Status,
			"notes":            order.Notes,
			"payment_details":  order.PaymentDetails,
			"shipping_details": order.ShippingDetails,
		}
		err = s.repo.UpdateWithVersion(ctx, order.ID, order.Version, set)
		if err == nil {
			// Single consistent post-write confirmation: one re-read of the
			// committed document.
			fresh, readErr := s.repo.FindByID(ctx, order.ID)
			if readErr != nil {
				return nil, notFoundOrInternal(readErr)
			}
			return fresh, nil
		}
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		return nil, notFoundOrInternal(err)
	}
	return nil, NewConflictError("order was modified concurrently, please retry")
}

func notFoundOrInternal(err error) *ServiceError {
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFoundError("order not found")
	}
	return NewInternalError("order store failure", err)
}
