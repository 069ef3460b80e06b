package service

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/cache"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	deliveryWindow    = 48 * time.Hour
	backgroundTimeout = 15 * time.Second
	msgOrderNotFound  = "order not found"
	msgDeleteNotFound = "Order not found"
	msgAccessDenied   = "Access denied"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID, idempotencyKey string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*dto.OrderResponse, error)
	ListCustomerOrders(ctx context.Context, userID string) (*dto.OrderListResponse, error)
	ListAllOrders(ctx context.Context) (*dto.OrderListResponse, error)
	GetOrder(ctx context.Context, userID, orderID, email string) (*dto.OrderResponse, error)
	UpdateOrderAsAdmin(ctx context.Context, orderID string, patch *dto.AdminOrderPatch) (*dto.OrderActionResponse, error)
	UpdateOrderAsCustomer(ctx context.Context, userID, orderID string, patch *dto.CustomerOrderPatch) (*dto.OrderResponse, error)
	DeleteOrderAsAdmin(ctx context.Context, orderID string) (*dto.OrderActionResponse, error)
	DeleteOrderAsCustomer(ctx context.Context, userID, orderID string) (*dto.OrderActionResponse, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	gateway     client.CheckoutGateway
	orderRepo   repository.OrderRepository
	publisher   client.EventPublisher
	idempotency cache.IdempotencyStore
	mailer      client.Mailer
	frontendURL string
	currency    string
	now         func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	gateway client.CheckoutGateway,
	orderRepo repository.OrderRepository,
	publisher client.EventPublisher,
	idempotency cache.IdempotencyStore,
	mailer client.Mailer,
	frontendURL string,
	currency string,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		gateway:     gateway,
		orderRepo:   orderRepo,
		publisher:   publisher,
		idempotency: idempotency,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		currency:    currency,
		now:         time.Now,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID, idempotencyKey string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, validationError("Invalid or empty items array")
	}

	if idempotencyKey == "" {
		return s.placeOrder(ctx, userID, req)
	}

	// keys are per customer
	key := userID + ":" + idempotencyKey
	fresh, err := s.idempotency.Acquire(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if !fresh {
		return nil, conflictError("duplicate order submission")
	}

	resp, err := s.placeOrder(ctx, userID, req)
	if err != nil {
		// nothing was stored, so the client may retry with the same key
		if relErr := s.idempotency.Release(ctx, key); relErr != nil {
			log.Warn().Err(relErr).Str("user_id", userID).Msg("failed to release idempotency key")
		}
		return nil, err
	}
	return resp, nil
}

func (s *orderServiceImpl) placeOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	orderID := uuid.NewString()
	lines := buildOrderLines(orderID, req.Items)

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = model.PaymentMethodCOD
	}

	order := &model.Order{
		ID:            orderID,
		UserID:        userID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		City:          req.City,
		ZipCode:       req.ZipCode,
		Subtotal:      req.Subtotal.Float64(),
		Tax:           req.Tax.Float64(),
		Shipping:      0,
		Total:         req.Total.Float64(),
		PaymentMethod: paymentMethod,
		Status:        model.OrderStatusPending,
	}

	var checkoutURL *string
	if paymentMethod == model.PaymentMethodOnline {
		sess, err := s.gateway.CreateCheckoutSession(ctx, s.checkoutRequest(req, lines))
		if err != nil {
			return nil, fmt.Errorf("create checkout session: %w", err)
		}
		order.SessionID = sess.ID
		order.PaymentIntentID = sess.PaymentIntentID
		order.PaymentStatus = model.PaymentStatusPending
		checkoutURL = &sess.URL
	} else {
		order.PaymentStatus = model.PaymentStatusSucceeded
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		if err := s.orderRepo.CreateLines(ctx, tx, lines); err != nil {
			return fmt.Errorf("store order lines in db: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Lines = make([]model.OrderLine, len(lines))
	for i, line := range lines {
		order.Lines[i] = *line
	}

	s.publish(ctx, client.OrderEventCreated, order)
	s.sendConfirmation(ctx, order)

	return &dto.CreateOrderResponse{
		Order:       dto.NewOrderResponse(order, false),
		CheckoutURL: checkoutURL,
	}, nil
}

// buildOrderLines snapshots the cart. Nested item fields win over flat ones.
func buildOrderLines(orderID string, items dto.OrderItems) []*model.OrderLine {
	lines := make([]*model.OrderLine, 0, len(items))
	for i, entry := range items {
		base := entry.Item
		if base == nil {
			base = &dto.ItemInput{}
		}

		name := firstNonEmpty(base.Name, entry.Name, "unknown")
		imageURL := firstNonEmpty(base.ImageURL, entry.ImageURL, "")

		var price float64
		switch {
		case base.Price != nil:
			price = base.Price.Float64()
		case entry.Price != nil:
			price = entry.Price.Float64()
		}

		lines = append(lines, &model.OrderLine{
			OrderID:  orderID,
			Position: i,
			Item: model.ItemSnapshot{
				Name:     name,
				Price:    price,
				ImageURL: imageURL,
			},
			Quantity: entry.Quantity.Int(),
		})
	}
	return lines
}

func (s *orderServiceImpl) checkoutRequest(req *dto.CreateOrderRequest, lines []*model.OrderLine) *client.CheckoutSessionRequest {
	lineItems := make([]client.CheckoutLineItem, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, client.CheckoutLineItem{
			Name:       line.Item.Name,
			UnitAmount: toMinorUnits(line.Item.Price),
			Quantity:   int64(line.Quantity),
		})
	}

	return &client.CheckoutSessionRequest{
		Currency:      s.currency,
		LineItems:     lineItems,
		CustomerEmail: req.Email,
		SuccessURL:    s.frontendURL + "/myorder/verify?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.frontendURL + "/checkout?payment_status=cancel",
		Metadata: map[string]string{
			"firstName": req.FirstName,
			"lastName":  req.LastName,
			"email":     req.Email,
			"phone":     req.Phone,
		},
	}
}

func toMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *orderServiceImpl) ConfirmPayment(ctx context.Context, sessionID string) (*dto.OrderResponse, error) {
	if sessionID == "" {
		return nil, validationError("session_id is required")
	}

	sess, err := s.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if !sess.Paid {
		return nil, stateError("payment not completed")
	}

	order, err := s.orderRepo.FindBySessionID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find order by session: %w", err)
	}

	fields := map[string]interface{}{
		"payment_status": model.PaymentStatusSucceeded,
		"updated_at":     s.now(),
	}
	if sess.PaymentIntentID != "" {
		fields["payment_intent_id"] = sess.PaymentIntentID
	}
	if err := s.orderRepo.Update(ctx, nil, order.ID, fields); err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	order, err = s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}

	s.publish(ctx, client.OrderEventPaymentConfirmed, order)

	return dto.NewOrderResponse(order, false), nil
}

func (s *orderServiceImpl) ListCustomerOrders(ctx context.Context, userID string) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	log.Debug().Str("user_id", userID).Int("count", len(orders)).Msg("listed customer orders")

	return newOrderList(orders, false), nil
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListForAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	log.Debug().Int("count", len(orders)).Msg("listed admin orders")

	return newOrderList(orders, true), nil
}

func newOrderList(orders []*model.Order, legacyAddress bool) *dto.OrderListResponse {
	resp := &dto.OrderListResponse{
		Success: true,
		Orders:  make([]*dto.OrderResponse, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o, legacyAddress))
	}
	resp.Count = len(resp.Orders)
	return resp
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID, email string) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID, msgOrderNotFound)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, forbiddenError(msgAccessDenied)
	}
	if email != "" && order.Email != email {
		return nil, forbiddenError(msgAccessDenied)
	}

	return dto.NewOrderResponse(order, false), nil
}

func (s *orderServiceImpl) UpdateOrderAsAdmin(ctx context.Context, orderID string, patch *dto.AdminOrderPatch) (*dto.OrderActionResponse, error) {
	order, err := s.findOrder(ctx, orderID, msgOrderNotFound)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields := contactFields(patch.FirstName, patch.LastName, patch.Phone, patch.Email, patch.Address, patch.City, patch.ZipCode)

	setNumber(fields, "subtotal", patch.Subtotal)
	setNumber(fields, "tax", patch.Tax)
	setNumber(fields, "shipping", patch.Shipping)
	setNumber(fields, "total", patch.Total)

	if patch.PaymentStatus != nil {
		ps := model.PaymentStatus(*patch.PaymentStatus)
		if ps != model.PaymentStatusPending && ps != model.PaymentStatusSucceeded {
			return nil, validationError("invalid payment status %q", *patch.PaymentStatus)
		}
		fields["payment_status"] = ps
	}

	if patch.ExpectedDelivery != nil {
		fields["expected_delivery"] = *patch.ExpectedDelivery
	}
	if patch.DeliveredAt != nil {
		fields["delivered_at"] = *patch.DeliveredAt
	}

	if patch.Status != nil {
		next := model.OrderStatus(*patch.Status)
		if err := s.applyStatus(order, next, fields, now); err != nil {
			return nil, err
		}
	}

	updated, err := s.saveOrder(ctx, order.ID, fields, now)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, client.OrderEventUpdated, updated)

	return &dto.OrderActionResponse{
		Success: true,
		Message: "Order updated successfully",
		Order:   dto.NewOrderResponse(updated, false),
	}, nil
}

func (s *orderServiceImpl) UpdateOrderAsCustomer(ctx context.Context, userID, orderID string, patch *dto.CustomerOrderPatch) (*dto.OrderResponse, error) {
	order, err := s.findOrder(ctx, orderID, msgOrderNotFound)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, forbiddenError(msgAccessDenied)
	}
	if patch.Email != nil && *patch.Email != "" && order.Email != *patch.Email {
		return nil, forbiddenError(msgAccessDenied)
	}

	now := s.now()
	// email only identifies the order here; it is never rewritten by the owner
	fields := contactFields(patch.FirstName, patch.LastName, patch.Phone, nil, patch.Address, patch.City, patch.ZipCode)

	current := currentStatus(order)
	if len(fields) > 0 && (current == model.OrderStatusOutForDelivery || current.Finished()) {
		return nil, stateError("order details can no longer be changed")
	}

	if patch.Status != nil {
		next := model.OrderStatus(*patch.Status)
		if next != model.OrderStatusCancelled {
			return nil, forbiddenError("customers can only cancel an order")
		}
		if err := s.applyStatus(order, next, fields, now); err != nil {
			return nil, err
		}
	}

	updated, err := s.saveOrder(ctx, order.ID, fields, now)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, client.OrderEventUpdated, updated)

	return dto.NewOrderResponse(updated, false), nil
}

// applyStatus validates the transition and stamps delivery times that were not supplied.
func (s *orderServiceImpl) applyStatus(order *model.Order, next model.OrderStatus, fields map[string]interface{}, now time.Time) error {
	current := currentStatus(order)
	if err := model.ValidateStatusTransition(current, next); err != nil {
		return stateError("%s", err.Error())
	}
	fields["status"] = next

	// re-sending a status re-stamps it too
	switch next {
	case model.OrderStatusDelivered:
		if _, supplied := fields["delivered_at"]; !supplied {
			fields["delivered_at"] = now
		}
	case model.OrderStatusOutForDelivery:
		if _, supplied := fields["expected_delivery"]; !supplied {
			fields["expected_delivery"] = now.Add(deliveryWindow)
		}
	}
	return nil
}

func (s *orderServiceImpl) DeleteOrderAsAdmin(ctx context.Context, orderID string) (*dto.OrderActionResponse, error) {
	order, err := s.findOrder(ctx, orderID, msgDeleteNotFound)
	if err != nil {
		return nil, err
	}

	if !currentStatus(order).Finished() {
		return nil, stateError("Only completed or cancelled orders can be deleted")
	}
	if order.DeletedByAdmin {
		return nil, stateError("Order already deleted by admin")
	}

	now := s.now()
	updated, err := s.saveOrder(ctx, order.ID, map[string]interface{}{
		"deleted_by_admin": true,
		"admin_deleted_at": now,
	}, now)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, client.OrderEventDeleted, updated)

	return &dto.OrderActionResponse{
		Success: true,
		Message: "Order deleted successfully from admin panel",
		Order:   dto.NewOrderResponse(updated, false),
	}, nil
}

func (s *orderServiceImpl) DeleteOrderAsCustomer(ctx context.Context, userID, orderID string) (*dto.OrderActionResponse, error) {
	order, err := s.findOrder(ctx, orderID, msgDeleteNotFound)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, forbiddenError(msgAccessDenied)
	}
	if !currentStatus(order).Finished() {
		return nil, stateError("Only completed or cancelled orders can be deleted")
	}
	if order.DeletedByCustomer {
		return nil, stateError("Order already deleted from your history")
	}

	now := s.now()
	updated, err := s.saveOrder(ctx, order.ID, map[string]interface{}{
		"deleted_by_customer": true,
		"customer_deleted_at": now,
	}, now)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, client.OrderEventDeleted, updated)

	return &dto.OrderActionResponse{
		Success: true,
		Message: "Order deleted successfully from your order history",
		Order:   dto.NewOrderResponse(updated, false),
	}, nil
}

func (s *orderServiceImpl) findOrder(ctx context.Context, orderID, notFoundMsg string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("%s", notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) saveOrder(ctx context.Context, orderID string, fields map[string]interface{}, now time.Time) (*model.Order, error) {
	fields["updated_at"] = now
	if err := s.orderRepo.Update(ctx, nil, orderID, fields); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	updated, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	return updated, nil
}

func (s *orderServiceImpl) publish(ctx context.Context, eventType string, order *model.Order) {
	publishOrderEvent(ctx, s.publisher, eventType, order, s.now())
}

func publishOrderEvent(ctx context.Context, publisher client.EventPublisher, eventType string, order *model.Order, at time.Time) {
	event := &client.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        string(currentStatus(order)),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		OccurredAt:    at,
	}
	if err := publisher.PublishOrderEvent(ctx, event); err != nil {
		log.Error().Err(err).
			Str("order_id", order.ID).
			Str("event", eventType).
			Msg("failed to publish order event")
	}
}

func (s *orderServiceImpl) sendConfirmation(ctx context.Context, order *model.Order) {
	if order.Email == "" {
		return
	}

	total := decimal.NewFromFloat(order.Total).StringFixed(2)
	mail := &client.Mail{
		To:      order.Email,
		Subject: fmt.Sprintf("Order %s received", order.ID),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nThanks for your order %s.\nTotal: %s %s\nPayment: %s (%s)\n\nWe will let you know when it is on its way.",
			order.FirstName, order.ID, strings.ToUpper(s.currency), total, order.PaymentMethod, order.PaymentStatus,
		),
	}

	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), backgroundTimeout)
	go func() {
		defer cancel()
		if err := s.mailer.Send(bgCtx, mail); err != nil {
			log.Error().Err(err).Str("order_id", order.ID).Msg("failed to send order confirmation")
		}
	}()
}

func currentStatus(order *model.Order) model.OrderStatus {
	if order.Status == "" {
		return model.OrderStatusPending
	}
	return order.Status
}

func contactFields(firstName, lastName, phone, email, address, city, zipCode *string) map[string]interface{} {
	fields := map[string]interface{}{}
	setString(fields, "first_name", firstName)
	setString(fields, "last_name", lastName)
	setString(fields, "phone", phone)
	setString(fields, "email", email)
	setString(fields, "address", address)
	setString(fields, "city", city)
	setString(fields, "zip_code", zipCode)
	return fields
}

func setString(fields map[string]interface{}, column string, v *string) {
	if v != nil {
		fields[column] = *v
	}
}

func setNumber(fields map[string]interface{}, column string, v *dto.Number) {
	if v != nil {
		fields[column] = v.Float64()
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
