package service

import (
	"context"
	"encoding/json"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type orderFixture struct {
	db          *gorm.DB
	svc         *orderServiceImpl
	gateway     *fakeGateway
	publisher   *fakePublisher
	mailer      *fakeMailer
	idempotency *fakeIdempotency
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := newTestDB(t)
	f := &orderFixture{
		db:          db,
		gateway:     newFakeGateway(),
		publisher:   &fakePublisher{},
		mailer:      &fakeMailer{},
		idempotency: &fakeIdempotency{},
	}

	svc := NewOrderService(
		db,
		f.gateway,
		repository.NewOrderRepository(db),
		f.publisher,
		f.idempotency,
		f.mailer,
		"http://localhost:5173/",
		"inr",
	).(*orderServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc

	return f
}

// seedOrder stores an order directly, bypassing checkout.
func (f *orderFixture) seedOrder(t *testing.T, mutate func(o *model.Order)) *model.Order {
	t.Helper()

	order := &model.Order{
		ID:            uuid.NewString(),
		UserID:        "user-1",
		FirstName:     "Asha",
		LastName:      "Rao",
		Email:         "asha@example.com",
		Phone:         "9999999999",
		Address:       "1 MG Road",
		City:          "Bengaluru",
		ZipCode:       "560001",
		PaymentMethod: model.PaymentMethodCOD,
		PaymentStatus: model.PaymentStatusSucceeded,
		Status:        model.OrderStatusPending,
		Subtotal:      200,
		Total:         200,
		CreatedAt:     fixedNow.Add(-time.Hour),
		Lines: []model.OrderLine{
			{Position: 0, Item: model.ItemSnapshot{Name: "Paneer Tikka", Price: 200}, Quantity: 1},
		},
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

func (f *orderFixture) reload(t *testing.T, id string) *model.Order {
	t.Helper()

	var order model.Order
	require.NoError(t, f.db.Where("id = ?", id).First(&order).Error)
	return &order
}

func (f *orderFixture) countOrders(t *testing.T) int64 {
	t.Helper()

	var n int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&n).Error)
	return n
}

func decodeOrderRequest(t *testing.T, raw string) *dto.CreateOrderRequest {
	t.Helper()

	var req dto.CreateOrderRequest
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	return &req
}

func strPtr(s string) *string { return &s }

func TestCreateOrder_RejectsEmptyItems(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	for _, raw := range []string{
		`{"paymentMethod":"online","items":[]}`,
		`{"paymentMethod":"online"}`,
		`{"paymentMethod":"online","items":"pizza"}`,
	} {
		_, err := f.svc.CreateOrder(ctx, "user-1", "", decodeOrderRequest(t, raw))
		requireDomainError(t, err, KindValidation, "Invalid or empty items array")
	}

	assert.Equal(t, int64(0), f.countOrders(t))
	assert.Equal(t, 0, f.gateway.requestCount())
	assert.Empty(t, f.publisher.types())
}

func TestCreateOrder_CashOnDelivery(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	req := decodeOrderRequest(t, `{
		"firstName": "Asha",
		"email": "asha@example.com",
		"paymentMethod": "cod",
		"subtotal": "250",
		"tax": 12.5,
		"total": 262.5,
		"items": [{"item": {"name": "Biryani", "price": 125}, "quantity": 2}]
	}`)

	resp, err := f.svc.CreateOrder(ctx, "user-1", "", req)
	require.NoError(t, err)

	assert.Nil(t, resp.CheckoutURL)
	assert.Equal(t, model.PaymentStatusSucceeded, resp.Order.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, "user-1", resp.Order.User)
	assert.Equal(t, 250.0, resp.Order.Subtotal)
	assert.Equal(t, 0.0, resp.Order.Shipping)
	assert.Empty(t, resp.Order.SessionID)
	assert.Equal(t, 0, f.gateway.requestCount())

	stored := f.reload(t, resp.Order.ID)
	assert.Equal(t, model.PaymentStatusSucceeded, stored.PaymentStatus)
	assert.Equal(t, 262.5, stored.Total)

	var lines []model.OrderLine
	require.NoError(t, f.db.Where("order_id = ?", resp.Order.ID).Find(&lines).Error)
	require.Len(t, lines, 1)
	assert.Equal(t, "Biryani", lines[0].Item.Name)
	assert.Equal(t, 2, lines[0].Quantity)

	assert.Equal(t, []string{client.OrderEventCreated}, f.publisher.types())
	assert.Eventually(t, func() bool { return f.mailer.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "asha@example.com", f.mailer.last().To)
}

func TestCreateOrder_DefaultsToCashOnDelivery(t *testing.T) {
	f := newOrderFixture(t)

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", "", decodeOrderRequest(t, `{
		"items": [{"name": "Dosa", "price": 80, "quantity": 1}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, model.PaymentMethodCOD, resp.Order.PaymentMethod)
	assert.Equal(t, model.PaymentStatusSucceeded, resp.Order.PaymentStatus)
}

func TestCreateOrder_Online(t *testing.T) {
	f := newOrderFixture(t)

	req := decodeOrderRequest(t, `{
		"firstName": "Asha",
		"lastName": "Rao",
		"phone": "9999999999",
		"email": "asha@example.com",
		"paymentMethod": "online",
		"total": 419.98,
		"items": [
			{"item": {"name": "Thali", "price": "199.99"}, "quantity": 2},
			{"name": "Lassi", "price": 20, "quantity": "1"}
		]
	}`)

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", "", req)
	require.NoError(t, err)

	require.NotNil(t, resp.CheckoutURL)
	assert.Equal(t, "https://checkout.test/cs_test_1", *resp.CheckoutURL)
	assert.Equal(t, model.PaymentStatusPending, resp.Order.PaymentStatus)
	assert.Equal(t, "cs_test_1", resp.Order.SessionID)

	stored := f.reload(t, resp.Order.ID)
	assert.Equal(t, "cs_test_1", stored.SessionID)
	assert.Equal(t, model.PaymentStatusPending, stored.PaymentStatus)

	require.Equal(t, 1, f.gateway.requestCount())
	sent := f.gateway.requests[0]
	assert.Equal(t, "inr", sent.Currency)
	assert.Equal(t, "asha@example.com", sent.CustomerEmail)
	assert.Equal(t, "http://localhost:5173/myorder/verify?success=true&session_id={CHECKOUT_SESSION_ID}", sent.SuccessURL)
	assert.Equal(t, "http://localhost:5173/checkout?payment_status=cancel", sent.CancelURL)
	assert.Equal(t, "Rao", sent.Metadata["lastName"])
	assert.Equal(t, []client.CheckoutLineItem{
		{Name: "Thali", UnitAmount: 19999, Quantity: 2},
		{Name: "Lassi", UnitAmount: 2000, Quantity: 1},
	}, sent.LineItems)
}

func TestCreateOrder_GatewayFailureStoresNothing(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.err = assert.AnError

	_, err := f.svc.CreateOrder(context.Background(), "user-1", "", decodeOrderRequest(t, `{
		"paymentMethod": "online",
		"items": [{"name": "Dosa", "price": 80, "quantity": 1}]
	}`))
	require.ErrorIs(t, err, assert.AnError)

	_, isDomain := AsError(err)
	assert.False(t, isDomain)
	assert.Equal(t, int64(0), f.countOrders(t))
}

func TestCreateOrder_NormalizesItems(t *testing.T) {
	f := newOrderFixture(t)

	resp, err := f.svc.CreateOrder(context.Background(), "user-1", "", decodeOrderRequest(t, `{
		"items": [
			{"item": {"name": "Nested", "price": 10, "imageUrl": "/uploads/a.png"}, "name": "Flat", "price": 99, "quantity": 1},
			{"quantity": 2.7},
			{"name": "Bad price", "price": "abc", "quantity": true}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, resp.Order.Items, 3)

	assert.Equal(t, model.ItemSnapshot{Name: "Nested", Price: 10, ImageURL: "/uploads/a.png"}, resp.Order.Items[0].Item)
	assert.Equal(t, 1, resp.Order.Items[0].Quantity)

	assert.Equal(t, "unknown", resp.Order.Items[1].Item.Name)
	assert.Equal(t, 0.0, resp.Order.Items[1].Item.Price)
	assert.Equal(t, 2, resp.Order.Items[1].Quantity)

	assert.Equal(t, "Bad price", resp.Order.Items[2].Item.Name)
	assert.Equal(t, 0.0, resp.Order.Items[2].Item.Price)
	assert.Equal(t, 1, resp.Order.Items[2].Quantity)

	loaded, err := f.svc.GetOrder(context.Background(), "user-1", resp.Order.ID, "")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 3)
	assert.Equal(t, "Nested", loaded.Items[0].Item.Name)
	assert.Equal(t, "unknown", loaded.Items[1].Item.Name)
	assert.Equal(t, "Bad price", loaded.Items[2].Item.Name)
}

func TestCreateOrder_DuplicateIdempotencyKey(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	raw := `{"items": [{"name": "Dosa", "price": 80, "quantity": 1}]}`

	_, err := f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	requireDomainError(t, err, KindConflict, "duplicate order submission")

	_, err = f.svc.CreateOrder(ctx, "user-1", "", decodeOrderRequest(t, raw))
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.countOrders(t))

	_, err = f.svc.CreateOrder(ctx, "user-2", "key-1", decodeOrderRequest(t, raw))
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.countOrders(t))
}

func TestCreateOrder_RetryAfterGatewayFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	raw := `{"paymentMethod": "online", "items": [{"name": "Dosa", "price": 80, "quantity": 1}]}`

	f.gateway.err = assert.AnError
	_, err := f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, int64(0), f.countOrders(t))

	f.gateway.err = nil
	resp, err := f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	require.NoError(t, err)
	require.NotNil(t, resp.CheckoutURL)
	assert.Equal(t, int64(1), f.countOrders(t))

	_, err = f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	requireDomainError(t, err, KindConflict, "duplicate order submission")
}

func TestCreateOrder_RetryAfterStoreFailure(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	raw := `{"items": [{"name": "Dosa", "price": 80, "quantity": 1}]}`

	require.NoError(t, f.db.Migrator().DropTable(&model.OrderLine{}))
	_, err := f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	require.Error(t, err)
	assert.Equal(t, int64(0), f.countOrders(t))

	require.NoError(t, f.db.AutoMigrate(&model.OrderLine{}))
	_, err = f.svc.CreateOrder(ctx, "user-1", "key-1", decodeOrderRequest(t, raw))
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.countOrders(t))
}

func TestConfirmPayment(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateOrder(ctx, "user-1", "", decodeOrderRequest(t, `{
		"paymentMethod": "online",
		"items": [{"name": "Dosa", "price": 80, "quantity": 1}]
	}`))
	require.NoError(t, err)
	sessionID := created.Order.SessionID

	_, err = f.svc.ConfirmPayment(ctx, "")
	requireDomainError(t, err, KindValidation, "session_id is required")

	_, err = f.svc.ConfirmPayment(ctx, sessionID)
	requireDomainError(t, err, KindState, "payment not completed")
	assert.Equal(t, model.PaymentStatusPending, f.reload(t, created.Order.ID).PaymentStatus)

	f.gateway.markPaid(sessionID, "pi_123")

	resp, err := f.svc.ConfirmPayment(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSucceeded, resp.PaymentStatus)
	assert.Equal(t, "pi_123", resp.PaymentIntentID)
	assert.Len(t, resp.Items, 1)

	stored := f.reload(t, created.Order.ID)
	assert.Equal(t, model.PaymentStatusSucceeded, stored.PaymentStatus)
	assert.Equal(t, "pi_123", stored.PaymentIntentID)

	// confirming twice is harmless
	resp, err = f.svc.ConfirmPayment(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSucceeded, resp.PaymentStatus)

	assert.Contains(t, f.publisher.types(), client.OrderEventPaymentConfirmed)
}

func TestConfirmPayment_UnknownSession(t *testing.T) {
	f := newOrderFixture(t)
	f.gateway.markPaid("cs_orphan", "pi_1")

	_, err := f.svc.ConfirmPayment(context.Background(), "cs_orphan")
	requireDomainError(t, err, KindNotFound, "order not found")
}

func TestListCustomerOrders(t *testing.T) {
	f := newOrderFixture(t)

	older := f.seedOrder(t, func(o *model.Order) { o.CreatedAt = fixedNow.Add(-3 * time.Hour) })
	newer := f.seedOrder(t, func(o *model.Order) { o.CreatedAt = fixedNow.Add(-time.Hour) })
	f.seedOrder(t, func(o *model.Order) {
		o.Status = model.OrderStatusDelivered
		o.DeletedByCustomer = true
	})
	f.seedOrder(t, func(o *model.Order) { o.UserID = "user-2" })

	resp, err := f.svc.ListCustomerOrders(context.Background(), "user-1")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, newer.ID, resp.Orders[0].ID)
	assert.Equal(t, older.ID, resp.Orders[1].ID)
	assert.Len(t, resp.Orders[0].Items, 1)

	empty, err := f.svc.ListCustomerOrders(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.NotNil(t, empty.Orders)
}

func TestListAllOrders(t *testing.T) {
	f := newOrderFixture(t)

	legacy := f.seedOrder(t, func(o *model.Order) {
		o.Address = ""
		o.City = ""
		o.ZipCode = ""
		o.ShippingAddress = model.LegacyAddress{Address: "12 Old Rd", City: "Pune", ZipCode: "411001"}
	})
	f.seedOrder(t, func(o *model.Order) { o.UserID = "user-2" })
	f.seedOrder(t, func(o *model.Order) {
		o.Status = model.OrderStatusCancelled
		o.DeletedByAdmin = true
	})

	resp, err := f.svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, resp.Count)

	var found *dto.OrderResponse
	for _, o := range resp.Orders {
		if o.ID == legacy.ID {
			found = o
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "12 Old Rd", found.Address)
	assert.Equal(t, "Pune", found.City)
	assert.Equal(t, "411001", found.ZipCode)

	// customers see the stored flat fields only
	mine, err := f.svc.GetOrder(context.Background(), "user-1", legacy.ID, "")
	require.NoError(t, err)
	assert.Empty(t, mine.Address)
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, nil)

	resp, err := f.svc.GetOrder(ctx, "user-1", order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, order.ID, resp.ID)

	_, err = f.svc.GetOrder(ctx, "user-1", order.ID, "asha@example.com")
	require.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, "user-1", order.ID, "someone@example.com")
	requireDomainError(t, err, KindForbidden, "Access denied")

	_, err = f.svc.GetOrder(ctx, "user-2", order.ID, "")
	requireDomainError(t, err, KindForbidden, "Access denied")

	_, err = f.svc.GetOrder(ctx, "user-1", "missing", "")
	requireDomainError(t, err, KindNotFound, "order not found")
}

func TestUpdateOrderAsAdmin_OutForDeliveryStampsExpectedDelivery(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(t, nil)

	resp, err := f.svc.UpdateOrderAsAdmin(context.Background(), order.ID, &dto.AdminOrderPatch{
		Status: strPtr("outForDelivery"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "Order updated successfully", resp.Message)
	assert.Equal(t, model.OrderStatusOutForDelivery, resp.Order.Status)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.ExpectedDelivery)
	assert.WithinDuration(t, fixedNow.Add(48*time.Hour), *stored.ExpectedDelivery, time.Second)
	assert.Nil(t, stored.DeliveredAt)
}

func TestUpdateOrderAsAdmin_KeepsExplicitExpectedDelivery(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(t, nil)
	explicit := fixedNow.Add(5 * time.Hour)

	_, err := f.svc.UpdateOrderAsAdmin(context.Background(), order.ID, &dto.AdminOrderPatch{
		Status:           strPtr("outForDelivery"),
		ExpectedDelivery: &explicit,
	})
	require.NoError(t, err)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.ExpectedDelivery)
	assert.WithinDuration(t, explicit, *stored.ExpectedDelivery, time.Second)
}

func TestUpdateOrderAsAdmin_ResendingStatusRestamps(t *testing.T) {
	f := newOrderFixture(t)
	stale := fixedNow.Add(-72 * time.Hour)
	order := f.seedOrder(t, func(o *model.Order) {
		o.Status = model.OrderStatusOutForDelivery
		o.ExpectedDelivery = &stale
	})

	_, err := f.svc.UpdateOrderAsAdmin(context.Background(), order.ID, &dto.AdminOrderPatch{
		Status: strPtr("outForDelivery"),
	})
	require.NoError(t, err)

	stored := f.reload(t, order.ID)
	require.NotNil(t, stored.ExpectedDelivery)
	assert.WithinDuration(t, fixedNow.Add(48*time.Hour), *stored.ExpectedDelivery, time.Second)

	delivered := f.seedOrder(t, func(o *model.Order) {
		o.Status = model.OrderStatusDelivered
		o.DeliveredAt = &stale
	})

	_, err = f.svc.UpdateOrderAsAdmin(context.Background(), delivered.ID, &dto.AdminOrderPatch{
		Status: strPtr("delivered"),
	})
	require.NoError(t, err)

	stored = f.reload(t, delivered.ID)
	require.NotNil(t, stored.DeliveredAt)
	assert.WithinDuration(t, fixedNow, *stored.DeliveredAt, time.Second)
}

func TestUpdateOrderAsAdmin_DeliveredStampsDeliveredAt(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(t, func(o *model.Order) { o.Status = model.OrderStatusOutForDelivery })

	_, err := f.svc.UpdateOrderAsAdmin(context.Background(), order.ID, &dto.AdminOrderPatch{
		Status: strPtr("delivered"),
	})
	require.NoError(t, err)

	stored := f.reload(t, order.ID)
	assert.Equal(t, model.OrderStatusDelivered, stored.Status)
	require.NotNil(t, stored.DeliveredAt)
	assert.WithinDuration(t, fixedNow, *stored.DeliveredAt, time.Second)
	assert.Equal(t, []string{client.OrderEventUpdated}, f.publisher.types())
}

func TestUpdateOrderAsAdmin_RejectsIllegalTransition(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, nil)

	_, err := f.svc.UpdateOrderAsAdmin(ctx, order.ID, &dto.AdminOrderPatch{
		Status:    strPtr("delivered"),
		FirstName: strPtr("Changed"),
	})
	requireDomainError(t, err, KindState, "cannot transition order from pending to delivered")

	_, err = f.svc.UpdateOrderAsAdmin(ctx, order.ID, &dto.AdminOrderPatch{Status: strPtr("shipped")})
	requireDomainError(t, err, KindState, `invalid order status "shipped"`)

	stored := f.reload(t, order.ID)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
	assert.Equal(t, "Asha", stored.FirstName)
	assert.Nil(t, stored.DeliveredAt)

	done := f.seedOrder(t, func(o *model.Order) { o.Status = model.OrderStatusCancelled })
	_, err = f.svc.UpdateOrderAsAdmin(ctx, done.ID, &dto.AdminOrderPatch{Status: strPtr("processing")})
	requireDomainError(t, err, KindState, "cannot transition order from cancelled to processing")
}

func TestUpdateOrderAsAdmin_Fields(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, func(o *model.Order) { o.PaymentStatus = model.PaymentStatusPending })

	zero := dto.Number(0)
	_, err := f.svc.UpdateOrderAsAdmin(ctx, order.ID, &dto.AdminOrderPatch{
		City:          strPtr("Mysuru"),
		Total:         &zero,
		PaymentStatus: strPtr("succeeded"),
	})
	require.NoError(t, err)

	stored := f.reload(t, order.ID)
	assert.Equal(t, "Mysuru", stored.City)
	assert.Equal(t, 0.0, stored.Total)
	assert.Equal(t, model.PaymentStatusSucceeded, stored.PaymentStatus)

	_, err = f.svc.UpdateOrderAsAdmin(ctx, order.ID, &dto.AdminOrderPatch{PaymentStatus: strPtr("refunded")})
	requireDomainError(t, err, KindValidation, `invalid payment status "refunded"`)

	_, err = f.svc.UpdateOrderAsAdmin(ctx, "missing", &dto.AdminOrderPatch{})
	requireDomainError(t, err, KindNotFound, "order not found")
}

func TestUpdateOrderAsCustomer(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, nil)

	resp, err := f.svc.UpdateOrderAsCustomer(ctx, "user-1", order.ID, &dto.CustomerOrderPatch{
		Phone: strPtr("8888888888"),
		Email: strPtr("asha@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "8888888888", resp.Phone)

	_, err = f.svc.UpdateOrderAsCustomer(ctx, "user-1", order.ID, &dto.CustomerOrderPatch{
		Status: strPtr("delivered"),
	})
	requireDomainError(t, err, KindForbidden, "customers can only cancel an order")

	_, err = f.svc.UpdateOrderAsCustomer(ctx, "user-2", order.ID, &dto.CustomerOrderPatch{
		Status: strPtr("cancelled"),
	})
	requireDomainError(t, err, KindForbidden, "Access denied")

	_, err = f.svc.UpdateOrderAsCustomer(ctx, "user-1", order.ID, &dto.CustomerOrderPatch{
		Email:  strPtr("other@example.com"),
		Status: strPtr("cancelled"),
	})
	requireDomainError(t, err, KindForbidden, "Access denied")

	resp, err = f.svc.UpdateOrderAsCustomer(ctx, "user-1", order.ID, &dto.CustomerOrderPatch{
		Status: strPtr("cancelled"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, resp.Status)
	assert.Equal(t, "asha@example.com", f.reload(t, order.ID).Email)
}

func TestUpdateOrderAsCustomer_LocksDetailsOnceDispatched(t *testing.T) {
	f := newOrderFixture(t)
	order := f.seedOrder(t, func(o *model.Order) { o.Status = model.OrderStatusOutForDelivery })

	_, err := f.svc.UpdateOrderAsCustomer(context.Background(), "user-1", order.ID, &dto.CustomerOrderPatch{
		Address: strPtr("2 New Street"),
	})
	requireDomainError(t, err, KindState, "order details can no longer be changed")
	assert.Equal(t, "1 MG Road", f.reload(t, order.ID).Address)
}

func TestDeleteOrder_RequiresTerminalStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, func(o *model.Order) { o.Status = model.OrderStatusProcessing })

	_, err := f.svc.DeleteOrderAsAdmin(ctx, order.ID)
	requireDomainError(t, err, KindState, "Only completed or cancelled orders can be deleted")

	_, err = f.svc.DeleteOrderAsCustomer(ctx, "user-1", order.ID)
	requireDomainError(t, err, KindState, "Only completed or cancelled orders can be deleted")

	stored := f.reload(t, order.ID)
	assert.False(t, stored.DeletedByAdmin)
	assert.False(t, stored.DeletedByCustomer)

	_, err = f.svc.DeleteOrderAsAdmin(ctx, "missing")
	requireDomainError(t, err, KindNotFound, "Order not found")
}

func TestDeleteOrder_FlagsAreIndependent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, func(o *model.Order) { o.Status = model.OrderStatusDelivered })

	resp, err := f.svc.DeleteOrderAsAdmin(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Order deleted successfully from admin panel", resp.Message)
	assert.True(t, resp.Order.DeletedByAdmin)
	assert.False(t, resp.Order.DeletedByCustomer)

	_, err = f.svc.DeleteOrderAsAdmin(ctx, order.ID)
	requireDomainError(t, err, KindState, "Order already deleted by admin")

	all, err := f.svc.ListAllOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, all.Count)

	mine, err := f.svc.ListCustomerOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Count)

	_, err = f.svc.DeleteOrderAsCustomer(ctx, "user-2", order.ID)
	requireDomainError(t, err, KindForbidden, "Access denied")

	resp, err = f.svc.DeleteOrderAsCustomer(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Order deleted successfully from your order history", resp.Message)

	_, err = f.svc.DeleteOrderAsCustomer(ctx, "user-1", order.ID)
	requireDomainError(t, err, KindState, "Order already deleted from your history")

	stored := f.reload(t, order.ID)
	assert.True(t, stored.DeletedByAdmin)
	assert.True(t, stored.DeletedByCustomer)
	require.NotNil(t, stored.AdminDeletedAt)
	require.NotNil(t, stored.CustomerDeletedAt)

	// soft-deleted orders stay readable by id
	_, err = f.svc.GetOrder(ctx, "user-1", order.ID, "")
	require.NoError(t, err)
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price float64
		want  int64
	}{
		{price: 0, want: 0},
		{price: 10, want: 1000},
		{price: 199.99, want: 19999},
		{price: 0.1, want: 10},
		{price: 12.345, want: 1235},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toMinorUnits(tt.price), "price %v", tt.price)
	}
}
