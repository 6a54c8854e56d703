package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"modernmen-backend/models"
	"modernmen-backend/testutil"
)

type orderEnv struct {
	db       *gorm.DB
	f        *testutil.Fixture
	notifier *testutil.FakeNotifier
	svc      *OrderService
	pomade   models.Product
	comb     models.Product
}

func newOrderEnv(t *testing.T) *orderEnv {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "Fade Factory")
	notifier := &testutil.FakeNotifier{}
	return &orderEnv{
		db:       db,
		f:        f,
		notifier: notifier,
		svc:      NewOrderService(db, notifier),
		pomade:   testutil.NewProduct(t, db, f.Tenant.ID, "POM-001", 1500, 5),
		comb:     testutil.NewProduct(t, db, f.Tenant.ID, "CMB-001", 1000, 1),
	}
}

func (e *orderEnv) stock(t *testing.T, p models.Product) int {
	t.Helper()
	var got models.Product
	require.NoError(t, e.db.First(&got, "id = ?", p.ID).Error)
	return got.CurrentStock
}

func TestCreateOrder(t *testing.T) {
	env := newOrderEnv(t)

	order, err := env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateOrderInput{
		CustomerID:     env.f.Customer.ID,
		Items:          []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 2}, {ProductID: env.comb.ID, Quantity: 1}},
		ShippingMethod: models.ShippingStandard,
		Address:        "1 Main St",
		PaymentMethod:  "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentPending, order.Payment.Status)
	assert.Equal(t, int64(4000), order.SubtotalCents)
	assert.Equal(t, int64(320), order.TaxCents)
	assert.Equal(t, int64(999), order.ShippingCents)
	assert.Equal(t, int64(5319), order.TotalCents)
	assert.Len(t, order.Items, 2)
	assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{4}$`, order.OrderNumber)

	assert.Equal(t, 3, env.stock(t, env.pomade))
	assert.Equal(t, 0, env.stock(t, env.comb))

	var movements []models.StockMovement
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Find(&movements).Error)
	assert.Len(t, movements, 2)

	emails := env.notifier.EmailsTo(env.f.Customer.Email)
	require.Len(t, emails, 1)
	assert.Contains(t, emails[0].Body, "53.19")
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	env := newOrderEnv(t)

	_, err := env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateOrderInput{
		CustomerID: env.f.Customer.ID,
		Items:      []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 1}, {ProductID: env.comb.ID, Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 5, env.stock(t, env.pomade))
	assert.Equal(t, 1, env.stock(t, env.comb))

	var orders int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCreateOrderRepeatedProduct(t *testing.T) {
	env := newOrderEnv(t)

	order, err := env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateOrderInput{
		CustomerID: env.f.Customer.ID,
		Items:      []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 1}, {ProductID: env.pomade.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, int64(4500), order.SubtotalCents)
	assert.Equal(t, 2, env.stock(t, env.pomade))

	var movements []models.StockMovement
	require.NoError(t, env.db.Where("order_id = ?", order.ID).Order("stock_after DESC").Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.Equal(t, 4, movements[0].StockAfter)
	assert.Equal(t, 2, movements[1].StockAfter)

	_, err = env.svc.Create(context.Background(), testutil.Session(env.f.Manager), CreateOrderInput{
		CustomerID: env.f.Customer.ID,
		Items:      []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 2}, {ProductID: env.pomade.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, env.stock(t, env.pomade))
}

func TestCreateOrderValidation(t *testing.T) {
	env := newOrderEnv(t)
	actor := testutil.Session(env.f.Manager)
	item := []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 1}}

	_, err := env.svc.Create(context.Background(), actor, CreateOrderInput{CustomerID: env.f.Customer.ID})
	assert.ErrorIs(t, err, ErrInvalidInput, "no items")

	_, err = env.svc.Create(context.Background(), actor, CreateOrderInput{CustomerID: env.f.Customer.ID, Items: item, ShippingMethod: "drone"})
	assert.ErrorIs(t, err, ErrInvalidInput, "unknown shipping")

	_, err = env.svc.Create(context.Background(), actor, CreateOrderInput{CustomerID: env.f.Customer.ID, Items: item, ShippingMethod: models.ShippingExpress})
	assert.ErrorIs(t, err, ErrInvalidInput, "address required")

	_, err = env.svc.Create(context.Background(), actor, CreateOrderInput{
		CustomerID: env.f.Customer.ID, Items: []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "zero quantity")

	require.NoError(t, env.db.Model(&env.comb).Update("is_active", false).Error)
	_, err = env.svc.Create(context.Background(), actor, CreateOrderInput{
		CustomerID: env.f.Customer.ID, Items: []OrderItemInput{{ProductID: env.comb.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrInactiveReference)
}

func TestCustomerOrders(t *testing.T) {
	env := newOrderEnv(t)
	customer := testutil.Session(env.f.CustomerUser)

	order, err := env.svc.Create(context.Background(), customer, CreateOrderInput{
		Items: []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, env.f.Customer.ID, order.CustomerID)
	assert.Equal(t, models.ShippingPickup, order.Shipping.Method)
	assert.Zero(t, order.ShippingCents)

	got, err := env.svc.Get(context.Background(), customer, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	stranger := testutil.NewUser(t, env.db, env.f.Tenant.ID, "customer", "stranger@fade.test")
	_, err = env.svc.Get(context.Background(), testutil.Session(stranger), order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrderRestocks(t *testing.T) {
	env := newOrderEnv(t)
	actor := testutil.Session(env.f.Manager)

	order, err := env.svc.Create(context.Background(), actor, CreateOrderInput{
		CustomerID: env.f.Customer.ID,
		Items:      []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, env.stock(t, env.pomade))

	_, err = env.svc.ChangeStatus(context.Background(), actor, order.ID, models.OrderShipped, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := env.svc.ChangeStatus(context.Background(), actor, order.ID, models.OrderCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 5, env.stock(t, env.pomade))

	_, err = env.svc.ChangeStatus(context.Background(), actor, order.ID, models.OrderProcessing, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderFulfilmentAndPayment(t *testing.T) {
	env := newOrderEnv(t)
	actor := testutil.Session(env.f.Manager)

	order, err := env.svc.Create(context.Background(), actor, CreateOrderInput{
		CustomerID: env.f.Customer.ID,
		Items:      []OrderItemInput{{ProductID: env.pomade.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = env.svc.UpdatePayment(context.Background(), actor, order.ID, "settled", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	paid, err := env.svc.UpdatePayment(context.Background(), actor, order.ID, models.PaymentPaid, "txn_123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, paid.Payment.Status)
	assert.NotNil(t, paid.Payment.PaidAt)

	for _, to := range []string{models.OrderProcessing, models.OrderShipped, models.OrderDelivered} {
		_, err = env.svc.ChangeStatus(context.Background(), actor, order.ID, to, "1Z999")
		require.NoError(t, err, to)
	}
	refunded, err := env.svc.ChangeStatus(context.Background(), actor, order.ID, models.OrderRefunded, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.Payment.Status)

	stored, err := env.svc.Get(context.Background(), actor, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "1Z999", stored.Shipping.TrackingNumber)
	assert.Equal(t, "txn_123", stored.Payment.TransactionID)
	assert.Equal(t, models.PaymentRefunded, stored.Payment.Status)
	assert.Equal(t, 4, env.stock(t, env.pomade), "refunds do not restock")
}

func TestAdjustStock(t *testing.T) {
	env := newOrderEnv(t)
	p := env.comb

	_, err := AdjustStock(env.db, &p, 0, "noop", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = AdjustStock(env.db, &p, -2, "shrinkage", nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	mv, err := AdjustStock(env.db, &p, 4, "delivery", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, mv.StockAfter)
	assert.Equal(t, 5, p.CurrentStock)
	assert.Equal(t, models.StockIn, p.Status)

	stale := env.comb // still thinks stock is 1
	_, err = AdjustStock(env.db, &stale, -1, "sale", nil, nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, env.stock(t, env.comb))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "12.34", FormatCents(1234))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-1.50", FormatCents(-150))
}
