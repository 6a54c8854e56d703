package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"omitempty,uuid"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Shipping   struct {
		Method  string `json:"method" binding:"omitempty,oneof=pickup standard express"`
		Address string `json:"address"`
	} `json:"shipping"`
	Payment struct {
		Method string `json:"method"`
	} `json:"payment"`
	Discount int64  `json:"discount" binding:"min=0"`
	Notes    string `json:"notes"`
}

type OrderStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled refunded"`
	TrackingNumber string `json:"trackingNumber"`
}

type PaymentStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=pending paid failed refunded"`
	TransactionID string `json:"transactionId"`
}

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) Create(c *gin.Context) {
	session := utils.MustSession(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if session.Role != utils.RoleCustomer && req.CustomerID == "" {
		utils.RespondValidation(c, utils.FieldError{Field: "customerId", Message: "customerId is required"})
		return
	}
	if session.Role == utils.RoleCustomer && req.Discount > 0 {
		utils.RespondWithCode(c, utils.CodeForbidden, "Discounts are applied by staff", nil)
		return
	}

	in := services.CreateOrderInput{
		ShippingMethod: req.Shipping.Method,
		Address:        req.Shipping.Address,
		PaymentMethod:  req.Payment.Method,
		DiscountCents:  req.Discount,
		Notes:          req.Notes,
	}
	if req.CustomerID != "" {
		in.CustomerID = uuid.MustParse(req.CustomerID)
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: uuid.MustParse(item.ProductID), Quantity: item.Quantity})
	}

	order, err := oc.orders.Create(c.Request.Context(), session, in)
	if err != nil {
		respondServiceError(c, err, "Failed to create order")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Order created", order)
}

func (oc *OrderController) List(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.Order{}).Where("orders.tenant_id = ?", session.TenantID)
	if session.Role == utils.RoleCustomer {
		q = q.Where("customer_id IN (?)", config.DB.Model(&models.Customer{}).Select("id").Where("user_id = ?", session.UserID))
	} else if customer := c.Query("customerId"); customer != "" {
		id, err := uuid.Parse(customer)
		if err != nil {
			utils.RespondValidation(c, utils.FieldError{Field: "customerId", Message: "must be a valid UUID"})
			return
		}
		q = q.Where("customer_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if payment := c.Query("paymentStatus"); payment != "" {
		q = q.Where("payment_status = ?", payment)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve orders", err)
		return
	}
	var orders []models.Order
	if err := q.Preload("Items").Preload("Customer").Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve orders", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Orders retrieved", orders, utils.NewPaginationMeta(page, limit, total))
}

func (oc *OrderController) Get(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}
	order, err := oc.orders.Get(c.Request.Context(), session, id)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve order")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Order retrieved", order)
}

// ChangeStatus moves an order along its lifecycle. Customers may only
// cancel their own orders.
func (oc *OrderController) ChangeStatus(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	if session.Role == utils.RoleCustomer && req.Status != models.OrderCancelled {
		utils.RespondWithCode(c, utils.CodeForbidden, "Customers can only cancel orders", nil)
		return
	}

	order, err := oc.orders.ChangeStatus(c.Request.Context(), session, id, req.Status, req.TrackingNumber)
	if err != nil {
		respondServiceError(c, err, "Failed to update order status")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Order status updated", order)
}

func (oc *OrderController) UpdatePayment(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "order")
	if !ok {
		return
	}

	var req PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	order, err := oc.orders.UpdatePayment(c.Request.Context(), session, id, req.Status, req.TransactionID)
	if err != nil {
		respondServiceError(c, err, "Failed to update payment")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Payment updated", order)
}
