package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/models"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

type CreateProductInput struct {
	SKU          string `json:"sku" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Brand        string `json:"brand"`
	Price        int64  `json:"price" binding:"min=0"`
	Cost         int64  `json:"cost" binding:"min=0"`
	CurrentStock int    `json:"currentStock" binding:"min=0"`
	MinStock     int    `json:"minStock" binding:"min=0"`
	MaxStock     int    `json:"maxStock" binding:"min=0"`
	Supplier     string `json:"supplier"`
	Location     string `json:"location"`
}

// Stock is changed through the stock endpoint only.
type UpdateProductInput struct {
	SKU         *string `json:"sku"`
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Brand       *string `json:"brand"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Cost        *int64  `json:"cost" binding:"omitempty,min=0"`
	MinStock    *int    `json:"minStock" binding:"omitempty,min=0"`
	MaxStock    *int    `json:"maxStock" binding:"omitempty,min=0"`
	Supplier    *string `json:"supplier"`
	Location    *string `json:"location"`
	IsActive    *bool   `json:"isActive"`
}

type StockAdjustInput struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

func skuInUse(tenantID uuid.UUID, sku string, exclude *uuid.UUID) (bool, error) {
	q := config.DB.Model(&models.Product{}).Where("tenant_id = ? AND sku = ?", tenantID, sku)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func CreateProduct(c *gin.Context) {
	session := utils.MustSession(c)

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}
	sku, ok := utils.NormalizeSKU(input.SKU)
	if !ok {
		utils.RespondValidation(c, utils.FieldError{Field: "sku", Message: "use 2-32 letters, digits or dashes"})
		return
	}
	if input.MaxStock > 0 && input.MaxStock < input.MinStock {
		utils.RespondValidation(c, utils.FieldError{Field: "maxStock", Message: "must not be below minStock"})
		return
	}

	exists, err := skuInUse(session.TenantID, sku, nil)
	if err != nil {
		utils.RespondInternal(c, "Database error", err)
		return
	}
	if exists {
		utils.RespondWithCode(c, utils.CodeAlreadyExists, "Product with this SKU already exists", nil)
		return
	}

	product := models.Product{
		TenantID:     session.TenantID,
		SKU:          sku,
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Brand:        input.Brand,
		PriceCents:   input.Price,
		CostCents:    input.Cost,
		CurrentStock: input.CurrentStock,
		MinStock:     input.MinStock,
		MaxStock:     input.MaxStock,
		Supplier:     input.Supplier,
		Location:     input.Location,
		IsActive:     true,
	}
	if err := config.DB.Create(&product).Error; err != nil {
		utils.RespondInternal(c, "Failed to create product", err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, "Product created", product)
}

// GetProducts supports search over name and SKU, category and lowStock
// filters. Customers only see active products.
func GetProducts(c *gin.Context) {
	session := utils.MustSession(c)
	page, limit, offset := utils.ParsePagination(c)

	q := config.DB.Model(&models.Product{}).Where("tenant_id = ?", session.TenantID)
	if !session.IsStaff() {
		q = q.Where("is_active = ?", true)
	}
	if term := strings.TrimSpace(c.Query("search")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if c.Query("lowStock") == "true" {
		q = q.Where("current_stock <= min_stock")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve products", err)
		return
	}
	var products []models.Product
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		utils.RespondInternal(c, "Failed to retrieve products", err)
		return
	}
	utils.RespondSuccessWithMeta(c, http.StatusOK, "Products retrieved", products, utils.NewPaginationMeta(page, limit, total))
}

func GetProduct(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var product models.Product
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product")
		return
	}
	data := gin.H{"product": product}
	if session.IsStaff() {
		var movements []models.StockMovement
		config.DB.Where("product_id = ?", product.ID).Order("created_at DESC").Limit(20).Find(&movements)
		data["movements"] = movements
	}
	utils.RespondSuccess(c, http.StatusOK, "Product retrieved", data)
}

func UpdateProduct(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var product models.Product
	if err := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&product).Error; err != nil {
		respondDBError(c, err, "Product")
		return
	}

	if input.SKU != nil {
		sku, ok := utils.NormalizeSKU(*input.SKU)
		if !ok {
			utils.RespondValidation(c, utils.FieldError{Field: "sku", Message: "use 2-32 letters, digits or dashes"})
			return
		}
		if sku != product.SKU {
			exists, err := skuInUse(session.TenantID, sku, &product.ID)
			if err != nil {
				utils.RespondInternal(c, "Database error", err)
				return
			}
			if exists {
				utils.RespondWithCode(c, utils.CodeAlreadyExists, "Product with this SKU already exists", nil)
				return
			}
			product.SKU = sku
		}
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Price != nil {
		product.PriceCents = *input.Price
	}
	if input.Cost != nil {
		product.CostCents = *input.Cost
	}
	if input.MinStock != nil {
		product.MinStock = *input.MinStock
	}
	if input.MaxStock != nil {
		product.MaxStock = *input.MaxStock
	}
	if input.Supplier != nil {
		product.Supplier = *input.Supplier
	}
	if input.Location != nil {
		product.Location = *input.Location
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if product.MaxStock > 0 && product.MaxStock < product.MinStock {
		utils.RespondValidation(c, utils.FieldError{Field: "maxStock", Message: "must not be below minStock"})
		return
	}

	if err := config.DB.Save(&product).Error; err != nil {
		utils.RespondInternal(c, "Failed to update product", err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Product updated", product)
}

func DeleteProduct(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	result := config.DB.Where("tenant_id = ? AND id = ?", session.TenantID, id).Delete(&models.Product{})
	if result.Error != nil {
		utils.RespondInternal(c, "Failed to delete product", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithCode(c, utils.CodeNotFound, "Product not found", nil)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Product deleted successfully", nil)
}

// AdjustProductStock applies a manual delta. Going below zero is a
// validation error here, unlike order placement where it is a conflict.
func AdjustProductStock(c *gin.Context) {
	session := utils.MustSession(c)
	id, ok := parseID(c, "id", "product")
	if !ok {
		return
	}

	var input StockAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondBindingError(c, err)
		return
	}

	var product models.Product
	var movement *models.StockMovement
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND id = ?", session.TenantID, id).First(&product).Error; err != nil {
			return err
		}
		var err error
		movement, err = services.AdjustStock(tx, &product, input.Delta, input.Reason, nil, ptrUUID(session.UserID))
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondWithCode(c, utils.CodeNotFound, "Product not found", nil)
		return
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondValidation(c, utils.FieldError{Field: "delta", Message: "stock cannot go below zero"})
		return
	default:
		respondServiceError(c, err, "Failed to adjust stock")
		return
	}

	if product.LowStock() {
		utils.LoggerFor(c).WithField("sku", product.SKU).Warn("product at or below minimum stock")
	}
	utils.RespondSuccess(c, http.StatusOK, "Stock adjusted", gin.H{"product": product, "movement": movement})
}
