package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bookstore-api/internal/shared/utils"
)

// =====================================================
// CREATE ORDER REQUEST
// =====================================================

// CreateOrderRequest - POST /api/orders. Line prices, totals and statuses
// are never taken from the client.
type CreateOrderRequest struct {
	CustomerName    string            `json:"customerName"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerPhone   string            `json:"customerPhone"`
	ShippingAddress ShippingAddress   `json:"shippingAddress"`
	Items           []CreateOrderItem `json:"items"`
	PaymentMethod   PaymentMethod     `json:"paymentMethod"`
	Notes           string            `json:"notes"`
}

type CreateOrderItem struct {
	Book     string `json:"book"`
	Quantity int    `json:"quantity"`
}

func (it CreateOrderItem) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.Book,
			validation.Required.Error("Book reference is required"),
			utils.UUIDString("Invalid book ID format"),
		),
		validation.Field(&it.Quantity, quantityRule),
	)
}

// BookID is valid once Validate has passed.
func (it CreateOrderItem) BookID() uuid.UUID {
	return utils.ParseStringToUUID(it.Book)
}

func (a *ShippingAddress) normalize() {
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.ZipCode = strings.TrimSpace(a.ZipCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = DefaultCountry
	}
}

func (req *CreateOrderRequest) Normalize() {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.Notes = strings.TrimSpace(req.Notes)
	req.ShippingAddress.normalize()
	for i := range req.Items {
		req.Items[i].Book = strings.TrimSpace(req.Items[i].Book)
	}
}

// Validate validates CreateOrderRequest
func (req CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.CustomerName, customerNameRules()...),
		validation.Field(&req.CustomerEmail, customerEmailRules()...),
		validation.Field(&req.CustomerPhone, phoneRule),
		validation.Field(&req.ShippingAddress),
		validation.Field(&req.Items, validation.Required.Error("Order must contain at least one item")),
		validation.Field(&req.PaymentMethod,
			validation.Required.Error("Payment method is required"),
			validation.In(paymentMethodValues...).Error("Invalid payment method"),
		),
		validation.Field(&req.Notes,
			validation.RuneLength(0, MaxNotesLength).Error("Notes cannot exceed 500 characters"),
		),
	)
}

// =====================================================
// REPLACE ORDER REQUEST
// =====================================================

// UpdateOrderRequest - PUT /api/orders/:id. Supplied fields overwrite the
// stored order and the resulting document must pass Order.Validate. Stock
// and totals are not recomputed.
type UpdateOrderRequest struct {
	CustomerName    *string           `json:"customerName"`
	CustomerEmail   *string           `json:"customerEmail"`
	CustomerPhone   *string           `json:"customerPhone"`
	ShippingAddress *ShippingAddress  `json:"shippingAddress"`
	Items           []UpdateOrderItem `json:"items"`
	Status          *OrderStatus      `json:"status"`
	PaymentMethod   *PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   *PaymentStatus    `json:"paymentStatus"`
	Subtotal        *decimal.Decimal  `json:"subtotal"`
	Tax             *decimal.Decimal  `json:"tax"`
	Shipping        *decimal.Decimal  `json:"shipping"`
	Total           *decimal.Decimal  `json:"total"`
	Notes           *string           `json:"notes"`
}

type UpdateOrderItem struct {
	Book     string           `json:"book"`
	Quantity int              `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

func (it UpdateOrderItem) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.Book,
			validation.Required.Error("Book reference is required"),
			utils.UUIDString("Invalid book ID format"),
		),
		validation.Field(&it.Quantity, quantityRule),
		validation.Field(&it.Price,
			validation.Required.Error("Price is required"),
			nonNegative("Price cannot be negative"),
		),
	)
}

// Validate checks the shape of supplied lines; everything else is checked
// on the merged document.
func (req UpdateOrderRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Items),
	)
}

// ApplyTo merges the supplied fields into o.
func (req UpdateOrderRequest) ApplyTo(o *Order) {
	if req.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerEmail != nil {
		o.CustomerEmail = strings.ToLower(strings.TrimSpace(*req.CustomerEmail))
	}
	if req.CustomerPhone != nil {
		o.CustomerPhone = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.ShippingAddress != nil {
		addr := *req.ShippingAddress
		addr.normalize()
		o.ShippingAddress = addr
	}
	if req.Items != nil {
		items := make([]OrderItem, len(req.Items))
		for i, it := range req.Items {
			items[i] = OrderItem{
				BookID:   utils.ParseStringToUUID(strings.TrimSpace(it.Book)),
				Quantity: it.Quantity,
			}
			if it.Price != nil {
				items[i].Price = *it.Price
			}
		}
		o.Items = items
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.PaymentMethod != nil {
		o.PaymentMethod = *req.PaymentMethod
	}
	if req.PaymentStatus != nil {
		o.PaymentStatus = *req.PaymentStatus
	}
	if req.Subtotal != nil {
		o.Subtotal = *req.Subtotal
	}
	if req.Tax != nil {
		o.Tax = *req.Tax
	}
	if req.Shipping != nil {
		o.Shipping = *req.Shipping
	}
	if req.Total != nil {
		o.Total = *req.Total
	}
	if req.Notes != nil {
		o.Notes = strings.TrimSpace(*req.Notes)
	}
}

// =====================================================
// STATUS REQUEST
// =====================================================

// UpdateStatusRequest - PATCH /api/orders/:id/status
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

func (req UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status,
			validation.Required.Error("Status is required"),
			validation.In(statusValues...).Error("Invalid order status"),
		),
	)
}

// =====================================================
// RESPONSES
// =====================================================

// BookRef is the expanded book on an order line. Only ID is set when the
// book has been deleted since the order was placed.
type BookRef struct {
	ID     uuid.UUID        `json:"id"`
	Title  string           `json:"title,omitempty"`
	Author *uuid.UUID       `json:"author,omitempty"`
	ISBN   string           `json:"isbn,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
	Genre  string           `json:"genre,omitempty"`
}

type OrderItemResponse struct {
	Book     BookRef         `json:"book"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerPhone   string              `json:"customerPhone,omitempty"`
	ShippingAddress ShippingAddress     `json:"shippingAddress"`
	Items           []OrderItemResponse `json:"items"`
	Status          OrderStatus         `json:"status"`
	PaymentMethod   PaymentMethod       `json:"paymentMethod"`
	PaymentStatus   PaymentStatus       `json:"paymentStatus"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Shipping        decimal.Decimal     `json:"shipping"`
	Total           decimal.Decimal     `json:"total"`
	TotalItems      int                 `json:"totalItems"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// ToOrderResponse expands each line with books[line.BookID], falling back
// to the bare id.
func ToOrderResponse(o *Order, books map[uuid.UUID]BookRef) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		ref, ok := books[it.BookID]
		if !ok {
			ref = BookRef{ID: it.BookID}
		}
		items[i] = OrderItemResponse{Book: ref, Quantity: it.Quantity, Price: it.Price}
	}

	return &OrderResponse{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Total:           o.Total,
		TotalItems:      o.TotalItems(),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
