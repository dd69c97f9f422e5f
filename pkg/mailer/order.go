package mailer

import (
	"fmt"
	"time"
)

// OrderItem is a single purchased line item.
type OrderItem struct {
	Name     string
	SKU      string
	Quantity int
	Price    float64
}

// Total returns the line total.
func (i OrderItem) Total() float64 { return float64(i.Quantity) * i.Price }

// Order groups the line items of a confirmed purchase.
type Order struct {
	Number           string
	Items            []OrderItem
	ShippingAddress  string
	DeliveryEstimate string
}

// Total sums the line totals.
func (o Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Total()
	}
	return total
}

// ItemsCount sums the line quantities.
func (o Order) ItemsCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OrderConfirmation confirms a purchase to the customer.
type OrderConfirmation struct {
	base
	Customer EmailAddress
	Order    Order
}

// NewOrderConfirmation creates an order confirmation for customer.
func NewOrderConfirmation(company Company, customer EmailAddress, order Order) *OrderConfirmation {
	return &OrderConfirmation{base: newBase(company), Customer: customer, Order: order}
}

func (m *OrderConfirmation) TemplateName() string { return "order_confirmation.html" }

func (m *OrderConfirmation) TemplateData() map[string]any {
	products := make([]map[string]any, 0, len(m.Order.Items))
	for _, item := range m.Order.Items {
		sku := item.SKU
		if sku == "" {
			sku = "N/A"
		}
		products = append(products, map[string]any{
			"name":     item.Name,
			"sku":      sku,
			"quantity": item.Quantity,
			"price":    fmt.Sprintf("%.2f", item.Price),
			"total":    fmt.Sprintf("%.2f", item.Total()),
		})
	}

	data := m.data()
	data["customer"] = userData(m.Customer)
	data["order_info"] = map[string]any{
		"number":            m.Order.Number,
		"created_at":        time.Now().Format("02/01/2006 15:04"),
		"products":          products,
		"items_count":       m.Order.ItemsCount(),
		"total":             fmt.Sprintf("%.2f", m.Order.Total()),
		"shipping_address":  m.Order.ShippingAddress,
		"delivery_estimate": m.Order.DeliveryEstimate,
	}
	return data
}

func (m *OrderConfirmation) Validate() error {
	if m.Order.Number == "" {
		return fmt.Errorf("%w: order number is required", ErrValidation)
	}
	if len(m.Order.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	if m.Order.ShippingAddress == "" {
		return fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	return nil
}
