package storefront

import (
	"time"

	"github.com/shopspring/decimal"

	syncdomain "github.com/stocksync/engine/internal/domain/sync"
)

// orderListResponse is the wire shape of the storefront order list endpoint
type orderListResponse struct {
	Orders  []wireOrder `json:"orders"`
	HasMore bool        `json:"has_more"`
}

// wireOrder is one order as the storefront serializes it
type wireOrder struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	PlacedAt     time.Time       `json:"placed_at"`
	CurrencyCode string          `json:"currency_code"`
	Customer     wireCustomer    `json:"customer"`
	Shipping     wireAddress     `json:"shipping_address"`
	Items        []wireOrderItem `json:"items"`
}

type wireCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type wireAddress struct {
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Street      string `json:"street"`
	PostalCode  string `json:"postal_code"`
}

type wireOrderItem struct {
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku"`
	ParentSKU      string          `json:"parent_sku"`
	Name           string          `json:"name"`
	AttributeName  string          `json:"attribute_name"`
	AttributeValue string          `json:"attribute_value"`
	Quantity       int64           `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// mapOrderStatus maps storefront status strings onto the four statuses
// the engine acts on. Unknown statuses map to cancelled so they are
// skipped without touching stock.
func mapOrderStatus(raw string) syncdomain.OrderStatus {
	switch raw {
	case "open", "pending":
		return syncdomain.OrderStatusOpen
	case "paid", "processing":
		return syncdomain.OrderStatusPaid
	case "shipped", "completed":
		return syncdomain.OrderStatusShipped
	case "cancelled", "refunded":
		return syncdomain.OrderStatusCancelled
	default:
		return syncdomain.OrderStatusCancelled
	}
}

func (o wireOrder) toRow(salesChannelID int64) syncdomain.OrderRow {
	row := syncdomain.OrderRow{
		ExternalID:     o.ID,
		SalesChannelID: salesChannelID,
		Email:          o.Customer.Email,
		CustomerName:   o.Customer.Name,
		Phone:          o.Customer.Phone,
		CountryCode:    o.Shipping.CountryCode,
		City:           o.Shipping.City,
		Street:         o.Shipping.Street,
		PostalCode:     o.Shipping.PostalCode,
		Status:         mapOrderStatus(o.Status),
		PlacedAt:       o.PlacedAt,
		CurrencyCode:   o.CurrencyCode,
	}
	for _, item := range o.Items {
		row.Items = append(row.Items, syncdomain.OrderRowItem{
			Product: syncdomain.ProductRef{
				ExternalID:     item.ProductID,
				SKU:            item.SKU,
				ParentSKU:      item.ParentSKU,
				Name:           item.Name,
				AttributeName:  item.AttributeName,
				AttributeValue: item.AttributeValue,
			},
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return row
}
