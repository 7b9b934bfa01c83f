// Package model defines the canonical records billwell works with after
// normalizing remote API responses.
package model

import "fmt"

// Kind identifies one remote resource collection.
type Kind string

const (
	// KindExpenses is the expenses collection.
	KindExpenses Kind = "expenses"
	// KindProducts is the product catalogue.
	KindProducts Kind = "products"
	// KindInvoices is the invoices collection.
	KindInvoices Kind = "invoices"
	// KindPurchaseOrders is the purchase orders collection.
	KindPurchaseOrders Kind = "purchase-orders"
	// KindSalesOrders is the sales orders collection.
	KindSalesOrders Kind = "sales-orders"
)

// AllKinds lists every resource in report order.
var AllKinds = []Kind{
	KindExpenses,
	KindProducts,
	KindInvoices,
	KindPurchaseOrders,
	KindSalesOrders,
}

// ParseKind accepts the API path segment or the collection field name.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if s == string(k) || s == k.CollectionField() {
			return k, nil
		}
	}
	switch s {
	case "po", "purchase_orders":
		return KindPurchaseOrders, nil
	case "so", "sales_orders":
		return KindSalesOrders, nil
	}
	return "", fmt.Errorf("unknown resource %q", s)
}

// Path returns the API path of the collection.
func (k Kind) Path() string {
	return "/" + string(k)
}

// CollectionField is the field name the API uses when it wraps the
// collection in an envelope object.
func (k Kind) CollectionField() string {
	switch k {
	case KindPurchaseOrders:
		return "purchaseOrders"
	case KindSalesOrders:
		return "salesOrders"
	default:
		return string(k)
	}
}

// Label is the human-readable plural name.
func (k Kind) Label() string {
	switch k {
	case KindExpenses:
		return "Expenses"
	case KindProducts:
		return "Products"
	case KindInvoices:
		return "Invoices"
	case KindPurchaseOrders:
		return "Purchase Orders"
	case KindSalesOrders:
		return "Sales Orders"
	default:
		return string(k)
	}
}
