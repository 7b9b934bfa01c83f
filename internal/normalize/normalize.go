package normalize

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Veraticus/billwell/internal/format"
	"github.com/Veraticus/billwell/internal/model"
)

// Normalizer extracts and maps records using a strategy chain.
type Normalizer struct {
	strategies []ResponseShapeStrategy
	newID      func() string
}

// New creates a normalizer with the default strategy chain.
func New() *Normalizer {
	return &Normalizer{
		strategies: DefaultStrategies(),
		newID:      uuid.NewString,
	}
}

// NewWithStrategies creates a normalizer with a custom chain.
func NewWithStrategies(strategies ...ResponseShapeStrategy) *Normalizer {
	n := New()
	n.strategies = strategies
	return n
}

// Normalize parses raw with the default normalizer.
func Normalize(raw []byte, kind model.Kind) []model.Record {
	return New().Normalize(raw, kind)
}

// Normalize parses raw and maps every candidate record. Invalid JSON and
// unrecognized shapes yield an empty slice.
func (n *Normalizer) Normalize(raw []byte, kind model.Kind) []model.Record {
	if !gjson.ValidBytes(raw) {
		slog.Debug("response is not valid JSON", "kind", kind, "bytes", len(raw))
		return []model.Record{}
	}
	return n.NormalizeResult(gjson.ParseBytes(raw), kind)
}

// NormalizeResult maps an already parsed document.
func (n *Normalizer) NormalizeResult(doc gjson.Result, kind model.Kind) []model.Record {
	candidates, strategy := n.extract(doc, kind)
	records := make([]model.Record, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsObject() {
			continue
		}
		records = append(records, n.mapRecord(c, kind))
	}
	slog.Debug("normalized response",
		"kind", kind,
		"strategy", strategy,
		"candidates", len(candidates),
		"records", len(records))
	return records
}

func (n *Normalizer) extract(doc gjson.Result, kind model.Kind) ([]gjson.Result, string) {
	for _, s := range n.strategies {
		if found, ok := s.Extract(doc, kind); ok {
			return found, s.Name()
		}
	}
	return nil, "none"
}

func (n *Normalizer) mapRecord(obj gjson.Result, kind model.Kind) model.Record {
	rec := model.Record{
		Kind:          kind,
		ID:            recordID(obj),
		Number:        str(first(obj, "invoiceNumber", "orderNumber", "poNumber", "number")),
		Name:          str(first(obj, "name", "title")),
		Category:      nameOf(obj.Get("category")),
		Status:        str(obj.Get("status")),
		Description:   str(obj.Get("description")),
		PaymentMethod: str(obj.Get("paymentMethod")),
		DueDate:       str(obj.Get("dueDate")),
		DateRaw:       str(first(obj, "issueDate", "date", "orderDate", "createdAt", "created")),
		Items:         lineItems(obj.Get("items")),
	}
	if rec.ID == "" {
		rec.ID = n.newID()
	}
	if t, ok := format.ParseDate(rec.DateRaw); ok {
		rec.Date = t
	}
	if t, ok := format.ParseDate(str(first(obj, "createdAt", "created"))); ok {
		rec.CreatedAt = t
	}

	switch kind {
	case model.KindInvoices, model.KindSalesOrders:
		rec.Party = party(obj, "customer", "customerName", "client")
	case model.KindPurchaseOrders:
		rec.Party = party(obj, "vendor", "vendorName", "supplier")
	case model.KindExpenses:
		rec.Party = party(obj, "vendor", "vendorName", "payee")
	}

	if kind == model.KindProducts {
		rec.Price = format.ParseAmountResult(first(obj, "price", "unitPrice"))
		rec.Stock = format.ParseAmountResult(first(obj, "stock", "quantity"))
		rec.Amount = rec.Price * rec.Stock
		rec.AmountSource = model.AmountFromField
		return rec
	}

	if v := first(obj, amountFields(kind)...); v.Exists() {
		rec.Amount = format.ParseAmountResult(v)
		rec.AmountSource = model.AmountFromField
	} else if len(rec.Items) > 0 {
		rec.Amount = model.ItemsTotal(rec.Items)
		rec.AmountSource = model.AmountFromItems
	} else {
		rec.AmountSource = model.AmountNone
	}
	return rec
}

func amountFields(kind model.Kind) []string {
	if kind == model.KindExpenses {
		return []string{"amount", "total"}
	}
	return []string{"total", "amount", "value"}
}

func lineItems(arr gjson.Result) []model.LineItem {
	if !arr.IsArray() {
		return nil
	}
	var items []model.LineItem
	arr.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		qty := format.ParseAmountResult(v.Get("quantity"))
		if qty == 0 {
			qty = 1
		}
		items = append(items, model.LineItem{
			Name:      str(first(v, "description", "name")),
			Quantity:  qty,
			UnitPrice: format.ParseAmountResult(first(v, "price", "unitPrice")),
			Discount:  format.ParseAmountResult(v.Get("discount")),
			Tax:       format.ParseAmountResult(first(v, "tax", "taxRate")),
		})
		return true
	})
	return items
}

// recordID reads _id or id. Mongo extended JSON {"$oid": "..."} is unwrapped.
func recordID(obj gjson.Result) string {
	v := first(obj, "_id", "id")
	if v.IsObject() {
		v = v.Get(`\$oid`)
	}
	return str(v)
}

// party reads a customer or vendor name from a nested object ({"customer":
// {"name": ...}}) or a flat string field, trying fields in order.
func party(obj gjson.Result, fields ...string) string {
	for _, f := range fields {
		if name := nameOf(obj.Get(f)); name != "" {
			return name
		}
	}
	return ""
}

// nameOf returns v itself when it is a scalar, or its name field when it is
// an object.
func nameOf(v gjson.Result) string {
	if v.IsObject() {
		return str(v.Get("name"))
	}
	return str(v)
}

// first returns the first field of obj that is present and not null.
func first(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func str(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		return ""
	}
}
