// Package normalize turns loosely shaped API responses into canonical
// records. Extraction runs a fixed chain of ResponseShapeStrategy
// implementations; the first one that matches decides which JSON values are
// candidate records.
package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/Veraticus/billwell/internal/model"
)

// ResponseShapeStrategy recognizes one response layout.
type ResponseShapeStrategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Extract returns the candidate records and true when the document has
	// this strategy's shape.
	Extract(doc gjson.Result, kind model.Kind) ([]gjson.Result, bool)
}

// DefaultStrategies returns the extraction chain in precedence order.
func DefaultStrategies() []ResponseShapeStrategy {
	return []ResponseShapeStrategy{
		bareArray{},
		namedCollection{},
		firstArrayValue{},
		singleRecord{},
		objectOfRecords{},
	}
}

// identifyingFields mark a single bare record.
var identifyingFields = []string{"invoiceNumber", "orderNumber", "poNumber", "id", "_id"}

// recordFields mark an object value as a record inside an object-of-records
// response.
var recordFields = []string{
	"invoiceNumber", "orderNumber", "poNumber", "id", "_id",
	"total", "amount", "items", "name", "price",
}

// bareArray matches a top-level JSON array.
type bareArray struct{}

func (bareArray) Name() string { return "bare-array" }

func (bareArray) Extract(doc gjson.Result, _ model.Kind) ([]gjson.Result, bool) {
	if !doc.IsArray() {
		return nil, false
	}
	return doc.Array(), true
}

// namedCollection matches {"<collection>": [...]} where the field is the
// kind's collection name.
type namedCollection struct{}

func (namedCollection) Name() string { return "named-collection" }

func (namedCollection) Extract(doc gjson.Result, kind model.Kind) ([]gjson.Result, bool) {
	if !doc.IsObject() {
		return nil, false
	}
	names := map[string]bool{kind.CollectionField(): true, string(kind): true}

	var found []gjson.Result
	matched := false
	doc.ForEach(func(key, value gjson.Result) bool {
		if names[key.Str] && value.IsArray() {
			found = value.Array()
			matched = true
			return false
		}
		return true
	})
	return found, matched
}

// firstArrayValue matches an object holding an array under any key. Keys are
// scanned in document order.
type firstArrayValue struct{}

func (firstArrayValue) Name() string { return "first-array-value" }

func (firstArrayValue) Extract(doc gjson.Result, _ model.Kind) ([]gjson.Result, bool) {
	if !doc.IsObject() {
		return nil, false
	}
	var found []gjson.Result
	matched := false
	doc.ForEach(func(_, value gjson.Result) bool {
		if value.IsArray() {
			found = value.Array()
			matched = true
			return false
		}
		return true
	})
	return found, matched
}

// singleRecord matches an object that is itself a record.
type singleRecord struct{}

func (singleRecord) Name() string { return "single-record" }

func (singleRecord) Extract(doc gjson.Result, _ model.Kind) ([]gjson.Result, bool) {
	if !doc.IsObject() || !hasAny(doc, identifyingFields) {
		return nil, false
	}
	return []gjson.Result{doc}, true
}

// objectOfRecords matches {"a": {...}, "b": {...}} and keeps the object
// values exposing at least one record field.
type objectOfRecords struct{}

func (objectOfRecords) Name() string { return "object-of-records" }

func (objectOfRecords) Extract(doc gjson.Result, _ model.Kind) ([]gjson.Result, bool) {
	if !doc.IsObject() {
		return nil, false
	}
	var found []gjson.Result
	doc.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() && hasAny(value, recordFields) {
			found = append(found, value)
		}
		return true
	})
	return found, len(found) > 0
}

// hasAny reports whether obj carries a truthy value under any of keys.
func hasAny(obj gjson.Result, keys []string) bool {
	for _, k := range keys {
		if truthy(obj.Get(k)) {
			return true
		}
	}
	return false
}

func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True:
		return true
	default:
		return r.Exists()
	}
}
