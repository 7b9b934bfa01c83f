package aggregate

import (
	"sort"
	"strings"

	"github.com/Veraticus/billwell/internal/model"
)

// Dashboard list lengths.
const (
	RecentProductCount = 5
	RecentOrderCount   = 5
)

var (
	pendingOrderStatuses   = []string{"pending", "processing", "confirmed"}
	completedOrderStatuses = []string{"delivered", "completed"}
)

// DashboardSummary is the headline view of sales activity.
type DashboardSummary struct {
	RecentProducts   []model.Record `json:"-"`
	RecentOrders     []model.Record `json:"-"`
	TotalSalesOrders int            `json:"total_sales_orders"`
	Pending          int            `json:"pending"`
	Completed        int            `json:"completed"`
	Revenue          float64        `json:"revenue"`
}

// SummarizeDashboard counts sales orders by progress and picks the most
// recently created products and the leading sales orders.
func SummarizeDashboard(salesOrders, products []model.Record) DashboardSummary {
	s := DashboardSummary{TotalSalesOrders: len(salesOrders)}
	for _, o := range salesOrders {
		status := strings.ToLower(strings.TrimSpace(o.Status))
		switch {
		case contains(pendingOrderStatuses, status):
			s.Pending++
		case contains(completedOrderStatuses, status):
			s.Completed++
		}
		s.Revenue += o.Amount
	}
	s.RecentProducts = RecentProducts(products, RecentProductCount)
	s.RecentOrders = RecentOrders(salesOrders, RecentOrderCount)
	return s
}

// RecentOrders returns the first n orders in the order the API returned them.
// The API lists newest first, so no sorting is applied.
func RecentOrders(orders []model.Record, n int) []model.Record {
	if len(orders) > n {
		orders = orders[:n]
	}
	out := make([]model.Record, len(orders))
	copy(out, orders)
	return out
}

// RecentProducts returns up to n products, newest CreatedAt first. Products
// without a creation time sort after dated ones, by ID descending.
func RecentProducts(products []model.Record, n int) []model.Record {
	sorted := make([]model.Record, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case !a.CreatedAt.IsZero() && !b.CreatedAt.IsZero():
			return a.CreatedAt.After(b.CreatedAt)
		case a.CreatedAt.IsZero() != b.CreatedAt.IsZero():
			return !a.CreatedAt.IsZero()
		default:
			return a.ID > b.ID
		}
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
