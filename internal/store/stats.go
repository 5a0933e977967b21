package store

import "go-reseller-ws/internal/model"

// ComputeStats aggregates dashboard figures from orders and listings.
// Cancelled orders do not count toward revenue, markup or commission.
func ComputeStats(orders []model.Order, listings []model.ResellerProduct) model.DashboardStats {
	var stats model.DashboardStats
	for _, o := range orders {
		if o.Status == model.OrderCancelled {
			continue
		}
		stats.TotalOrders++
		if o.Status.IsOpen() {
			stats.PendingOrders++
		}
		stats.TotalRevenue += o.Total
		for _, item := range o.Items {
			stats.TotalMarkup += item.Markup()
			stats.TotalCommission += item.Commission()
		}
	}
	stats.NetEarnings = stats.TotalMarkup - stats.TotalCommission
	stats.TotalProducts, stats.ActiveProducts = countListings(listings)
	return stats
}

func countListings(listings []model.ResellerProduct) (total, active int64) {
	for i := range listings {
		total++
		if listings[i].IsActive {
			active++
		}
	}
	return total, active
}
