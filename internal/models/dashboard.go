package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalCustomers    int64            `json:"totalCustomers"`
	ActiveProducts    int64            `json:"activeProducts"`
	TotalOrders       int64            `json:"totalOrders"`
	TotalRevenue      decimal.Decimal  `json:"totalRevenue"`
	RecentOrders      []Order          `json:"recentOrders"`
	MonthlyRevenue    []MonthlyRevenue `json:"monthlyRevenue"`
	TopProducts       []TopProduct     `json:"topProducts"`
	OrderStatusCounts []CountBucket    `json:"orderStatusDistribution"`
	CustomerGrowth    []MonthlyCount   `json:"customerGrowth"`
	GeneratedAt       time.Time        `json:"generatedAt"`
}

type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

type TopProduct struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CountBucket is one bucket of a GROUP BY query.
type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}
