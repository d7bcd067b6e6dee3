// Package analytics computes restock, profit, and dead-stock metrics over
// store rows. All functions are pure: same inputs, same ordered outputs.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	storex "github.com/hanumantraders/warehouse-agent/agent/store"
)

const (
	// LookbackDays is the sales window used for velocity and dead stock.
	LookbackDays = 30

	// ZeroVelocityDays is the days-until-stockout convention for items with
	// no recorded sales in the window.
	ZeroVelocityDays = 999

	criticalDays  = 5
	watchlistDays = 10
	thresholdDays = 5
	promoteMargin = 20.0
	costFallback  = 0.7
	profitTopN    = 5
	deadStockTopN = 10
)

type RestockStatus string

const (
	StatusCritical RestockStatus = "CRITICAL"
	StatusWarning  RestockStatus = "WARNING"
)

type RestockRow struct {
	Product           string        `json:"product"`
	CurrentStock      int           `json:"current_stock"`
	DailySales        float64       `json:"daily_sales"`
	DaysUntilStockout float64       `json:"days_until_stockout"`
	RestockThreshold  float64       `json:"restock_threshold"`
	Status            RestockStatus `json:"status"`
}

type Recommendation string

const (
	RecommendPromote   Recommendation = "Promote"
	RecommendClearance Recommendation = "Clearance"
)

type ProfitRow struct {
	Name           string         `json:"name"`
	MarginPercent  float64        `json:"margin_percent"`
	Velocity       float64        `json:"velocity"`
	ProfitScore    float64        `json:"profit_potential_score"`
	Recommendation Recommendation `json:"recommendation"`
}

type DeadStockRow struct {
	Product     string  `json:"product"`
	StockLocked int     `json:"stock_locked"`
	ValueLocked float64 `json:"value_locked"`
}

// DailyVelocity averages the units of one product sold inside the lookback
// window ending at now.
func DailyVelocity(sales []storex.Sale, productID int64, now time.Time, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = LookbackDays
	}
	cutoff := now.AddDate(0, 0, -windowDays)

	total := 0
	for _, s := range sales {
		if s.Date.Before(cutoff) {
			continue
		}
		for _, item := range s.Items {
			if item.ProductID == productID {
				total += item.Quantity
			}
		}
	}
	return float64(total) / float64(windowDays)
}

// Restock reports products at risk of stockout, ascending by days remaining.
// Without a product filter only items inside the 10-day watchlist are
// included; with a filter, every match is reported.
func Restock(products []storex.Product, sales []storex.Sale, now time.Time, productName string) []RestockRow {
	filtered := strings.TrimSpace(productName) != ""

	rows := make([]RestockRow, 0, len(products))
	for _, p := range products {
		stock := p.TotalStock()
		velocity := DailyVelocity(sales, p.ID, now, LookbackDays)

		days := float64(ZeroVelocityDays)
		if velocity > 0 {
			days = float64(stock) / velocity
		}

		threshold := velocity*thresholdDays + float64(p.MinStockLevel)

		if days >= watchlistDays && !filtered {
			continue
		}

		status := StatusWarning
		if days < criticalDays {
			status = StatusCritical
		}

		rows = append(rows, RestockRow{
			Product:           p.Name,
			CurrentStock:      stock,
			DailySales:        round(velocity, 2),
			DaysUntilStockout: round(days, 1),
			RestockThreshold:  round(threshold, 1),
			Status:            status,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DaysUntilStockout < rows[j].DaysUntilStockout
	})
	return rows
}

// Profit ranks the catalog by (price-cost)*velocity and returns the top
// five. Items without a recorded cost fall back to 70% of price.
func Profit(products []storex.Product, sales []storex.Sale, now time.Time) []ProfitRow {
	rows := make([]ProfitRow, 0, len(products))
	for _, p := range products {
		if p.Price <= 0 {
			continue
		}

		cost := p.Cost
		if cost <= 0 {
			cost = p.Price * costFallback
		}

		margin := (p.Price - cost) / p.Price * 100
		velocity := DailyVelocity(sales, p.ID, now, LookbackDays)
		score := (p.Price - cost) * velocity

		recommendation := RecommendClearance
		if margin > promoteMargin {
			recommendation = RecommendPromote
		}

		rows = append(rows, ProfitRow{
			Name:           p.Name,
			MarginPercent:  round(margin, 1),
			Velocity:       round(velocity, 2),
			ProfitScore:    round(score, 2),
			Recommendation: recommendation,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ProfitScore > rows[j].ProfitScore
	})
	if len(rows) > profitTopN {
		rows = rows[:profitTopN]
	}
	return rows
}

// DeadStock lists products with zero sales inside the lookback window,
// highest locked value first, capped at ten rows.
func DeadStock(products []storex.Product, sales []storex.Sale, now time.Time) []DeadStockRow {
	cutoff := now.AddDate(0, 0, -LookbackDays)

	sold := make(map[int64]struct{})
	for _, s := range sales {
		if s.Date.Before(cutoff) {
			continue
		}
		for _, item := range s.Items {
			sold[item.ProductID] = struct{}{}
		}
	}

	rows := make([]DeadStockRow, 0)
	for _, p := range products {
		if _, moved := sold[p.ID]; moved {
			continue
		}
		locked := p.TotalStock()
		rows = append(rows, DeadStockRow{
			Product:     p.Name,
			StockLocked: locked,
			ValueLocked: float64(locked) * p.Price,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ValueLocked > rows[j].ValueLocked
	})
	if len(rows) > deadStockTopN {
		rows = rows[:deadStockTopN]
	}
	return rows
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
