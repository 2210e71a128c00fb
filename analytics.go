package feez

import (
	"math"
	"sort"
	"time"
)

// DailySpend is one day of unsponsored USDC gas spend.
type DailySpend struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// ChainUsage counts transactions per chain.
type ChainUsage struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// SpendStats are the headline analytics figures.
type SpendStats struct {
	TotalThisWeek     float64 `json:"totalThisWeek"`
	TotalTransactions int     `json:"totalTransactions"`
	LargestPayment    float64 `json:"largestPayment"`
	AverageGasFee     float64 `json:"averageGasFee"`
}

// MonthlyTrend aggregates activity per calendar month.
type MonthlyTrend struct {
	Month        string  `json:"month"`
	Transactions int     `json:"transactions"`
	TotalSpent   float64 `json:"totalSpent"`
}

// AnalyticsReport is the full aggregation over a wallet's confirmed
// transactions within a timeframe.
type AnalyticsReport struct {
	DailySpending []DailySpend   `json:"dailySpending"`
	ChainUsage    []ChainUsage   `json:"chainUsage"`
	Stats         SpendStats     `json:"stats"`
	MonthlyTrends []MonthlyTrend `json:"monthlyTrends"`
}

// BuildAnalytics aggregates confirmed transaction records between start and
// end. Sponsored transactions count toward usage but contribute zero spend.
func BuildAnalytics(records []TransactionRecord, start, end time.Time) AnalyticsReport {
	return AnalyticsReport{
		DailySpending: dailySpending(records, start, end),
		ChainUsage:    chainUsage(records),
		Stats:         spendStats(records, end),
		MonthlyTrends: monthlyTrends(records),
	}
}

func dailySpending(records []TransactionRecord, start, end time.Time) []DailySpend {
	const day = 24 * time.Hour

	spend := make(map[string]float64)
	var days []string
	for d := start.UTC().Truncate(day); !d.After(end); d = d.Add(day) {
		key := d.Format("2006-01-02")
		spend[key] = 0
		days = append(days, key)
	}

	for _, rec := range records {
		key := rec.CreatedAt.UTC().Format("2006-01-02")
		if _, ok := spend[key]; !ok {
			continue
		}
		if !rec.Sponsored {
			spend[key] += rec.GasFeeUSDC
		}
	}

	out := make([]DailySpend, 0, len(days))
	for _, key := range days {
		out = append(out, DailySpend{Date: key, Amount: round2(spend[key])})
	}
	return out
}

func chainUsage(records []TransactionRecord) []ChainUsage {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Chain]++
	}

	out := make([]ChainUsage, 0, len(counts))
	for name, count := range counts {
		out = append(out, ChainUsage{Name: name, Value: count, Color: ChainColorByName(name)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func spendStats(records []TransactionRecord, now time.Time) SpendStats {
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var totalThisWeek, largest, paidSum float64
	var paidCount int
	for _, rec := range records {
		if rec.Sponsored {
			continue
		}
		paidCount++
		paidSum += rec.GasFeeUSDC
		if rec.GasFeeUSDC > largest {
			largest = rec.GasFeeUSDC
		}
		if !rec.CreatedAt.Before(weekAgo) {
			totalThisWeek += rec.GasFeeUSDC
		}
	}

	var average float64
	if paidCount > 0 {
		average = paidSum / float64(paidCount)
	}
	return SpendStats{
		TotalThisWeek:     round2(totalThisWeek),
		TotalTransactions: len(records),
		LargestPayment:    round2(largest),
		AverageGasFee:     round2(average),
	}
}

func monthlyTrends(records []TransactionRecord) []MonthlyTrend {
	type bucket struct {
		transactions int
		totalSpent   float64
	}

	buckets := make(map[string]*bucket)
	var keys []string
	for _, rec := range records {
		key := rec.CreatedAt.UTC().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.transactions++
		if !rec.Sponsored {
			b.totalSpent += rec.GasFeeUSDC
		}
	}
	sort.Strings(keys)
	if len(keys) > 6 {
		keys = keys[len(keys)-6:]
	}

	out := make([]MonthlyTrend, 0, len(keys))
	for _, key := range keys {
		month, _ := time.Parse("2006-01", key)
		b := buckets[key]
		out = append(out, MonthlyTrend{
			Month:        month.Format("January 2006"),
			Transactions: b.transactions,
			TotalSpent:   round2(b.totalSpent),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
