package contracts

import "time"

// OrderSide is the market side of a position or order
type OrderSide string

const (
	SideBuy  OrderSide = "Buy"
	SideSell OrderSide = "Sell"
)

// OrderType is how a pending order triggers
type OrderType string

const (
	OrderMarket    OrderType = "Market"
	OrderLimit     OrderType = "Limit"
	OrderStop      OrderType = "Stop"
	OrderStopLimit OrderType = "Stop Limit"
)

// Trade is an open position shown on the dashboard
type Trade struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Side         OrderSide `json:"side"`
	Size         float64   `json:"size"`
	EntryPrice   float64   `json:"entryPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	PnL          float64   `json:"pnl"`
	Timestamp    time.Time `json:"timestamp"`
}

// Order is a pending order shown on the dashboard
type Order struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"side"`
	Size       float64   `json:"size"`
	OrderPrice float64   `json:"orderPrice"`
	OrderType  OrderType `json:"orderType"`
	Timestamp  time.Time `json:"timestamp"`
}

// TradingSnapshot is the headline dashboard numbers
type TradingSnapshot struct {
	Symbol               string    `json:"symbol"`
	TodaysPnL            float64   `json:"todaysPnL"`
	TodaysChangePercent  float64   `json:"todaysChangePercent"`
	WinRate              float64   `json:"winRate"`
	CurrentPrice         float64   `json:"currentPrice"`
	PriceChange          float64   `json:"priceChange"`
	PriceChangePercent   float64   `json:"priceChangePercent"`
	WeeklyPnL            float64   `json:"weeklyPnL"`
	WeeklyChangePercent  float64   `json:"weeklyChangePercent"`
	MonthlyPnL           float64   `json:"monthlyPnL"`
	MonthlyChangePercent float64   `json:"monthlyChangePercent"`
	ActiveTrades         []Trade   `json:"activeTrades"`
	PendingOrders        []Order   `json:"pendingOrders"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
