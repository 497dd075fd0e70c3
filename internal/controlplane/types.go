package controlplane

import "time"

// BotStatus is the control service's view of the trading bot
type BotStatus struct {
	Status         string `json:"status"`
	BotRunning     bool   `json:"bot_running"`
	ServiceStatus  string `json:"service_status"`
	RecentActivity string `json:"recent_activity"` // newline-separated log lines
	Timestamp      int64  `json:"timestamp"`
}

// Account is the MT5 account behind the bot
type Account struct {
	Login    int64   `json:"login"`
	Server   string  `json:"server"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Profit   float64 `json:"profit"`
	Currency string  `json:"currency"`
	Leverage int     `json:"leverage"`
}

// AccountInfo wraps Account with the response envelope
type AccountInfo struct {
	Status    string  `json:"status"`
	Account   Account `json:"account"`
	Timestamp int64   `json:"timestamp"`
}

// TradeLog is one line of the bot's trade log
type TradeLog struct {
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Log       string `json:"log"`
}

// TradeHistory is the recent trade log
type TradeHistory struct {
	Status      string     `json:"status"`
	Trades      []TradeLog `json:"trades"`
	TotalTrades int        `json:"total_trades"`
}

// controlResponse is the body returned by POST /control/{action}
type controlResponse struct {
	Message string `json:"message"`
}

// ControlState is what the monitor publishes
type ControlState struct {
	Status       *BotStatus    `json:"status,omitempty"`
	Account      *AccountInfo  `json:"account,omitempty"`
	Trades       *TradeHistory `json:"trades,omitempty"`
	IsLoading    bool          `json:"isLoading"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	LastMessage  string        `json:"lastMessage,omitempty"`
	LastUpdated  time.Time     `json:"lastUpdated"`
}

// IsBotRunning reports the last known running flag
func (s ControlState) IsBotRunning() bool {
	return s.Status != nil && s.Status.BotRunning
}
