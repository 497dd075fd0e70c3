package contracts

import "time"

// DefaultTimeframes is the chart preset for new accounts
var DefaultTimeframes = []string{"1h", "4h", "1d"}

// NotificationSettings are the user's push preferences
type NotificationSettings struct {
	TradeSignals   bool `json:"tradeSignals"`
	AccountUpdates bool `json:"accountUpdates"`
	MarketNews     bool `json:"marketNews"`
}

// UserProfile is the document stored per signed-up user
type UserProfile struct {
	UID                 string               `json:"uid"`
	Username            string               `json:"username"`
	Email               string               `json:"email"`
	CreatedAt           time.Time            `json:"createdAt"`
	LastLoginAt         time.Time            `json:"lastLoginAt"`
	IsProMember         bool                 `json:"isProMember"`
	IsOnline            bool                 `json:"isOnline"`
	TotalTrades         int                  `json:"totalTrades"`
	WinRate             float64              `json:"winRate"`
	TotalProfit         float64              `json:"totalProfit"`
	PreferredTimeframes []string             `json:"preferredTimeframes"`
	Notifications       NotificationSettings `json:"notifications"`
}

// NewUserProfile builds the default document written at sign-up
func NewUserProfile(uid, username, email string, now time.Time) UserProfile {
	timeframes := make([]string, len(DefaultTimeframes))
	copy(timeframes, DefaultTimeframes)

	return UserProfile{
		UID:                 uid,
		Username:            username,
		Email:               email,
		CreatedAt:           now,
		LastLoginAt:         now,
		PreferredTimeframes: timeframes,
		Notifications: NotificationSettings{
			TradeSignals:   true,
			AccountUpdates: true,
			MarketNews:     true,
		},
	}
}

// User is the identity returned by the identity provider
type User struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
