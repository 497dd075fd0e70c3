package contracts

import (
	"fmt"
	"time"
)

// BotCategory groups marketplace bots by style
type BotCategory string

const (
	CategoryScalper         BotCategory = "Scalper"
	CategorySwingTrader     BotCategory = "Swing Trader"
	CategoryNewsTrader      BotCategory = "News Trader"
	CategoryTechnicalTrader BotCategory = "Technical Trader"
	CategoryDayTrader       BotCategory = "Day Trader"
	CategoryArbitrage       BotCategory = "Arbitrage"
	CategoryGridTrader      BotCategory = "Grid Trader"
)

// BotRarity is a collectible tier
type BotRarity string

const (
	RarityCommon    BotRarity = "Common"
	RarityUncommon  BotRarity = "Uncommon"
	RarityRare      BotRarity = "Rare"
	RarityEpic      BotRarity = "Epic"
	RarityLegendary BotRarity = "Legendary"
	RarityMythic    BotRarity = "Mythic"
)

// BotTier is a performance league
type BotTier string

const (
	TierBronze   BotTier = "Bronze"
	TierSilver   BotTier = "Silver"
	TierGold     BotTier = "Gold"
	TierPlatinum BotTier = "Platinum"
	TierDiamond  BotTier = "Diamond"
	TierMaster   BotTier = "Master"
)

// BotAvailability says whether a listing can be rented now
type BotAvailability string

const (
	AvailabilityAvailable   BotAvailability = "Available"
	AvailabilityBusy        BotAvailability = "Busy"
	AvailabilityOffline     BotAvailability = "Offline"
	AvailabilityMaintenance BotAvailability = "Maintenance"
)

// VerificationStatus is the marketplace trust badge
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "Unverified"
	VerificationVerified   VerificationStatus = "Verified"
	VerificationPremium    VerificationStatus = "Premium"
	VerificationElite      VerificationStatus = "Elite"
)

// MarketplaceStats is the published track record of a listing
type MarketplaceStats struct {
	TotalReturn        float64 `json:"totalReturn"`
	WinRate            float64 `json:"winRate"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	SharpeRatio        float64 `json:"sharpeRatio"`
	TotalTrades        int     `json:"totalTrades"`
	TotalUsers         int     `json:"totalUsers"`
	AverageDailyReturn float64 `json:"averageDailyReturn"`
}

// MarketplaceBot is a bot listed for rent or sale
type MarketplaceBot struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Tagline            string             `json:"tagline"`
	CreatorUsername    string             `json:"creatorUsername"`
	Category           BotCategory        `json:"category"`
	Rarity             BotRarity          `json:"rarity"`
	Tier               BotTier            `json:"tier"`
	Availability       BotAvailability    `json:"availability"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	Stats              MarketplaceStats   `json:"stats"`
	AverageRating      float64            `json:"averageRating"`
	TotalReviews       int                `json:"totalReviews"`
	Price              float64            `json:"price"`
	IsFreeTrial        bool               `json:"isFreeTrial"`
	CreatedAt          time.Time          `json:"createdAt"`
	LastUpdated        time.Time          `json:"lastUpdated"`
	Description        string             `json:"description"`
	Features           []string           `json:"features"`
	SupportedPairs     []string           `json:"supportedPairs"`
}

// IsAvailable is true only for the Available state
func (b MarketplaceBot) IsAvailable() bool {
	return b.Availability == AvailabilityAvailable
}

// FormattedPrice renders FREE, $NK or $N
func (b MarketplaceBot) FormattedPrice() string {
	switch {
	case b.Price == 0:
		return "FREE"
	case b.Price >= 1000:
		return fmt.Sprintf("$%.0fK", b.Price/1000)
	default:
		return fmt.Sprintf("$%.0f", b.Price)
	}
}
