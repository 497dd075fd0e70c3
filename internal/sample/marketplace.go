package sample

import "github.com/planetprotrader/backend/internal/contracts"

// MarketplaceBots returns the starter catalogue
func MarketplaceBots(g *Generator) []contracts.MarketplaceBot {
	now := g.Now()
	return []contracts.MarketplaceBot{
		{
			ID:                 g.ID(),
			Name:               "Gold Rush Pro",
			Tagline:            "High-frequency gold scalping",
			CreatorUsername:    "goldmaster",
			Category:           contracts.CategoryScalper,
			Rarity:             contracts.RarityLegendary,
			Tier:               contracts.TierDiamond,
			Availability:       contracts.AvailabilityAvailable,
			VerificationStatus: contracts.VerificationElite,
			Stats: contracts.MarketplaceStats{
				TotalReturn:        245.8,
				WinRate:            0.82,
				MaxDrawdown:        8.5,
				SharpeRatio:        2.4,
				TotalTrades:        1850,
				TotalUsers:         342,
				AverageDailyReturn: 1.2,
			},
			AverageRating:  4.8,
			TotalReviews:   156,
			Price:          499,
			IsFreeTrial:    true,
			CreatedAt:      now.AddDate(0, -6, 0),
			LastUpdated:    now.AddDate(0, 0, -2),
			Description:    "Scalps XAUUSD during London and New York sessions with tight risk.",
			Features:       []string{"Session filter", "News blackout", "Dynamic lot sizing"},
			SupportedPairs: []string{"XAUUSD"},
		},
		{
			ID:                 g.ID(),
			Name:               "Swing Master",
			Tagline:            "Multi-day trend capture",
			CreatorUsername:    "swingking",
			Category:           contracts.CategorySwingTrader,
			Rarity:             contracts.RarityEpic,
			Tier:               contracts.TierPlatinum,
			Availability:       contracts.AvailabilityAvailable,
			VerificationStatus: contracts.VerificationVerified,
			Stats: contracts.MarketplaceStats{
				TotalReturn:        132.4,
				WinRate:            0.68,
				MaxDrawdown:        12.1,
				SharpeRatio:        1.7,
				TotalTrades:        420,
				TotalUsers:         198,
				AverageDailyReturn: 0.6,
			},
			AverageRating:  4.5,
			TotalReviews:   89,
			Price:          199,
			CreatedAt:      now.AddDate(-1, 0, 0),
			LastUpdated:    now.AddDate(0, 0, -9),
			Description:    "Holds positions for days following the higher timeframe trend.",
			Features:       []string{"H4 trend filter", "Partial take profit"},
			SupportedPairs: []string{"XAUUSD", "XAGUSD"},
		},
		{
			ID:                 g.ID(),
			Name:               "News Ninja",
			Tagline:            "Trades the first move after high impact news",
			CreatorUsername:    "newsflash",
			Category:           contracts.CategoryNewsTrader,
			Rarity:             contracts.RarityMythic,
			Tier:               contracts.TierMaster,
			Availability:       contracts.AvailabilityBusy,
			VerificationStatus: contracts.VerificationPremium,
			Stats: contracts.MarketplaceStats{
				TotalReturn:        310.2,
				WinRate:            0.74,
				MaxDrawdown:        15.3,
				SharpeRatio:        2.1,
				TotalTrades:        260,
				TotalUsers:         75,
				AverageDailyReturn: 1.5,
			},
			AverageRating:  4.9,
			TotalReviews:   41,
			Price:          1499,
			CreatedAt:      now.AddDate(0, -3, 0),
			LastUpdated:    now.AddDate(0, 0, -1),
			Description:    "Straddles high impact releases and trails the winning side.",
			Features:       []string{"Economic calendar feed", "Spread guard"},
			SupportedPairs: []string{"XAUUSD"},
		},
	}
}
