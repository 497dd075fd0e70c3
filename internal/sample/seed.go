package sample

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/planetprotrader/backend/internal/contracts"
)

// Seed overrides the built-in sample fleet and VPS list from a YAML file
type Seed struct {
	Bots []BotSeed `yaml:"bots"`
	VPS  []VPSSeed `yaml:"vps"`
}

// BotSeed is one bot entry in the seed file
type BotSeed struct {
	Name        string  `yaml:"name"`
	Strategy    string  `yaml:"strategy"`
	RiskLevel   int     `yaml:"risk_level"`
	WinRate     float64 `yaml:"win_rate"`
	TotalTrades int     `yaml:"total_trades"`
	ProfitLoss  float64 `yaml:"profit_loss"`
	Status      string  `yaml:"status"`
}

// VPSSeed is one VPS entry in the seed file
type VPSSeed struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	MaxAccounts int    `yaml:"max_accounts"`
}

// LoadSeed reads and validates a seed file
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	for i, b := range s.Bots {
		if b.Name == "" {
			return fmt.Errorf("bots[%d]: name is required", i)
		}
		if !contracts.Strategy(b.Strategy).IsValid() {
			return fmt.Errorf("bots[%d]: unknown strategy %q", i, b.Strategy)
		}
		if b.Status != "" && !contracts.BotStatus(b.Status).IsValid() {
			return fmt.Errorf("bots[%d]: unknown status %q", i, b.Status)
		}
		if b.RiskLevel != 0 && !contracts.RiskLevel(b.RiskLevel).IsValid() {
			return fmt.Errorf("bots[%d]: risk_level must be 1-5", i)
		}
		if b.WinRate < 0 || b.WinRate > 1 {
			return fmt.Errorf("bots[%d]: win_rate must be within 0-1", i)
		}
	}
	for i, v := range s.VPS {
		if v.Host == "" {
			return fmt.Errorf("vps[%d]: host is required", i)
		}
	}
	return nil
}

// TradingBots materialises the seeded bots, nil when none are seeded
func (s *Seed) TradingBots(g *Generator) []contracts.TradingBot {
	if len(s.Bots) == 0 {
		return nil
	}

	now := g.Now()
	bots := make([]contracts.TradingBot, 0, len(s.Bots))
	for _, b := range s.Bots {
		status := contracts.BotStatus(b.Status)
		if status == "" {
			status = contracts.BotActive
		}
		risk := contracts.RiskLevel(b.RiskLevel)
		if risk == 0 {
			risk = contracts.RiskMedium
		}
		bots = append(bots, contracts.TradingBot{
			ID:          g.ID(),
			Name:        b.Name,
			Strategy:    contracts.Strategy(b.Strategy),
			RiskLevel:   risk,
			WinRate:     b.WinRate,
			TotalTrades: b.TotalTrades,
			ProfitLoss:  b.ProfitLoss,
			Status:      status,
			LastUpdate:  now,
		})
	}
	return bots
}

// VPSInstances materialises the seeded fleet, nil when none are seeded
func (s *Seed) VPSInstances() []contracts.VPSInstance {
	if len(s.VPS) == 0 {
		return nil
	}

	fleet := make([]contracts.VPSInstance, 0, len(s.VPS))
	for i, v := range s.VPS {
		inst := contracts.VPSInstance{
			ID:          v.ID,
			Name:        v.Name,
			Host:        v.Host,
			Port:        v.Port,
			Username:    v.Username,
			Status:      contracts.VPSDisconnected,
			MaxAccounts: v.MaxAccounts,
		}
		if inst.ID == "" {
			inst.ID = fmt.Sprintf("vps-%d", i+1)
		}
		if inst.Port == 0 {
			inst.Port = contracts.DefaultSSHPort
		}
		if inst.MaxAccounts == 0 {
			inst.MaxAccounts = contracts.DefaultMaxAccounts
		}
		fleet = append(fleet, inst)
	}
	return fleet
}
