package logger_test

import (
	"errors"

	"github.com/planetprotrader/backend/pkg/config"
	"github.com/planetprotrader/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Application started")
	log.Infof("Signed in %s", "trader@goldex.ai")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})

	log.WithComponent("bots").WithFields(map[string]interface{}{
		"bot":          "Gold Scalper Pro",
		"total_trades": 145,
	}).Info("Bot stats updated")

	log.WithError(errors.New("Invalid response format")).Error("Start bot failed")
}
