package sample

import (
	"time"

	"github.com/planetprotrader/backend/internal/contracts"
)

// ErrorLogs returns the captured errors the debugger starts with
func ErrorLogs(g *Generator) []contracts.ErrorLog {
	now := g.Now()
	return []contracts.ErrorLog{
		{
			ID:              g.ID(),
			Timestamp:       now.Add(-10 * time.Minute),
			Type:            contracts.ErrorRuntime,
			Severity:        contracts.SeverityError,
			ErrorMessage:    "Index out of range while updating bot list",
			FileName:        "bots/registry.go",
			LineNumber:      142,
			FunctionName:    "Refresh",
			ErrorDomain:     "com.planetprotrader.runtime",
			ErrorCode:       1001,
			DeviceInfo:      "linux/amd64",
			OccurrenceCount: 1,
		},
		{
			ID:              g.ID(),
			Timestamp:       now.Add(-35 * time.Minute),
			Type:            contracts.ErrorNetwork,
			Severity:        contracts.SeverityWarning,
			ErrorMessage:    "The request timed out",
			FileName:        "controlplane/client.go",
			LineNumber:      88,
			FunctionName:    "Status",
			ErrorDomain:     "com.planetprotrader.network",
			ErrorCode:       2001,
			Context:         map[string]string{"endpoint": "/status"},
			AutoFixAttempts: 1,
			DeviceInfo:      "linux/amd64",
			OccurrenceCount: 4,
		},
		{
			ID:              g.ID(),
			Timestamp:       now.Add(-3 * time.Hour),
			Type:            contracts.ErrorData,
			Severity:        contracts.SeverityCritical,
			ErrorMessage:    "Failed to decode account payload",
			ErrorDomain:     "com.planetprotrader.data",
			ErrorCode:       3001,
			DeviceInfo:      "linux/amd64",
			OccurrenceCount: 2,
		},
	}
}
