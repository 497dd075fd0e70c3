package sample

import (
	"fmt"

	"github.com/planetprotrader/backend/internal/contracts"
)

// VPSFleetSize is the number of sample VPS instances
const VPSFleetSize = 10

// VPSInstances returns a disconnected fleet at 185.199.109.101 .. .110
func VPSInstances() []contracts.VPSInstance {
	fleet := make([]contracts.VPSInstance, 0, VPSFleetSize)
	for i := 1; i <= VPSFleetSize; i++ {
		fleet = append(fleet, contracts.VPSInstance{
			ID:          fmt.Sprintf("vps-%d", i),
			Name:        fmt.Sprintf("ProTrader VPS %d", i),
			Host:        fmt.Sprintf("185.199.109.%d", 100+i),
			Port:        contracts.DefaultSSHPort,
			Username:    "root",
			Status:      contracts.VPSDisconnected,
			MaxAccounts: contracts.DefaultMaxAccounts,
		})
	}
	return fleet
}
