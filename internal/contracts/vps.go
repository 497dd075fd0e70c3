package contracts

import "time"

const (
	DefaultSSHPort     = 22
	DefaultMaxAccounts = 5
)

// ConnectionStatus is the link state to a VPS
type ConnectionStatus string

const (
	VPSConnected    ConnectionStatus = "Connected"
	VPSConnecting   ConnectionStatus = "Connecting"
	VPSDisconnected ConnectionStatus = "Disconnected"
	VPSError        ConnectionStatus = "Error"
	VPSMaintenance  ConnectionStatus = "Maintenance"
)

// VPSInstance describes a remote machine hosting trading accounts
type VPSInstance struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Host            string           `json:"host"`
	Port            int              `json:"port"`
	Username        string           `json:"username"`
	IsConnected     bool             `json:"isConnected"`
	Status          ConnectionStatus `json:"status"`
	LastPing        *time.Time       `json:"lastPing,omitempty"`
	AccountsRunning int              `json:"accountsRunning"`
	MaxAccounts     int              `json:"maxAccounts"`
}

// HasCapacity is true while another account can be deployed
func (v VPSInstance) HasCapacity() bool {
	return v.AccountsRunning < v.MaxAccounts
}

// Utilization is the fraction of account slots in use
func (v VPSInstance) Utilization() float64 {
	if v.MaxAccounts == 0 {
		return 0
	}
	return float64(v.AccountsRunning) / float64(v.MaxAccounts)
}
