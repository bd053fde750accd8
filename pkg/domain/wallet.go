package domain

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Cluster string

const (
	ClusterDevnet  Cluster = "devnet"
	ClusterTestnet Cluster = "testnet"
	ClusterMainnet Cluster = "mainnet-beta"
)

// WalletSettings are the user preferences persisted next to the wallet
type WalletSettings struct {
	AutoLock         bool    `json:"autoLock"`
	AutoLockTime     int     `json:"autoLockTime"`
	BiometricEnabled bool    `json:"biometricEnabled"`
	Currency         string  `json:"currency"`
	Language         string  `json:"language"`
	Theme            Theme   `json:"theme" validate:"omitempty,oneof=light dark system"`
	Network          Cluster `json:"network" validate:"omitempty,oneof=devnet testnet mainnet-beta"`
}

// DefaultWalletSettings is what LoadSettings hands out before anything was saved.
func DefaultWalletSettings() WalletSettings {
	return WalletSettings{
		AutoLock:     true,
		AutoLockTime: 5,
		Currency:     "USD",
		Language:     "en",
		Theme:        ThemeSystem,
		Network:      ClusterDevnet,
	}
}

type AccountData struct {
	Address string `json:"address" validate:"required"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Index   int    `json:"index" validate:"gte=0"`
	Hidden  bool   `json:"hidden,omitempty"`
}

// WalletData is the persisted wallet record. The seed is never part of it.
type WalletData struct {
	Address    string         `json:"address" validate:"required"`
	Accounts   []AccountData  `json:"accounts" validate:"dive"`
	Settings   WalletSettings `json:"settings"`
	LastBackup *time.Time     `json:"lastBackup,omitempty"`
}
