package config

// Store configures the local product store and its persisted snapshot slot.
// OriginID distinguishes this gateway instance from others writing the same
// slot; when empty a random one is generated at startup.
type Store struct {
	SlotKey  string `env:"STORE_SLOT_KEY" envDefault:"dashboard_products"`
	OriginID string `env:"STORE_ORIGIN_ID"`
	Currency string `env:"STORE_CURRENCY" envDefault:"₹"`
}
