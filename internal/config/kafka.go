package config

// Kafka configures broker access. Group is a prefix: each consumer joins a
// unique group derived from it, so every gateway instance observes every
// event instead of sharing a work queue.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"catalog-gateway"`
}
