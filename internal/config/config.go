// Package config provides configuration types and loading for stakewatch.
package config

// Config is the root configuration struct.
// Top-level groups: Registry, Signals, Analysis, Server.
type Config struct {
	Registry RegistryConfig `json:"registry"`
	Signals  SignalsConfig  `json:"signals"`
	Analysis AnalysisConfig `json:"analysis"`
	Server   ServerConfig   `json:"server"`
}

// RegistryConfig controls the group profile registry.
type RegistryConfig struct {
	// Mode is "strict" (unknown ids fail with not_found) or "sandbox"
	// (unknown ids get a synthesised bootstrap profile).
	Mode      string `json:"mode" envconfig:"REGISTRY_MODE"`
	StorePath string `json:"storePath" envconfig:"STORE_PATH"`
	// PersistBootstrap writes synthesised profiles back to the store.
	PersistBootstrap bool `json:"persistBootstrap" envconfig:"PERSIST_BOOTSTRAP"`
}

// SignalsConfig selects the signal source feeding the analyses.
type SignalsConfig struct {
	// Seed drives the deterministic stand-in source.
	Seed  uint64      `json:"seed" envconfig:"SIGNAL_SEED"`
	Kafka KafkaConfig `json:"kafka"`
}

// KafkaConfig configures communication-record ingestion.
type KafkaConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"KAFKA_ENABLED"`
	Brokers       string `json:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic         string `json:"topic" envconfig:"KAFKA_TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"KAFKA_CONSUMER_GROUP"`
}

// AnalysisConfig bounds per-request resource use.
type AnalysisConfig struct {
	MaxNetworkNodes int `json:"maxNetworkNodes" envconfig:"MAX_NETWORK_NODES"`
	MaxWorkers      int `json:"maxWorkers" envconfig:"MAX_WORKERS"`
	// RequestTimeoutSeconds is the per-operation deadline applied by the
	// server wiring. 0 disables the timeout.
	RequestTimeoutSeconds int `json:"requestTimeoutSeconds" envconfig:"REQUEST_TIMEOUT_SECONDS"`
}

// ServerConfig identifies this server instance.
type ServerConfig struct {
	Name string `json:"name" envconfig:"SERVER_NAME"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Registry: RegistryConfig{
			Mode:      "sandbox",
			StorePath: "", // resolved relative to the config dir by Load
		},
		Signals: SignalsConfig{
			Seed: 42,
			Kafka: KafkaConfig{
				Topic:         "stakewatch.communications",
				ConsumerGroup: "stakewatch",
			},
		},
		Analysis: AnalysisConfig{
			MaxNetworkNodes:       500,
			MaxWorkers:            8,
			RequestTimeoutSeconds: 30,
		},
		Server: ServerConfig{Name: "stakewatch"},
	}
}
