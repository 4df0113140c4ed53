package config

import (
	"fmt"
	"strings"
)

// BrokerType selects the active publisher.
type BrokerType string

const (
	// BrokerNone selects the no-op publisher.
	BrokerNone     BrokerType = ""
	BrokerKafka    BrokerType = "kafka"
	BrokerPulsar   BrokerType = "pulsar"
	BrokerRabbitMQ BrokerType = "rabbitmq"
)

// UnmarshalText accepts broker names case-insensitively; "none" means no broker.
func (b *BrokerType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	if v == "none" {
		v = ""
	}
	*b = BrokerType(v)
	return nil
}

// Valid reports whether b is a known broker type.
func (b BrokerType) Valid() bool {
	switch b {
	case BrokerNone, BrokerKafka, BrokerPulsar, BrokerRabbitMQ:
		return true
	}
	return false
}

// Environment is the deployment environment stamped on every alert.
type Environment string

const (
	EnvDev     Environment = "dev"
	EnvTest    Environment = "test"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// UnmarshalText accepts environment names case-insensitively.
func (e *Environment) UnmarshalText(text []byte) error {
	v := Environment(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("unknown environment %q", string(text))
	}
	*e = v
	return nil
}

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	switch e {
	case EnvDev, EnvTest, EnvStaging, EnvProd:
		return true
	}
	return false
}

// String returns the upper-case form carried on alerts, e.g. "PROD".
func (e Environment) String() string {
	return strings.ToUpper(string(e))
}
