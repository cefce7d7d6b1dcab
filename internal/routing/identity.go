package routing

import (
	"mqsieve/internal/config"
	"mqsieve/internal/constants"
)

// Identity is the consumer instance's mode, fixed at startup. An empty
// RoutingKey marks the baseline instance; a non-empty one marks a sandbox
// dedicated to that key.
type Identity struct {
	SandboxName string
	RoutingKey  string
}

func NewIdentity(cfg config.SandboxConfig) Identity {
	name := cfg.Name
	if name == "" {
		name = constants.BaselineName
	}
	return Identity{
		SandboxName: name,
		RoutingKey:  cfg.RoutingKey,
	}
}

func (id Identity) IsBaseline() bool {
	return id.RoutingKey == ""
}
