package rbcast

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/core"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

var configValidator = validator.New()

// Configuration is read by the core at construction time only; there is no
// environment variable or filesystem interaction, per spec.md section 6.3.
type Configuration struct {
	LocalNodeID           types.NodeId       `validate:"required"`
	ContextCacheCapacity  int                `validate:"gt=0"`
	MembershipHistorySize int                `validate:"gt=0"`
	Quorum                core.QuorumPolicy  `validate:"required"`
	MembershipAccept      types.AcceptPolicy `validate:"required"`
}

// DefaultConfiguration returns a Configuration using the default quorum
// policy (two-thirds-plus-one) and an AnyOnline membership accept policy,
// with the capacities spec.md names (1000 contexts, 1000 membership
// snapshots).
func DefaultConfiguration(localNodeID types.NodeId) Configuration {
	return Configuration{
		LocalNodeID:           localNodeID,
		ContextCacheCapacity:  1000,
		MembershipHistorySize: 1000,
		Quorum:                core.DefaultQuorum{},
		MembershipAccept:      types.AnyOnlineAccept{},
	}
}

// Validate checks struct tags via go-playground/validator, surfacing a
// single wrapped error rather than letting a zero-value Configuration
// silently construct a broken engine.
func (c Configuration) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
