package rbcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/core"
	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

func TestDefaultConfiguration_Valid(t *testing.T) {
	cfg := DefaultConfiguration("A")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.ContextCacheCapacity)
	assert.Equal(t, 1000, cfg.MembershipHistorySize)
	assert.IsType(t, core.DefaultQuorum{}, cfg.Quorum)
	assert.IsType(t, types.AnyOnlineAccept{}, cfg.MembershipAccept)
}

func TestConfiguration_Validate_RejectsMissingFields(t *testing.T) {
	cfg := Configuration{}

	err := cfg.Validate()

	require.Error(t, err)
}

func TestConfiguration_Validate_RejectsNonPositiveCapacities(t *testing.T) {
	cfg := DefaultConfiguration("A")
	cfg.ContextCacheCapacity = 0

	assert.Error(t, cfg.Validate())

	cfg = DefaultConfiguration("A")
	cfg.MembershipHistorySize = -1

	assert.Error(t, cfg.Validate())
}
