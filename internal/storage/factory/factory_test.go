package factory

import (
	"io"
	"staydesk/internal/storage/memory"
	"staydesk/pkg/client"
	"staydesk/pkg/config"
	"staydesk/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		StorageDriver:     driver,
		StorageMaxRetries: 2,
		StorageBackoff:    10 * time.Millisecond,
		Log:               logger.New(logger.Config{Output: io.Discard}),
		Client:            client.NewClient(),
	}
}

func TestNewStore_Memory(t *testing.T) {
	store, err := NewStore(testConfig(config.StorageMemory))

	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
}

func TestNewStore_UnknownDriver(t *testing.T) {
	_, err := NewStore(testConfig("sqlite"))

	assert.ErrorContains(t, err, "sqlite")
}

func TestRetryPolicy_FromConfig(t *testing.T) {
	policy := RetryPolicy(testConfig(config.StorageMemory))

	assert.Equal(t, 2, policy.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, policy.InitialDelay)
	assert.Greater(t, policy.BackoffFactor, 1.0)
}
