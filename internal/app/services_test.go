package app

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/playerhire-backend/internal/testdb"
	"github.com/angelmondragon/playerhire-backend/pkg/config"
	dbpkg "github.com/angelmondragon/playerhire-backend/pkg/db"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Escrow = config.EscrowConfig{MinLeadMinutes: 15, MinDurationMinutes: 60, PlatformAccountID: "00000000-0000-0000-0000-000000000001"}
	cfg.Gateway = config.GatewayConfig{TopupSecret: "secret", CoinsPerUnit: 1, SuccessCode: "00", MinTopupAmount: 1}
	return cfg
}

func TestBuildWiresEveryService(t *testing.T) {
	conn := testdb.Open(t)
	services, err := Build(testConfig(), dbpkg.NewFromGorm(conn), prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	assert.NotNil(t, services.Orders)
	assert.NotNil(t, services.Wallet)
	assert.NotNil(t, services.Rewards)
	assert.NotNil(t, services.Reviews)
	assert.NotNil(t, services.Bans)
	assert.NotNil(t, services.Payments)
	assert.NotNil(t, services.Notifications)
	assert.NotNil(t, services.Outbox)
	assert.Equal(t, testConfig().Escrow.PlatformAccount(), services.Wallet.PlatformAccountID())

	account := testdb.MustAccount(t, conn, enums.AccountRoleRenter, 700)
	balance, err := services.Wallet.Balance(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(700), balance.CoinBalance)
}

func TestBuildRequiresDatabase(t *testing.T) {
	_, err := Build(testConfig(), nil, nil, nil)
	assert.Error(t, err)
}
