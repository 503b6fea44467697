// Package testdb provides an in-memory SQLite schema mirroring the Postgres
// migrations closely enough for repository and service tests.
package testdb

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
)

// PlatformAccountID matches the seeded platform revenue account.
var PlatformAccountID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const schema = `
CREATE TABLE accounts (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  coin_balance INTEGER NOT NULL DEFAULT 0,
  locked INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  CHECK (role = 'system' OR coin_balance >= 0)
);
CREATE TABLE listings (
  id TEXT PRIMARY KEY,
  owner_account_id TEXT NOT NULL,
  display_name TEXT NOT NULL,
  hourly_price INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  cumulative_minutes_hired INTEGER NOT NULL DEFAULT 0,
  last_reward_milestone_index INTEGER NOT NULL DEFAULT 0,
  hired_by_account_id TEXT,
  hire_start DATETIME,
  hire_end DATETIME,
  hours_hired INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  renter_account_id TEXT NOT NULL,
  listing_id TEXT NOT NULL,
  window_start DATETIME NOT NULL,
  window_end DATETIME NOT NULL,
  total_price INTEGER NOT NULL CHECK (total_price > 0),
  status TEXT NOT NULL,
  completed_by TEXT,
  confirmed_at DATETIME,
  closed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX idx_orders_one_confirmed_per_listing ON orders (listing_id) WHERE status = 'CONFIRMED';
CREATE TABLE ledger_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  order_id TEXT,
  kind TEXT NOT NULL,
  direction TEXT NOT NULL,
  amount INTEGER NOT NULL CHECK (amount > 0),
  balance_after INTEGER,
  status TEXT NOT NULL,
  gateway_ref TEXT UNIQUE,
  metadata TEXT,
  created_at DATETIME,
  settled_at DATETIME
);
CREATE TABLE reward_records (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  milestone_index INTEGER NOT NULL,
  minutes_required INTEGER NOT NULL,
  coin_awarded INTEGER NOT NULL,
  order_id TEXT,
  awarded_at DATETIME NOT NULL,
  CONSTRAINT reward_records_listing_milestone_key UNIQUE (listing_id, milestone_index)
);
CREATE TABLE reviews (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  listing_id TEXT NOT NULL,
  renter_account_id TEXT NOT NULL,
  rating INTEGER NOT NULL,
  comment TEXT,
  created_at DATETIME
);
CREATE TABLE listing_bans (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  banned_by_account_id TEXT NOT NULL,
  reason TEXT NOT NULL,
  description TEXT,
  canceled_orders INTEGER NOT NULL DEFAULT 0,
  refunded_coin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  lifted_at DATETIME,
  lifted_by_account_id TEXT
);
CREATE TABLE notifications (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  event_id TEXT,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  order_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);
CREATE UNIQUE INDEX idx_notifications_event_account_type ON notifications (event_id, account_id, type) WHERE event_id IS NOT NULL;
CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);
CREATE TABLE outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME
);`

// Open returns a fresh in-memory database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_busy_timeout=5000", name, uuid.NewString()[:8])
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v\n%s", err, stmt)
		}
	}
	if err := conn.Create(&models.Account{
		ID:       PlatformAccountID,
		Username: "platform-revenue",
		Role:     enums.AccountRoleSystem,
	}).Error; err != nil {
		t.Fatalf("seed platform account: %v", err)
	}
	return conn
}

// MustAccount inserts an account with the given role and balance.
func MustAccount(t testing.TB, db *gorm.DB, role enums.AccountRole, balance int64) *models.Account {
	t.Helper()
	acct := &models.Account{
		ID:          uuid.New(),
		Username:    fmt.Sprintf("%s-%s", role, uuid.NewString()[:8]),
		Role:        role,
		CoinBalance: balance,
	}
	if err := db.Create(acct).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acct
}

// MustListing inserts an AVAILABLE listing owned by ownerID.
func MustListing(t testing.TB, db *gorm.DB, ownerID uuid.UUID) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:             uuid.New(),
		OwnerAccountID: ownerID,
		DisplayName:    "listing-" + uuid.NewString()[:8],
		HourlyPrice:    1000,
		Status:         enums.ListingStatusAvailable,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

// MustOrder inserts an order directly, bypassing the state machine.
func MustOrder(t testing.TB, db *gorm.DB, renterID, listingID uuid.UUID, start, end time.Time, price int64, status enums.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		RenterAccountID: renterID,
		ListingID:       listingID,
		WindowStart:     start.UTC(),
		WindowEnd:       end.UTC(),
		TotalPrice:      price,
		Status:          status,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

// Balance reads an account balance straight from the table.
func Balance(t testing.TB, db *gorm.DB, accountID uuid.UUID) int64 {
	t.Helper()
	var acct models.Account
	if err := db.First(&acct, "id = ?", accountID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	return acct.CoinBalance
}
