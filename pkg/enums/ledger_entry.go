package enums

// LedgerEntryKind maps to the ledger_entry_kind enum in Postgres.
type LedgerEntryKind string

const (
	LedgerKindReserve     LedgerEntryKind = "RESERVE"
	LedgerKindRelease50   LedgerEntryKind = "RELEASE_50"
	LedgerKindRelease40   LedgerEntryKind = "RELEASE_40"
	LedgerKindPlatformFee LedgerEntryKind = "PLATFORM_FEE"
	LedgerKindRefund      LedgerEntryKind = "REFUND"
	LedgerKindReward      LedgerEntryKind = "REWARD"
	LedgerKindTopup       LedgerEntryKind = "TOPUP"
	LedgerKindWithdraw    LedgerEntryKind = "WITHDRAW"
)

var validLedgerEntryKinds = []LedgerEntryKind{
	LedgerKindReserve,
	LedgerKindRelease50,
	LedgerKindRelease40,
	LedgerKindPlatformFee,
	LedgerKindRefund,
	LedgerKindReward,
	LedgerKindTopup,
	LedgerKindWithdraw,
}

func (k LedgerEntryKind) IsValid() bool {
	return isOneOf(validLedgerEntryKinds, k)
}

func ParseLedgerEntryKind(value string) (LedgerEntryKind, error) {
	return parseOneOf(validLedgerEntryKinds, value, "ledger entry kind")
}

// LedgerDirection records whether an entry moved coins into or out of an account.
type LedgerDirection string

const (
	LedgerDebit  LedgerDirection = "debit"
	LedgerCredit LedgerDirection = "credit"
)

func (d LedgerDirection) IsValid() bool {
	return d == LedgerDebit || d == LedgerCredit
}

// LedgerEntryStatus only moves for gateway-backed entries (top-up).
type LedgerEntryStatus string

const (
	LedgerStatusPending   LedgerEntryStatus = "PENDING"
	LedgerStatusCompleted LedgerEntryStatus = "COMPLETED"
	LedgerStatusCanceled  LedgerEntryStatus = "CANCELED"
)

var validLedgerEntryStatuses = []LedgerEntryStatus{
	LedgerStatusPending,
	LedgerStatusCompleted,
	LedgerStatusCanceled,
}

func (s LedgerEntryStatus) IsValid() bool {
	return isOneOf(validLedgerEntryStatuses, s)
}

func ParseLedgerEntryStatus(value string) (LedgerEntryStatus, error) {
	return parseOneOf(validLedgerEntryStatuses, value, "ledger entry status")
}
