package enums

// AccountRole maps to the account_role enum in Postgres and the JWT role claim.
type AccountRole string

const (
	AccountRoleRenter AccountRole = "renter"
	AccountRolePlayer AccountRole = "player"
	AccountRoleAdmin  AccountRole = "admin"
	// AccountRoleSystem is reserved for the platform revenue account.
	AccountRoleSystem AccountRole = "system"
)

var validAccountRoles = []AccountRole{
	AccountRoleRenter,
	AccountRolePlayer,
	AccountRoleAdmin,
	AccountRoleSystem,
}

func (r AccountRole) IsValid() bool {
	return isOneOf(validAccountRoles, r)
}

func ParseAccountRole(value string) (AccountRole, error) {
	return parseOneOf(validAccountRoles, value, "account role")
}

// CompletionTrigger identifies who drove an order to COMPLETED.
type CompletionTrigger string

const (
	TriggerManual    CompletionTrigger = "manual"
	TriggerScheduler CompletionTrigger = "scheduler"
	TriggerBan       CompletionTrigger = "ban"
)

func (t CompletionTrigger) IsValid() bool {
	return t == TriggerManual || t == TriggerScheduler
}
