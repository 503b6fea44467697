package enums

// ListingStatus maps to the listing_status enum in Postgres.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "AVAILABLE"
	ListingStatusHired     ListingStatus = "HIRED"
	ListingStatusBanned    ListingStatus = "BANNED"
)

var validListingStatuses = []ListingStatus{
	ListingStatusAvailable,
	ListingStatusHired,
	ListingStatusBanned,
}

func (s ListingStatus) IsValid() bool {
	return isOneOf(validListingStatuses, s)
}

func ParseListingStatus(value string) (ListingStatus, error) {
	return parseOneOf(validListingStatuses, value, "listing status")
}
