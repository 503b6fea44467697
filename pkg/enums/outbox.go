package enums

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateListing OutboxAggregateType = "listing"
	AggregateAccount OutboxAggregateType = "account"
	AggregateReview  OutboxAggregateType = "review"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateListing,
	AggregateAccount,
	AggregateReview,
}

func (a OutboxAggregateType) IsValid() bool {
	return isOneOf(validAggregateTypes, a)
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parseOneOf(validAggregateTypes, value, "aggregate type")
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderConfirmed     OutboxEventType = "order_confirmed"
	EventOrderRejected      OutboxEventType = "order_rejected"
	EventOrderCanceled      OutboxEventType = "order_canceled"
	EventOrderCompleted     OutboxEventType = "order_completed"
	EventOrderReminder      OutboxEventType = "order_reminder"
	EventListingBanned      OutboxEventType = "listing_banned"
	EventListingUnbanned    OutboxEventType = "listing_unbanned"
	EventReviewSubmitted    OutboxEventType = "review_submitted"
	EventRewardGranted      OutboxEventType = "reward_granted"
	EventWalletTopupSettled OutboxEventType = "wallet_topup_settled"
	EventWalletWithdrawn    OutboxEventType = "wallet_withdrawn"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderConfirmed,
	EventOrderRejected,
	EventOrderCanceled,
	EventOrderCompleted,
	EventOrderReminder,
	EventListingBanned,
	EventListingUnbanned,
	EventReviewSubmitted,
	EventRewardGranted,
	EventWalletTopupSettled,
	EventWalletWithdrawn,
}

func (e OutboxEventType) IsValid() bool {
	return isOneOf(validOutboxEventTypes, e)
}

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parseOneOf(validOutboxEventTypes, value, "event type")
}

type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
