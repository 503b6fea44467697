package enums

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationRentRequest    NotificationType = "rent_request"
	NotificationRentReceived   NotificationType = "rent"
	NotificationRentConfirmed  NotificationType = "rent_confirm"
	NotificationRentRejected   NotificationType = "rent_reject"
	NotificationRentCanceled   NotificationType = "rent_cancel"
	NotificationRentCompleted  NotificationType = "rent_complete"
	NotificationAutoComplete   NotificationType = "order_auto_complete"
	NotificationReviewReminder NotificationType = "order_review_reminder"
	NotificationOrderUpcoming  NotificationType = "order_upcoming"
	NotificationOrderEnding    NotificationType = "order_ending"
	NotificationCancelBan      NotificationType = "order_cancel_ban"
	NotificationAccountBanned  NotificationType = "account_banned"
	NotificationReview         NotificationType = "review"
	NotificationReward         NotificationType = "reward"
	NotificationTopup          NotificationType = "topup"
	NotificationWithdraw       NotificationType = "withdraw"
)

var validNotificationTypes = []NotificationType{
	NotificationRentRequest,
	NotificationRentReceived,
	NotificationRentConfirmed,
	NotificationRentRejected,
	NotificationRentCanceled,
	NotificationRentCompleted,
	NotificationAutoComplete,
	NotificationReviewReminder,
	NotificationOrderUpcoming,
	NotificationOrderEnding,
	NotificationCancelBan,
	NotificationAccountBanned,
	NotificationReview,
	NotificationReward,
	NotificationTopup,
	NotificationWithdraw,
}

func (n NotificationType) IsValid() bool {
	return isOneOf(validNotificationTypes, n)
}

func ParseNotificationType(value string) (NotificationType, error) {
	return parseOneOf(validNotificationTypes, value, "notification type")
}
