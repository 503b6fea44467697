package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/playerhire-backend/pkg/db/models"
	"github.com/angelmondragon/playerhire-backend/pkg/enums"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox"
	"github.com/angelmondragon/playerhire-backend/pkg/outbox/payloads"
)

// Build turns one decoded domain event into the in-app notifications it
// produces. Events nobody needs to hear about yield no rows.
func Build(eventType enums.OutboxEventType, envelope *outbox.PayloadEnvelope, payload any) ([]models.Notification, error) {
	var eventID *uuid.UUID
	if envelope != nil {
		if id, err := uuid.Parse(envelope.EventID); err == nil {
			eventID = &id
		}
	}
	b := builder{eventID: eventID}

	switch p := payload.(type) {
	case *payloads.OrderEvent:
		return b.order(eventType, envelope, p), nil
	case *payloads.OrderReminderEvent:
		return b.reminder(p), nil
	case *payloads.ListingBannedEvent:
		b.add(p.OwnerID, enums.NotificationAccountBanned, nil, "Listing banned",
			fmt.Sprintf("Your listing was banned: %s. %d open hires were refunded.", p.Reason, len(p.CanceledOrders)))
	case *payloads.ListingUnbannedEvent:
		return nil, nil
	case *payloads.ReviewSubmittedEvent:
		b.add(p.OwnerID, enums.NotificationReview, &p.OrderID, "New review",
			fmt.Sprintf("A renter rated your session %d/5.", p.Rating))
	case *payloads.RewardGrantedEvent:
		b.add(p.OwnerID, enums.NotificationReward, &p.OrderID, "Milestone reached",
			fmt.Sprintf("You passed %d hired minutes and earned %d coins.", p.MinutesRequired, p.CoinAwarded))
	case *payloads.WalletEvent:
		switch p.Kind {
		case enums.LedgerKindTopup:
			b.add(p.AccountID, enums.NotificationTopup, nil, "Top-up received",
				fmt.Sprintf("%d coins were added to your wallet.", p.Amount))
		case enums.LedgerKindWithdraw:
			b.add(p.AccountID, enums.NotificationWithdraw, nil, "Withdrawal recorded",
				fmt.Sprintf("%d coins were withdrawn from your wallet.", p.Amount))
		}
	default:
		return nil, fmt.Errorf("unsupported payload %T for %s", payload, eventType)
	}
	return b.rows, nil
}

type builder struct {
	eventID *uuid.UUID
	rows    []models.Notification
}

func (b *builder) add(accountID uuid.UUID, typ enums.NotificationType, orderID *uuid.UUID, title, message string) {
	if accountID == uuid.Nil {
		return
	}
	b.rows = append(b.rows, models.Notification{
		AccountID: accountID,
		EventID:   b.eventID,
		Type:      typ,
		Title:     title,
		Message:   message,
		OrderID:   orderID,
	})
}

func (b *builder) order(eventType enums.OutboxEventType, envelope *outbox.PayloadEnvelope, p *payloads.OrderEvent) []models.Notification {
	orderID := p.OrderID
	window := p.WindowStart.Format("2006-01-02 15:04") + " UTC"
	switch eventType {
	case enums.EventOrderCreated:
		b.add(p.OwnerID, enums.NotificationRentRequest, &orderID, "New hire request",
			fmt.Sprintf("You have a new hire request for %s worth %d coins.", window, p.TotalPrice))
		b.add(p.RenterID, enums.NotificationRentReceived, &orderID, "Hire requested",
			fmt.Sprintf("%d coins are held until the player responds.", p.TotalPrice))
	case enums.EventOrderConfirmed:
		b.add(p.RenterID, enums.NotificationRentConfirmed, &orderID, "Hire confirmed",
			fmt.Sprintf("Your hire starting %s was confirmed.", window))
	case enums.EventOrderRejected:
		b.add(p.RenterID, enums.NotificationRentRejected, &orderID, "Hire rejected",
			fmt.Sprintf("Your hire was rejected and %d coins were refunded.", p.TotalPrice))
	case enums.EventOrderCanceled:
		if p.Trigger == enums.TriggerBan {
			b.add(p.RenterID, enums.NotificationCancelBan, &orderID, "Hire canceled",
				fmt.Sprintf("The listing was banned. %d coins were refunded.", p.TotalPrice))
			break
		}
		msg := fmt.Sprintf("The hire starting %s was canceled.", window)
		actor := uuid.Nil
		if envelope != nil && envelope.Actor != nil {
			actor = envelope.Actor.AccountID
		}
		if actor != p.RenterID {
			b.add(p.RenterID, enums.NotificationRentCanceled, &orderID, "Hire canceled", msg)
		}
		if actor != p.OwnerID {
			b.add(p.OwnerID, enums.NotificationRentCanceled, &orderID, "Hire canceled", msg)
		}
	case enums.EventOrderCompleted:
		typ, title := enums.NotificationRentCompleted, "Hire completed"
		if p.Trigger == enums.TriggerScheduler {
			typ, title = enums.NotificationAutoComplete, "Hire completed automatically"
		}
		b.add(p.RenterID, typ, &orderID, title, "Your session has ended.")
		b.add(p.OwnerID, typ, &orderID, title,
			fmt.Sprintf("Your session has ended. %d coins were released to you.", p.Amount))
		if p.ReviewRequested {
			b.add(p.RenterID, enums.NotificationReviewReminder, &orderID, "How was your session?",
				"Leave a review for the player you hired.")
		}
	}
	return b.rows
}

func (b *builder) reminder(p *payloads.OrderReminderEvent) []models.Notification {
	orderID := p.OrderID
	at := p.At.Format("15:04") + " UTC"
	typ, title, msg := enums.NotificationOrderUpcoming, "Hire starting soon", "Your hire starts at "+at+"."
	if p.Kind == payloads.ReminderEnding {
		typ, title, msg = enums.NotificationOrderEnding, "Hire ending soon", "Your hire ends at "+at+"."
	}
	b.add(p.RenterID, typ, &orderID, title, msg)
	b.add(p.OwnerID, typ, &orderID, title, msg)
	return b.rows
}
