package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives rows a client-side id so inserts behave the same on Postgres and SQLite.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (a *Account) BeforeCreate(*gorm.DB) error      { assignID(&a.ID); return nil }
func (l *Listing) BeforeCreate(*gorm.DB) error      { assignID(&l.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { assignID(&o.ID); return nil }
func (e *LedgerEntry) BeforeCreate(*gorm.DB) error  { assignID(&e.ID); return nil }
func (r *RewardRecord) BeforeCreate(*gorm.DB) error { assignID(&r.ID); return nil }
func (r *Review) BeforeCreate(*gorm.DB) error       { assignID(&r.ID); return nil }
func (b *ListingBan) BeforeCreate(*gorm.DB) error   { assignID(&b.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error { assignID(&n.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error  { assignID(&e.ID); return nil }
func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error    { assignID(&d.ID); return nil }
