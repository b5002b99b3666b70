package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriberStatusSubscribed   = "subscribed"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

type NewsletterSubscriber struct {
	ID               uint   `gorm:"primaryKey"`
	Email            string `gorm:"not null;uniqueIndex;size:255"`
	FirstName        string `gorm:"size:50"`
	Status           string `gorm:"not null;default:subscribed;index;size:16"`
	Source           string `gorm:"size:64"`
	UnsubscribeToken string `gorm:"not null;uniqueIndex;size:64"`
	SubscribedAt     time.Time
	UnsubscribedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (s *NewsletterSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.UnsubscribeToken == "" {
		s.UnsubscribeToken = uuid.NewString()
	}
	return nil
}
