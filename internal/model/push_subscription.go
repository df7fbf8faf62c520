package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// An empty list subscribes to every bin.
	Bins []SubscribedBin `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// SubscribedBin links a subscription to one bin it wants alerts for.
type SubscribedBin struct {
	Endpoint string `gorm:"primaryKey"`
	BinID    string `gorm:"primaryKey;size:64;index"`
}

// BinIDs lists the bins the subscription is limited to.
func (p PushSubscription) BinIDs() []string {
	ids := make([]string, len(p.Bins))
	for i, b := range p.Bins {
		ids[i] = b.BinID
	}
	return ids
}
