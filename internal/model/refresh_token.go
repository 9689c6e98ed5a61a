package model

import "time"

// RefreshToken is the revocable half of the token pair. The row id doubles as
// the jti claim of the signed refresh token, so the row must exist before the
// token naming it can be signed. Deleting the row is the revocation mechanism.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
