package entity

import (
	"time"
)

// Member is a community member known to the ledger. Created lazily on first
// interaction; TotalXP is mutated only inside a completion transaction and
// must always equal the sum of the member's completion records.
type Member struct {
	DiscordID   string    `gorm:"primaryKey;size:32" json:"discord_id"`
	DiscordName string    `gorm:"size:100;not null" json:"discord_name"`
	TotalXP     int       `gorm:"not null;default:0" json:"total_xp"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"-"`

	Completions []CompletionRecord `gorm:"foreignKey:DiscordID;references:DiscordID" json:"-"`
}

// CompletionRecord is one accepted completion. Append-only; XPEarned is the
// catalog value at grant time.
type CompletionRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DiscordID   string    `gorm:"size:32;index:idx_member_task,priority:1;not null" json:"discord_id"`
	TaskID      string    `gorm:"size:16;index:idx_member_task,priority:2;not null" json:"task_id"`
	XPEarned    int       `gorm:"not null" json:"xp_earned"`
	Comment     string    `gorm:"size:500" json:"comment,omitempty"`
	CompletedAt time.Time `gorm:"autoCreateTime;index" json:"completed_at"`
}

// AwardClaim marks a (message, emoji) trigger pair as honored. The composite
// primary key makes the claim an atomic insert-or-fail. Rows are never
// deleted: once claimed, a pair is never retried even if the award itself
// failed afterwards.
type AwardClaim struct {
	MessageID string    `gorm:"primaryKey;size:32" json:"message_id"`
	Emoji     string    `gorm:"primaryKey;size:32" json:"emoji"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}
