package dto

// LeaderboardEntry is one member's standing, ordered by all-time XP.
// Position is 1-based.
type LeaderboardEntry struct {
	Position    int    `json:"position"`
	DiscordID   string `json:"discord_id"`
	DiscordName string `json:"discord_name"`
	TotalXP     int    `json:"total_xp"`
	Tier        int    `json:"tier"`
	TierName    string `json:"tier_name"`
	NextTierXP  *int   `json:"next_tier_xp,omitempty"`
}
