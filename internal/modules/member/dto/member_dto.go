package dto

type ProfileResponse struct {
	DiscordID      string   `json:"discord_id"`
	DiscordName    string   `json:"discord_name"`
	TotalXP        int      `json:"total_xp"`
	Tier           int      `json:"tier"`
	TierName       string   `json:"tier_name"`
	NextTierXP     *int     `json:"next_tier_xp,omitempty"`
	CompletedTasks []string `json:"completed_tasks"`
}
