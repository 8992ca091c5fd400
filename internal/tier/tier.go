package tier

// Tier is the coarse role classification derived from total XP. It is the
// single threshold table for the whole system: the API, the leaderboard and
// the bot must all resolve tiers through ForXP.
type Tier int

const (
	ConcernedCitizen Tier = 1
	Activist         Tier = 2
	Guardian         Tier = 3
)

// XP thresholds. A boundary value belongs to the higher tier.
const (
	ActivistXP = 150
	GuardianXP = 400
)

// ForXP maps accumulated XP to a tier. Monotonic step function, no memory of
// any prior tier.
func ForXP(xp int) Tier {
	switch {
	case xp >= GuardianXP:
		return Guardian
	case xp >= ActivistXP:
		return Activist
	default:
		return ConcernedCitizen
	}
}

func (t Tier) Name() string {
	switch t {
	case Guardian:
		return "Guardian of Humanity"
	case Activist:
		return "Activist"
	default:
		return "Concerned Citizen"
	}
}

// NextTargetXP returns the XP needed for the next tier, or false when the
// top tier is already reached.
func NextTargetXP(xp int) (int, bool) {
	switch ForXP(xp) {
	case ConcernedCitizen:
		return ActivistXP, true
	case Activist:
		return GuardianXP, true
	default:
		return 0, false
	}
}
