package catalog

// defaultTasks is the built-in catalog. Onboarding tasks sit at level 0 and
// gate entry into the outreach and lobbying paths; special tasks are
// moderator-only bonus grants.
var defaultTasks = []Task{
	// Onboarding
	{ID: "on1", Name: "Introduce yourself in the #welcome channel", Path: PathOnboarding, Level: 0, XP: 10, Repeatable: false, Icon: "player"},
	{ID: "on2", Name: "Read the onboarding document", Path: PathOnboarding, Level: 0, XP: 15, Repeatable: false, Icon: "book"},
	{ID: "on3", Name: "Join a welcome call", Path: PathOnboarding, Level: 0, XP: 20, Repeatable: false, Icon: "conversation"},

	// Outreach
	{ID: "o1", Name: "Share a campaign video with a friend", Path: PathOutreach, Level: 1, XP: 10, Repeatable: true, Icon: "share"},
	{ID: "o2", Name: "Post about AI risk on social media", Path: PathOutreach, Level: 1, XP: 15, Repeatable: true, Icon: "smartphone"},
	{ID: "o3", Name: "Explain AGI risk to someone in person", Path: PathOutreach, Level: 1, XP: 20, Repeatable: true, Icon: "talk"},
	{ID: "o4", Name: "Bring a new member to the Discord", Path: PathOutreach, Level: 2, XP: 50, Repeatable: false, Icon: "person-add"},
	{ID: "o5", Name: "Organize a local meetup", Path: PathOutreach, Level: 2, XP: 80, Repeatable: false, Icon: "round-table"},
	{ID: "o6", Name: "Give a talk about AI safety", Path: PathOutreach, Level: 3, XP: 120, Repeatable: false, Icon: "podium"},

	// Lobbying
	{ID: "l1", Name: "Sign a petition", Path: PathLobbying, Level: 1, XP: 10, Repeatable: false, Icon: "scroll-signed"},
	{ID: "l2", Name: "Write an email to a representative", Path: PathLobbying, Level: 1, XP: 25, Repeatable: true, Icon: "envelope"},
	{ID: "l3", Name: "Attend the weekly meeting", Path: PathLobbying, Level: 1, XP: 15, Repeatable: true, Icon: "video-conference"},
	{ID: "l4", Name: "Attend a political event about AI", Path: PathLobbying, Level: 2, XP: 40, Repeatable: true, Icon: "capitol"},
	{ID: "l5", Name: "Meet a politician or staffer in person", Path: PathLobbying, Level: 2, XP: 100, Repeatable: false, Icon: "handshake"},
	{ID: "l6", Name: "Write an op-ed or letter to the editor", Path: PathLobbying, Level: 3, XP: 80, Repeatable: false, Icon: "newspaper"},

	// Special (moderator-granted)
	{ID: "s1", Name: "Small contribution", Path: PathSpecial, Level: 1, XP: 30, Repeatable: true, Icon: "star"},
	{ID: "s2", Name: "Medium contribution", Path: PathSpecial, Level: 1, XP: 75, Repeatable: true, Icon: "double-star"},
	{ID: "s3", Name: "Large contribution", Path: PathSpecial, Level: 1, XP: 150, Repeatable: true, Icon: "triple-star"},
}
