package model

// UserProfile holds the learner's stated goals and interests.
// Both fields hold raw decoded JSON; list-shaped values are expected but not guaranteed.
type UserProfile struct {
	UserID           int64 `json:"user_id"`
	LearningGoals    any   `json:"learning_goals"`
	InterestedTopics any   `json:"interested_topics"`
}

// PersonalizationContext is the profile summary forwarded to the gateway.
type PersonalizationContext struct {
	LearningGoals    string `json:"learning_goals"`
	InterestedTopics string `json:"interested_topics"`
}
