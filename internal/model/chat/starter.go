package chat

// Starters are the quick-start prompts offered on an empty conversation.
func Starters() []string {
	return []string{
		"How are you feeling today?",
		"What’s one thing on your mind?",
		"Do you want to plan your day?",
		"What do you want to improve this week?",
	}
}
