package handler

import "fmt"

// Ключи ресурсов для поля invalidates.
const (
	keyStories         = "stories"
	keyReadingSessions = "reading-sessions"
	keySession         = "session"
)

func storyKey(id int64) string { return fmt.Sprintf("story:%d", id) }

func readingSessionKey(id int64) string { return fmt.Sprintf("reading-session:%d", id) }
