package models

import "time"

// ReadingSession прогресс чтения одной истории одним ребенком.
type ReadingSession struct {
	ID          int64     `json:"id" db:"id"`
	ChildID     int64     `json:"childId" db:"child_id"`
	StoryID     int64     `json:"storyId" db:"story_id"`
	Progress    int       `json:"progress" db:"progress"`
	Completed   bool      `json:"completed" db:"completed"`
	Duration    int       `json:"duration" db:"duration"`
	LastChapter int       `json:"lastChapter" db:"last_chapter"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
