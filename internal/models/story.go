package models

import (
	"fmt"
	"time"
)

// Story сгенерированная история. Последовательность глав фиксируется при
// создании, после этого меняются только медиа-поля глав.
type Story struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	ChildID      *int64    `json:"childId,omitempty"`
	Title        string    `json:"title"`
	AgeGroup     AgeGroup  `json:"ageGroup"`
	CharacterIDs []int64   `json:"characterIds"`
	ThemeID      int64     `json:"themeId"`
	Summary      string    `json:"summary"`
	ReadingTime  int       `json:"readingTime"`
	Personalized bool      `json:"personalized"`
	Chapters     []Chapter `json:"chapters"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Chapter глава истории, адресуется только индексом.
type Chapter struct {
	Index         int     `json:"index"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	ImagePrompt   string  `json:"imagePrompt"`
	ImageURL      *string `json:"imageUrl"`
	ImageIsBackup bool    `json:"imageIsBackup"`
	AudioURL      *string `json:"audioUrl"`
}

// StorySummary строка списка историй пользователя.
type StorySummary struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	AgeGroup     string    `json:"ageGroup" db:"age_group"`
	Summary      string    `json:"summary" db:"summary"`
	ReadingTime  int       `json:"readingTime" db:"reading_time"`
	ChapterCount int       `json:"chapterCount" db:"chapter_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// TotalChapters количество глав.
func (s *Story) TotalChapters() int { return len(s.Chapters) }

// Chapter возвращает главу по индексу.
func (s *Story) Chapter(index int) (*Chapter, error) {
	if index < 0 || index >= len(s.Chapters) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrChapterNotFound, index, len(s.Chapters))
	}
	return &s.Chapters[index], nil
}

// SetChapterImage обновляет изображение главы в памяти.
func (s *Story) SetChapterImage(index int, url string, isBackup bool) {
	if index < 0 || index >= len(s.Chapters) {
		return
	}
	u := url
	s.Chapters[index].ImageURL = &u
	s.Chapters[index].ImageIsBackup = isBackup
}

// SetChapterAudio обновляет озвучку главы в памяти.
func (s *Story) SetChapterAudio(index int, url string) {
	if index < 0 || index >= len(s.Chapters) {
		return
	}
	u := url
	s.Chapters[index].AudioURL = &u
}

// OwnedBy проверяет владельца истории.
func (s *Story) OwnedBy(userID int64) bool { return s.UserID == userID }
