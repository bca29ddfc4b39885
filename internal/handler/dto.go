package handler

import "storybook-server/internal/models"

// mutationResponse ответ на изменяющий запрос. Invalidates перечисляет
// ключи ресурсов, которые клиент должен перечитать.
type mutationResponse[T any] struct {
	Data        T        `json:"data"`
	Invalidates []string `json:"invalidates"`
}

type catalogQuery struct {
	AgeGroup string `form:"ageGroup" json:"ageGroup" binding:"omitempty,agegroup"`
}

type listStoriesQuery struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" json:"offset" binding:"omitempty,min=0"`
}

// generateStoryRequest выбор из мастера целиком.
type generateStoryRequest struct {
	AgeGroup     string  `json:"ageGroup" binding:"required,agegroup"`
	CharacterIDs []int64 `json:"characterIds" binding:"required,min=1,max=3,dive,gt=0"`
	ThemeID      int64   `json:"themeId" binding:"required,gt=0"`
	ChildName    string  `json:"childName" binding:"max=60"`
	ChildID      *int64  `json:"childId" binding:"omitempty,gt=0"`
	// по умолчанию история без иллюстраций
	TextOnly     *bool   `json:"textOnly"`
}

func (r generateStoryRequest) selection() models.WizardSelection {
	sel := models.NewWizardSelection()
	sel.AgeGroup = models.AgeGroup(r.AgeGroup)
	sel.CharacterIDs = r.CharacterIDs
	sel.ThemeID = r.ThemeID
	sel.ChildName = r.ChildName
	sel.ChildID = r.ChildID
	if r.TextOnly != nil {
		sel.TextOnly = *r.TextOnly
	}
	return sel
}

type generateStoryResponse struct {
	Story              *models.Story `json:"story"`
	IllustrationTaskID string        `json:"illustrationTaskId,omitempty"`
}

type chapterImageRequest struct {
	Prompt string `json:"prompt" binding:"max=1000"`
}

type illustrationTaskResponse struct {
	TaskID  string `json:"taskId"`
	StoryID int64  `json:"storyId"`
}

type recordProgressRequest struct {
	ChildID        int64 `json:"childId" binding:"required,gt=0"`
	StoryID        int64 `json:"storyId" binding:"required,gt=0"`
	ChapterIndex   int   `json:"chapterIndex" binding:"min=0"`
	TotalChapters  int   `json:"totalChapters" binding:"min=0"`
	ElapsedMinutes int   `json:"elapsedMinutes" binding:"min=0"`
}

type updateReadingSessionRequest struct {
	ChapterIndex   *int `json:"chapterIndex" binding:"required,min=0"`
	ElapsedMinutes int  `json:"elapsedMinutes" binding:"min=0"`
}

type listResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
