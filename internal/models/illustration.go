package models

// IllustrationOutcome итог генерации иллюстрации для UI.
type IllustrationOutcome string

const (
	OutcomeSuccess           IllustrationOutcome = "success"
	OutcomeSuccessWithBackup IllustrationOutcome = "success_with_backup"
	OutcomeFailure           IllustrationOutcome = "failure"
)

// IllustrationResult результат для одной главы.
// Success && IsBackup означает "запасная картинка показана", !Success означает "показать нечего".
type IllustrationResult struct {
	ChapterIndex int                 `json:"chapterIndex"`
	Success      bool                `json:"success"`
	ImageURL     string              `json:"imageUrl,omitempty"`
	IsBackup     bool                `json:"isBackup"`
	Error        string              `json:"error,omitempty"`
	Outcome      IllustrationOutcome `json:"outcome"`
}

// NewProviderSuccess результат успешной генерации провайдером.
func NewProviderSuccess(index int, url string) IllustrationResult {
	return IllustrationResult{ChapterIndex: index, Success: true, ImageURL: url, Outcome: OutcomeSuccess}
}

// NewBackupSuccess результат с запасной картинкой. cause сохраняется для UI.
func NewBackupSuccess(index int, url string, cause string) IllustrationResult {
	return IllustrationResult{
		ChapterIndex: index,
		Success:      true,
		ImageURL:     url,
		IsBackup:     true,
		Error:        cause,
		Outcome:      OutcomeSuccessWithBackup,
	}
}

// NewIllustrationFailure результат без изображения.
func NewIllustrationFailure(index int, message string) IllustrationResult {
	return IllustrationResult{ChapterIndex: index, Error: message, Outcome: OutcomeFailure}
}

// BulkIllustrationResult итог пакетной генерации. SuccessCount считает только
// изображения от провайдера, запасные идут в BackupCount.
type BulkIllustrationResult struct {
	Results      []IllustrationResult `json:"results"`
	SuccessCount int                  `json:"successCount"`
	BackupCount  int                  `json:"backupCount"`
	FailedCount  int                  `json:"failedCount"`
	TotalCount   int                  `json:"totalCount"`
}

// Tally пересчитывает счетчики по Results.
func (b *BulkIllustrationResult) Tally() {
	b.SuccessCount, b.BackupCount, b.FailedCount = 0, 0, 0
	b.TotalCount = len(b.Results)
	for _, r := range b.Results {
		switch {
		case r.Success && !r.IsBackup:
			b.SuccessCount++
		case r.Success && r.IsBackup:
			b.BackupCount++
		default:
			b.FailedCount++
		}
	}
}

// NarrationResult результат озвучки главы.
type NarrationResult struct {
	ChapterIndex int    `json:"chapterIndex"`
	Success      bool   `json:"success"`
	AudioURL     string `json:"audioUrl,omitempty"`
	Error        string `json:"error,omitempty"`
}
