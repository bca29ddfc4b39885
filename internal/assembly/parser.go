package assembly

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"storybook-server/internal/ai"
)

// GeneratedChapter глава в ответе провайдера.
type GeneratedChapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedStory структурированный ответ провайдера. Допускается как вариант с
// массивом chapters, так и единый content.
type GeneratedStory struct {
	Title       string             `json:"title"`
	Summary     string             `json:"summary"`
	Content     string             `json:"content"`
	ReadingTime readingTime        `json:"readingTime"`
	Chapters    []GeneratedChapter `json:"chapters"`
}

// readingTime принимает число, строку с числом ("5", "5 minutos") или null.
type readingTime int

var leadingDigits = regexp.MustCompile(`\d+`)

func (r *readingTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*r = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*r = readingTime(int(f + 0.5))
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if m := leadingDigits.FindString(str); m != "" {
		n, _ := strconv.Atoi(m)
		*r = readingTime(n)
		return nil
	}
	*r = 0
	return nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ParseGeneratedStory разбирает ответ провайдера. Любая ошибка формата
// возвращается как ai.ErrGenerationFormat.
func ParseGeneratedStory(raw string) (*GeneratedStory, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, ai.NewFormatError("ответ не содержит JSON-объекта")
	}

	var gs GeneratedStory
	if err := json.Unmarshal([]byte(payload), &gs); err != nil {
		return nil, ai.NewFormatError("не удалось разобрать JSON истории: %v", err)
	}

	gs.Title = strings.TrimSpace(gs.Title)
	gs.Summary = strings.TrimSpace(gs.Summary)
	gs.Content = strings.TrimSpace(gs.Content)

	chapters := gs.Chapters[:0]
	for _, ch := range gs.Chapters {
		ch.Title = strings.TrimSpace(ch.Title)
		ch.Content = strings.TrimSpace(ch.Content)
		if ch.Content != "" {
			chapters = append(chapters, ch)
		}
	}
	gs.Chapters = chapters

	if gs.Title == "" {
		return nil, ai.NewFormatError("в истории нет заголовка")
	}
	if gs.Content == "" && len(gs.Chapters) == 0 {
		return nil, ai.NewFormatError("в истории нет текста")
	}
	return &gs, nil
}

// extractJSONObject снимает ```json ограждение и обрезает текст вокруг объекта.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
