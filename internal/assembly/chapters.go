package assembly

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"storybook-server/internal/models"
)

const (
	// MaxImageExcerptRunes длина отрывка главы в промпте иллюстрации.
	MaxImageExcerptRunes = 300
	wordsPerMinute       = 150
)

// chapterMarker строка-заголовок главы: "Capítulo 2: ...", "Chapter II", "## ...".
var chapterMarker = regexp.MustCompile(`(?im)^[ \t]*(?:(?:cap[íi]tulo|chapter)[ \t]+(?:\d+|[ivxlc]+)\b[ \t]*[:.\-–—]?[ \t]*(.*)|#{1,3}[ \t]+(.+))[ \t]*$`)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// BuildChapters раскладывает историю на главы: массив chapters провайдера,
// иначе явные маркеры в content, иначе группировка абзацев по уровню.
func BuildChapters(gs *GeneratedStory, tier Tier) []models.Chapter {
	var raw []GeneratedChapter
	switch {
	case len(gs.Chapters) > 0:
		raw = gs.Chapters
	default:
		raw = splitByMarkers(gs.Content)
		if len(raw) < 2 {
			body := gs.Content
			if len(raw) == 1 {
				// единственный маркер обычно заголовок всей истории
				body = raw[0].Content
			}
			raw = groupParagraphs(body, tier.ParagraphsPerChapter)
		}
	}

	chapters := make([]models.Chapter, 0, len(raw))
	for i, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = fmt.Sprintf("Capítulo %d", i+1)
		}
		content := strings.TrimSpace(r.Content)
		chapters = append(chapters, models.Chapter{
			Index:       i,
			Title:       title,
			Content:     content,
			ImagePrompt: BuildImagePrompt(title, content),
		})
	}
	return chapters
}

// splitByMarkers режет текст по заголовкам глав. Текст до первого маркера
// присоединяется к первой главе.
func splitByMarkers(content string) []GeneratedChapter {
	locs := chapterMarker.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}

	preface := strings.TrimSpace(content[:locs[0][0]])
	out := make([]GeneratedChapter, 0, len(locs))
	for i, loc := range locs {
		title := ""
		switch {
		case loc[2] >= 0:
			title = content[loc[2]:loc[3]]
		case loc[4] >= 0:
			title = content[loc[4]:loc[5]]
		}
		bodyEnd := len(content)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		body := strings.TrimSpace(content[loc[1]:bodyEnd])
		if i == 0 && preface != "" {
			body = strings.TrimSpace(preface + "\n\n" + body)
		}
		if body == "" {
			continue
		}
		out = append(out, GeneratedChapter{Title: strings.TrimSpace(title), Content: body})
	}
	return out
}

// groupParagraphs объединяет абзацы по perChapter в главу.
func groupParagraphs(content string, perChapter int) []GeneratedChapter {
	if perChapter < 1 {
		perChapter = 1
	}
	paragraphs := splitParagraphs(content)
	if len(paragraphs) == 0 {
		return nil
	}

	var out []GeneratedChapter
	for i := 0; i < len(paragraphs); i += perChapter {
		end := i + perChapter
		if end > len(paragraphs) {
			end = len(paragraphs)
		}
		out = append(out, GeneratedChapter{Content: strings.Join(paragraphs[i:end], "\n\n")})
	}
	return out
}

func splitParagraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	parts := paragraphBreak.Split(content, -1)
	if len(parts) == 1 {
		// без пустых строк между абзацами
		parts = strings.Split(content, "\n")
	}
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// BuildImagePrompt заголовок главы и начало текста, обрезанное по границе слова.
func BuildImagePrompt(title, content string) string {
	excerpt := Excerpt(content, MaxImageExcerptRunes)
	if title == "" {
		return excerpt
	}
	if excerpt == "" {
		return title
	}
	return title + ": " + excerpt
}

// Excerpt возвращает не более maxRunes символов, не разрывая слово.
func Excerpt(text string, maxRunes int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	all := []rune(text)
	runes := all[:maxRunes]
	cut := len(runes)
	if !unicode.IsSpace(all[maxRunes]) {
		for i := len(runes) - 1; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}
	return strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

// EstimateReadingTime минуты чтения по числу слов, не меньше одной.
func EstimateReadingTime(chapters []models.Chapter) int {
	words := 0
	for _, ch := range chapters {
		words += len(strings.Fields(ch.Content))
	}
	minutes := words / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
