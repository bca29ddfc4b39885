package illustration

import (
	"fmt"
	"strings"

	"storybook-server/internal/models"
)

// BackupPool запасные иллюстрации по возрастным группам.
type BackupPool struct {
	byAge    map[models.AgeGroup][]string
	fallback []string
}

// NewBackupPool пустые строки в списках отбрасываются.
func NewBackupPool(byAge map[models.AgeGroup][]string, fallback []string) *BackupPool {
	p := &BackupPool{byAge: make(map[models.AgeGroup][]string, len(byAge)), fallback: cleanURLs(fallback)}
	for ag, urls := range byAge {
		if c := cleanURLs(urls); len(c) > 0 {
			p.byAge[ag] = c
		}
	}
	return p
}

// Pick выбирает запасную картинку для главы. Выбор детерминирован, чтобы
// соседние главы получали разные картинки. Пустой пул дает ErrBackupPoolExhausted.
func (p *BackupPool) Pick(ag models.AgeGroup, storyID int64, chapterIndex int) (string, error) {
	if p == nil {
		return "", models.ErrBackupPoolExhausted
	}
	urls := p.byAge[ag]
	if len(urls) == 0 {
		urls = p.fallback
	}
	if len(urls) == 0 {
		return "", fmt.Errorf("%w: age group %q", models.ErrBackupPoolExhausted, ag)
	}
	n := int64(len(urls))
	i := (storyID + int64(chapterIndex)) % n
	if i < 0 {
		i += n
	}
	return urls[i], nil
}

// Size общее число картинок для группы.
func (p *BackupPool) Size(ag models.AgeGroup) int {
	if p == nil {
		return 0
	}
	if urls := p.byAge[ag]; len(urls) > 0 {
		return len(urls)
	}
	return len(p.fallback)
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
