package illustration

import (
	"context"
	"fmt"
	"sync"
)

// Guard не дает запустить две генерации одной главы одновременно.
// Acquire возвращает models.ErrIllustrationInProgress, если глава занята.
type Guard interface {
	Acquire(ctx context.Context, storyID int64, chapterIndex int) (release func(), err error)
}

// LocalGuard in-process реализация для одного экземпляра сервиса.
type LocalGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{active: make(map[string]struct{})}
}

func (g *LocalGuard) Acquire(_ context.Context, storyID int64, chapterIndex int) (func(), error) {
	key := ChapterKey(storyID, chapterIndex)

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, errInProgress(storyID, chapterIndex)
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}

// ChapterKey ключ блокировки главы.
func ChapterKey(storyID int64, chapterIndex int) string {
	return fmt.Sprintf("storybook:illustration:lock:%d:%d", storyID, chapterIndex)
}
