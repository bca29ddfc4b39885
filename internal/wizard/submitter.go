package wizard

import (
	"context"
	"sync"

	"storybook-server/internal/models"
)

// Assembler сборка истории в процессе.
type Assembler interface {
	Assemble(ctx context.Context, session models.Session, sel models.WizardSelection) (*models.Story, error)
}

// AssemblySubmitter привязывает мастер к сервису сборки и сессии пользователя.
type AssemblySubmitter struct {
	assembler Assembler
	session   models.Session

	mu   sync.Mutex
	last *models.Story
}

func NewAssemblySubmitter(assembler Assembler, session models.Session) *AssemblySubmitter {
	return &AssemblySubmitter{assembler: assembler, session: session}
}

func (s *AssemblySubmitter) Submit(ctx context.Context, sel models.WizardSelection) (int64, error) {
	story, err := s.assembler.Assemble(ctx, s.session, sel)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.last = story
	s.mu.Unlock()
	return story.ID, nil
}

// Story последняя собранная история, nil до первой успешной отправки.
func (s *AssemblySubmitter) Story() *models.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
