package models

import "fmt"

// MaxCharacters верхняя граница персонажей в одной истории.
const MaxCharacters = 3

// WizardSelection выбор пользователя в мастере создания истории.
type WizardSelection struct {
	AgeGroup     AgeGroup `json:"ageGroup"`
	CharacterIDs []int64  `json:"characterIds"`
	ThemeID      int64    `json:"themeId"`
	ChildName    string   `json:"childName,omitempty"`
	ChildID      *int64   `json:"childId,omitempty"`
	TextOnly     bool     `json:"textOnly"`
}

// NewWizardSelection возвращает пустой выбор. Иллюстрации включаются явно.
func NewWizardSelection() WizardSelection {
	return WizardSelection{TextOnly: true}
}

// Validate проверяет, что выбор можно отправлять. Ошибка оборачивает
// ErrInvalidSelection и конкретное нарушенное правило.
func (s WizardSelection) Validate() error {
	if s.AgeGroup == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, ErrMissingAgeGroup)
	}
	if !s.AgeGroup.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSelection, ErrInvalidAgeGroup, s.AgeGroup)
	}
	if len(s.CharacterIDs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, ErrMissingCharacters)
	}
	if len(s.CharacterIDs) > MaxCharacters {
		return fmt.Errorf("%w: %w: %d > %d", ErrInvalidSelection, ErrTooManyCharacters, len(s.CharacterIDs), MaxCharacters)
	}
	seen := make(map[int64]struct{}, len(s.CharacterIDs))
	for _, id := range s.CharacterIDs {
		if id <= 0 {
			return fmt.Errorf("%w: %w: id %d", ErrInvalidSelection, ErrCharacterNotFound, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %w: id %d", ErrInvalidSelection, ErrDuplicateCharacter, id)
		}
		seen[id] = struct{}{}
	}
	if s.ThemeID <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, ErrMissingTheme)
	}
	return nil
}

// Clone копирует выбор вместе со срезами.
func (s WizardSelection) Clone() WizardSelection {
	out := s
	if s.CharacterIDs != nil {
		out.CharacterIDs = append([]int64(nil), s.CharacterIDs...)
	}
	if s.ChildID != nil {
		id := *s.ChildID
		out.ChildID = &id
	}
	return out
}
