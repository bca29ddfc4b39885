package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storybook-server/internal/ai"
	"storybook-server/internal/models"
)

// Step шаг мастера.
type Step string

const (
	StepAgeGroup   Step = "age_group"
	StepCharacters Step = "characters"
	StepTheme      Step = "theme"
	StepSummary    Step = "summary"
	StepSubmitting Step = "submitting"
	StepDone       Step = "done"
	StepFailed     Step = "failed"
)

var (
	ErrSubmitInProgress = errors.New("story submission already in progress")
	ErrFirstStep        = errors.New("already at the first step")
	ErrNotEditable      = errors.New("selection cannot be changed in the current step")
	ErrCannotSubmit     = errors.New("story can only be submitted from the summary")
	ErrLastStep         = errors.New("no step after summary, submit instead")
)

// GateError шаг нельзя покинуть, пока не выполнено его условие.
type GateError struct {
	Step Step
	Err  error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("step %s incomplete: %v", e.Step, e.Err)
}

func (e *GateError) Unwrap() error { return e.Err }

// Submitter отправляет готовый выбор на сборку истории и возвращает ее ID.
type Submitter interface {
	Submit(ctx context.Context, sel models.WizardSelection) (int64, error)
}

// Snapshot состояние мастера для отображения.
type Snapshot struct {
	Step      Step                   `json:"step"`
	Selection models.WizardSelection `json:"selection"`
	StoryID   int64                  `json:"storyId,omitempty"`
	Err       error                  `json:"-"`
	Retryable bool                   `json:"retryable"`
	CanSubmit bool                   `json:"canSubmit"`
}

// Wizard пошаговый выбор параметров истории.
// Взаимное исключение локальное: mutex плюс состояние Submitting.
type Wizard struct {
	mu        sync.Mutex
	step      Step
	sel       models.WizardSelection
	storyID   int64
	lastErr   error
	submitter Submitter
}

func New(submitter Submitter) *Wizard {
	return &Wizard{
		step:      StepAgeGroup,
		sel:       models.NewWizardSelection(),
		submitter: submitter,
	}
}

// Next переходит на следующий шаг, если условие текущего выполнено.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepAgeGroup:
		if w.sel.AgeGroup == "" {
			return &GateError{Step: w.step, Err: models.ErrMissingAgeGroup}
		}
		w.step = StepCharacters
	case StepCharacters:
		if len(w.sel.CharacterIDs) == 0 {
			return &GateError{Step: w.step, Err: models.ErrMissingCharacters}
		}
		w.step = StepTheme
	case StepTheme:
		if w.sel.ThemeID == 0 {
			return &GateError{Step: w.step, Err: models.ErrMissingTheme}
		}
		w.step = StepSummary
	case StepSummary:
		return ErrLastStep
	case StepSubmitting:
		return ErrSubmitInProgress
	default:
		return ErrNotEditable
	}
	return nil
}

// Prev возвращает на предыдущий шаг. Из Done и Failed возврат ведет к Summary.
func (w *Wizard) Prev() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepAgeGroup:
		return ErrFirstStep
	case StepCharacters:
		w.step = StepAgeGroup
	case StepTheme:
		w.step = StepCharacters
	case StepSummary:
		w.step = StepTheme
	case StepSubmitting:
		return ErrSubmitInProgress
	case StepDone, StepFailed:
		w.step = StepSummary
		w.lastErr = nil
	}
	return nil
}

// SetAgeGroup смена группы сбрасывает персонажей и тему.
func (w *Wizard) SetAgeGroup(ag models.AgeGroup) error {
	if !ag.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidAgeGroup, ag)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	if w.sel.AgeGroup != ag {
		w.sel.CharacterIDs = nil
		w.sel.ThemeID = 0
	}
	w.sel.AgeGroup = ag
	return nil
}

// ToggleCharacter добавляет персонажа или убирает уже выбранного.
func (w *Wizard) ToggleCharacter(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id %d", models.ErrCharacterNotFound, id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	for i, existing := range w.sel.CharacterIDs {
		if existing == id {
			w.sel.CharacterIDs = append(w.sel.CharacterIDs[:i:i], w.sel.CharacterIDs[i+1:]...)
			return nil
		}
	}
	if len(w.sel.CharacterIDs) >= models.MaxCharacters {
		return fmt.Errorf("%w: максимум %d", models.ErrTooManyCharacters, models.MaxCharacters)
	}
	w.sel.CharacterIDs = append(w.sel.CharacterIDs, id)
	return nil
}

func (w *Wizard) SelectTheme(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id %d", models.ErrThemeNotFound, id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.ThemeID = id
	return nil
}

func (w *Wizard) SetChildName(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.ChildName = name
	return nil
}

func (w *Wizard) SetTextOnly(textOnly bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editableLocked(); err != nil {
		return err
	}
	w.sel.TextOnly = textOnly
	return nil
}

// Submit отправляет выбор. Разрешен из Summary и Failed. Выбор при ошибке
// сохраняется, повторная отправка возможна из Failed.
func (w *Wizard) Submit(ctx context.Context) (int64, error) {
	w.mu.Lock()
	switch w.step {
	case StepSummary, StepFailed:
	case StepSubmitting:
		w.mu.Unlock()
		return 0, ErrSubmitInProgress
	default:
		w.mu.Unlock()
		return 0, ErrCannotSubmit
	}
	if err := w.sel.Validate(); err != nil {
		w.mu.Unlock()
		return 0, err
	}
	sel := w.sel.Clone()
	w.step = StepSubmitting
	w.lastErr = nil
	w.mu.Unlock()

	storyID, err := w.submitter.Submit(ctx, sel)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.step = StepFailed
		w.lastErr = err
		return 0, err
	}
	w.step = StepDone
	w.storyID = storyID
	return storyID, nil
}

// Apply заполняет мастер готовым выбором, проходя шаги по порядку до Summary.
// Используется, когда выбор пришел целиком (POST /stories/generate).
func (w *Wizard) Apply(sel models.WizardSelection) error {
	if sel.AgeGroup != "" {
		if err := w.SetAgeGroup(sel.AgeGroup); err != nil {
			return err
		}
	}
	if err := w.Next(); err != nil {
		return err
	}
	seen := make(map[int64]struct{}, len(sel.CharacterIDs))
	for _, id := range sel.CharacterIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %w: id %d", models.ErrInvalidSelection, models.ErrDuplicateCharacter, id)
		}
		seen[id] = struct{}{}
		if err := w.ToggleCharacter(id); err != nil {
			return err
		}
	}
	if err := w.Next(); err != nil {
		return err
	}
	if sel.ThemeID != 0 {
		if err := w.SelectTheme(sel.ThemeID); err != nil {
			return err
		}
	}
	if err := w.Next(); err != nil {
		return err
	}
	if err := w.SetChildName(sel.ChildName); err != nil {
		return err
	}
	if err := w.SetTextOnly(sel.TextOnly); err != nil {
		return err
	}

	w.mu.Lock()
	if sel.ChildID != nil {
		id := *sel.ChildID
		w.sel.ChildID = &id
	}
	w.mu.Unlock()
	return nil
}

// Reset начинает мастер заново.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepSubmitting {
		return ErrSubmitInProgress
	}
	w.step = StepAgeGroup
	w.sel = models.NewWizardSelection()
	w.storyID = 0
	w.lastErr = nil
	return nil
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Step:      w.step,
		Selection: w.sel.Clone(),
		StoryID:   w.storyID,
		Err:       w.lastErr,
		Retryable: w.lastErr != nil && ai.IsRetryable(w.lastErr),
		CanSubmit: w.canSubmitLocked(),
	}
}

// CanSubmit доступна ли кнопка отправки.
func (w *Wizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Wizard) canSubmitLocked() bool {
	if w.step != StepSummary && w.step != StepFailed {
		return false
	}
	return w.sel.Validate() == nil
}

func (w *Wizard) editableLocked() error {
	switch w.step {
	case StepSubmitting:
		return ErrSubmitInProgress
	case StepDone:
		return ErrNotEditable
	}
	return nil
}
