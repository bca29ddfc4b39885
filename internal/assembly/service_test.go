package assembly_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/assembly"
	"storybook-server/internal/catalog"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
)

const generatedStoryJSON = "```json\n" + `{
  "title": "Luna e Tito no Bosque",
  "summary": "Dois amigos aprendem a dividir.",
  "readingTime": 4,
  "chapters": [
    {"title": "O encontro", "content": "Luna encontrou Tito perto do rio."},
    {"title": "A descoberta", "content": "Eles acharam uma árvore cheia de frutas."},
    {"title": "A partilha", "content": "Os dois dividiram tudo e riram juntos."}
  ]
}` + "\n```"

type assemblyFixture struct {
	generator *mocks.MockStoryGenerator
	catalog   *mocks.MockCatalogRepository
	stories   *mocks.MockStoryRepository
	service   *assembly.Service
}

func newAssemblyFixture(t *testing.T) *assemblyFixture {
	f := &assemblyFixture{
		generator: mocks.NewMockStoryGenerator(t),
		catalog:   mocks.NewMockCatalogRepository(t),
		stories:   mocks.NewMockStoryRepository(t),
	}
	f.catalog.On("ListCharacters", mock.Anything).Return([]models.Character{
		{ID: 1, Name: "Luna", Description: "uma coruja curiosa"},
		{ID: 2, Name: "Tito", AgeGroups: []models.AgeGroup{models.AgeGroup6To8}},
		{ID: 4, Name: "Dragão Sombrio", AgeGroups: []models.AgeGroup{models.AgeGroup9To12}},
	}, nil).Maybe()
	f.catalog.On("ListThemes", mock.Anything).Return([]models.Theme{
		{ID: 3, Name: "Amizade"},
		{ID: 5, Name: "Batalhas", AgeGroups: []models.AgeGroup{models.AgeGroup9To12}},
	}, nil).Maybe()

	cat := catalog.NewService(f.catalog, time.Minute, zap.NewNop())
	f.service = assembly.NewService(f.generator, cat, f.stories, zap.NewNop())
	return f
}

func validSelection() models.WizardSelection {
	return models.WizardSelection{
		AgeGroup:     models.AgeGroup6To8,
		CharacterIDs: []int64{1, 2},
		ThemeID:      3,
		TextOnly:     true,
	}
}

// promptSamples число наблюдений оценки промпта для группы.
func promptSamples(t *testing.T, ag models.AgeGroup) (uint64, float64) {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "storybook_story_prompt_tokens_estimated" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "age_group" && lp.GetValue() == string(ag) {
					return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
				}
			}
		}
	}
	return 0, 0
}

func TestAssemble_TextOnlyStory(t *testing.T) {
	f := newAssemblyFixture(t)
	session := models.Session{UserID: 10}
	samplesBefore, sumBefore := promptSamples(t, models.AgeGroup6To8)

	f.generator.On("GenerateStory", mock.Anything, mock.MatchedBy(func(req ai.StoryRequest) bool {
		return req.UserID == 10 && req.MaxTokens == 2000 && req.SystemPrompt != "" && req.UserPrompt != ""
	})).Return(generatedStoryJSON, ai.UsageInfo{TotalTokens: 900}, nil).Once()

	f.stories.On("CreateStory", mock.Anything, mock.AnythingOfType("*models.Story")).
		Return(func(_ context.Context, s *models.Story) error {
			s.ID = 42
			return nil
		}).Once()

	story, err := f.service.Assemble(context.Background(), session, validSelection())
	require.NoError(t, err)

	assert.Equal(t, int64(42), story.ID)
	assert.Equal(t, "Luna e Tito no Bosque", story.Title)
	assert.Equal(t, 4, story.ReadingTime)
	assert.Equal(t, []int64{1, 2}, story.CharacterIDs)
	assert.False(t, story.Personalized)
	require.Len(t, story.Chapters, 3)
	for i, ch := range story.Chapters {
		assert.Equal(t, i, ch.Index)
		assert.NotEmpty(t, ch.Title)
		assert.NotEmpty(t, ch.Content)
		assert.NotEmpty(t, ch.ImagePrompt)
		assert.Nil(t, ch.ImageURL, "text-only story has no images")
	}

	samples, sum := promptSamples(t, models.AgeGroup6To8)
	assert.Equal(t, samplesBefore+1, samples, "prompt size is recorded")
	assert.Greater(t, sum, sumBefore)

	f.generator.AssertExpectations(t)
	f.stories.AssertExpectations(t)
}

func TestAssemble_ChildNameRequiresEntitlement(t *testing.T) {
	sel := validSelection()
	sel.ChildName = "  Ana   Clara "

	tests := []struct {
		name         string
		session      models.Session
		wantName     bool
		personalized bool
	}{
		{"free plan drops name", models.Session{UserID: 1, Plan: "free"}, false, false},
		{"entitled plan keeps name", models.Session{UserID: 1, Plan: "plus", Entitlements: []string{models.EntitlementPersonalization}}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssemblyFixture(t)
			f.generator.On("GenerateStory", mock.Anything, mock.Anything).
				Return(generatedStoryJSON, ai.UsageInfo{}, nil).Once().
				Run(func(args mock.Arguments) {
					req := args.Get(1).(ai.StoryRequest)
					assert.Equal(t, tt.wantName, strings.Contains(req.UserPrompt, "Ana Clara"))
				})
			f.stories.On("CreateStory", mock.Anything, mock.Anything).Return(nil).Once()

			story, err := f.service.Assemble(context.Background(), tt.session, sel)
			require.NoError(t, err)
			assert.Equal(t, tt.personalized, story.Personalized)
		})
	}
}

func TestAssemble_InvalidSelectionNeverCallsProvider(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.WizardSelection)
		wantErr error
	}{
		{"missing theme", func(s *models.WizardSelection) { s.ThemeID = 0 }, models.ErrMissingTheme},
		{"no characters", func(s *models.WizardSelection) { s.CharacterIDs = nil }, models.ErrMissingCharacters},
		{"unknown character", func(s *models.WizardSelection) { s.CharacterIDs = []int64{1, 99} }, models.ErrCharacterNotFound},
		{"character for older kids", func(s *models.WizardSelection) { s.CharacterIDs = []int64{4} }, models.ErrCharacterNotAllowed},
		{"theme for older kids", func(s *models.WizardSelection) { s.ThemeID = 5 }, models.ErrThemeNotAllowed},
		{"unknown theme", func(s *models.WizardSelection) { s.ThemeID = 77 }, models.ErrThemeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssemblyFixture(t)
			sel := validSelection()
			tt.mutate(&sel)

			_, err := f.service.Assemble(context.Background(), models.Session{UserID: 1}, sel)
			assert.ErrorIs(t, err, models.ErrInvalidSelection)
			assert.ErrorIs(t, err, tt.wantErr)
			f.generator.AssertNotCalled(t, "GenerateStory", mock.Anything, mock.Anything)
			f.stories.AssertNotCalled(t, "CreateStory", mock.Anything, mock.Anything)
		})
	}
}

func TestAssemble_ProviderFailures(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		err       error
		sentinel  error
		retryable bool
	}{
		{"rate limit", "", &ai.ProviderError{Kind: ai.KindRateLimit, StatusCode: 429, Err: errors.New("429")}, ai.ErrProviderRateLimit, true},
		{"auth", "", &ai.ProviderError{Kind: ai.KindAuth, StatusCode: 401, Err: errors.New("401")}, ai.ErrProviderAuth, false},
		{"connectivity", "", &ai.ProviderError{Kind: ai.KindConnectivity, Err: errors.New("dial tcp")}, ai.ErrProviderConnectivity, true},
		{"malformed reply", "Era uma vez, sem JSON.", nil, ai.ErrGenerationFormat, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssemblyFixture(t)
			f.generator.On("GenerateStory", mock.Anything, mock.Anything).Return(tt.raw, ai.UsageInfo{}, tt.err).Once()

			_, err := f.service.Assemble(context.Background(), models.Session{UserID: 1}, validSelection())
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.retryable, ai.IsRetryable(err))
			f.generator.AssertNumberOfCalls(t, "GenerateStory", 1)
			f.stories.AssertNotCalled(t, "CreateStory", mock.Anything, mock.Anything)
		})
	}
}

func TestAssemble_PersistFailure(t *testing.T) {
	f := newAssemblyFixture(t)
	f.generator.On("GenerateStory", mock.Anything, mock.Anything).Return(generatedStoryJSON, ai.UsageInfo{}, nil)
	f.stories.On("CreateStory", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := f.service.Assemble(context.Background(), models.Session{UserID: 1}, validSelection())
	require.Error(t, err)
	assert.False(t, ai.IsRetryable(err))
}

func TestAssemble_ReadingTimeFallback(t *testing.T) {
	f := newAssemblyFixture(t)
	f.generator.On("GenerateStory", mock.Anything, mock.Anything).
		Return(`{"title":"Curta","content":"Um.\n\nDois.\n\nTrês."}`, ai.UsageInfo{}, nil)
	f.stories.On("CreateStory", mock.Anything, mock.Anything).Return(nil)

	story, err := f.service.Assemble(context.Background(), models.Session{UserID: 1}, validSelection())
	require.NoError(t, err)
	assert.Equal(t, 1, story.ReadingTime)
	assert.Len(t, story.Chapters, 3)
}
