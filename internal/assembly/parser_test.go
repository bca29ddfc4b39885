package assembly_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storybook-server/internal/ai"
	"storybook-server/internal/assembly"
	"storybook-server/internal/models"
)

func TestTierFor(t *testing.T) {
	for _, ag := range models.AllAgeGroups {
		tier, err := assembly.TierFor(ag)
		require.NoError(t, err, ag)
		assert.Equal(t, ag, tier.AgeGroup)
		assert.Positive(t, tier.MaxTokens)
	}

	short, _ := assembly.TierFor(models.AgeGroup3To5)
	long, _ := assembly.TierFor(models.AgeGroup9To12)
	assert.Equal(t, 4, short.MinParagraphs)
	assert.Equal(t, 5, short.MaxParagraphs)
	assert.Equal(t, 8, long.MinParagraphs)
	assert.Equal(t, 10, long.MaxParagraphs)

	minCh, maxCh := long.ChapterRange()
	assert.Equal(t, 4, minCh)
	assert.Equal(t, 5, maxCh)

	_, err := assembly.TierFor("13-99")
	assert.ErrorIs(t, err, models.ErrInvalidAgeGroup)
}

func TestBuildPrompt(t *testing.T) {
	tier, _ := assembly.TierFor(models.AgeGroup6To8)
	in := assembly.PromptInput{
		Tier:       tier,
		Characters: []models.Character{{Name: "Luna", Description: "uma coruja curiosa"}, {Name: "Tito"}},
		Theme:      models.Theme{Name: "Amizade"},
	}

	system, user := assembly.BuildPrompt(in)
	assert.Contains(t, system, "português do Brasil")
	assert.Contains(t, system, "6 a 7 parágrafos")
	assert.Contains(t, system, `"chapters"`)
	assert.Contains(t, user, "- Luna: uma coruja curiosa")
	assert.Contains(t, user, "- Tito\n")
	assert.Contains(t, user, "Tema: Amizade")
	assert.NotContains(t, user, "se chama")

	in.ChildName = "Ana"
	_, user = assembly.BuildPrompt(in)
	assert.Contains(t, user, "se chama Ana")
}

func TestParseGeneratedStory(t *testing.T) {
	t.Run("fenced with chapters", func(t *testing.T) {
		raw := "Aqui está:\n```json\n{\"title\": \" A Coruja \", \"summary\": \"Resumo\", \"readingTime\": \"5 minutos\", " +
			"\"chapters\": [{\"title\": \"Início\", \"content\": \"Era uma vez.\"}, {\"title\": \"Vazio\", \"content\": \"  \"}]}\n```"
		gs, err := assembly.ParseGeneratedStory(raw)
		require.NoError(t, err)
		assert.Equal(t, "A Coruja", gs.Title)
		assert.EqualValues(t, 5, gs.ReadingTime)
		require.Len(t, gs.Chapters, 1)
		assert.Equal(t, "Início", gs.Chapters[0].Title)
	})

	t.Run("single content with numeric reading time", func(t *testing.T) {
		gs, err := assembly.ParseGeneratedStory(`{"title":"T","content":"Texto.","readingTime":3}`)
		require.NoError(t, err)
		assert.Equal(t, "Texto.", gs.Content)
		assert.EqualValues(t, 3, gs.ReadingTime)
	})

	t.Run("null reading time", func(t *testing.T) {
		gs, err := assembly.ParseGeneratedStory(`{"title":"T","content":"Texto.","readingTime":null}`)
		require.NoError(t, err)
		assert.EqualValues(t, 0, gs.ReadingTime)
	})

	failures := map[string]string{
		"not json":      "Desculpe, não consigo escrever essa história.",
		"broken json":   `{"title": "T", "content": }`,
		"missing title": `{"content": "Texto."}`,
		"no text":       `{"title": "T", "chapters": [{"title": "x", "content": ""}]}`,
	}
	for name, raw := range failures {
		t.Run(name, func(t *testing.T) {
			_, err := assembly.ParseGeneratedStory(raw)
			assert.ErrorIs(t, err, ai.ErrGenerationFormat)
			assert.False(t, ai.IsRetryable(err))
		})
	}
}

func TestBuildChapters_ProviderChapters(t *testing.T) {
	tier, _ := assembly.TierFor(models.AgeGroup6To8)
	gs := &assembly.GeneratedStory{
		Title: "T",
		Chapters: []assembly.GeneratedChapter{
			{Title: "Um", Content: "Primeiro."},
			{Content: "Segundo."},
		},
	}
	chapters := assembly.BuildChapters(gs, tier)
	require.Len(t, chapters, 2)
	assert.Equal(t, 0, chapters[0].Index)
	assert.Equal(t, "Um", chapters[0].Title)
	assert.Equal(t, "Capítulo 2", chapters[1].Title)
	assert.Equal(t, "Um: Primeiro.", chapters[0].ImagePrompt)
	assert.Nil(t, chapters[0].ImageURL)
}

func TestBuildChapters_Markers(t *testing.T) {
	tier, _ := assembly.TierFor(models.AgeGroup6To8)
	content := "Capítulo 1: A floresta\nLuna acordou cedo.\n\nEla voou.\n\nCapítulo 2 - O rio\nTito nadou.\n\n## O fim\nTodos dormiram."
	chapters := assembly.BuildChapters(&assembly.GeneratedStory{Title: "T", Content: content}, tier)

	require.Len(t, chapters, 3)
	assert.Equal(t, "A floresta", chapters[0].Title)
	assert.Equal(t, "Luna acordou cedo.\n\nEla voou.", chapters[0].Content)
	assert.Equal(t, "O rio", chapters[1].Title)
	assert.Equal(t, "O fim", chapters[2].Title)
	assert.Equal(t, "Todos dormiram.", chapters[2].Content)
}

func TestBuildChapters_ParagraphGrouping(t *testing.T) {
	paragraphs := make([]string, 8)
	for i := range paragraphs {
		paragraphs[i] = "Parágrafo número " + string(rune('A'+i)) + "."
	}
	content := strings.Join(paragraphs, "\n\n")

	long, _ := assembly.TierFor(models.AgeGroup9To12)
	chapters := assembly.BuildChapters(&assembly.GeneratedStory{Title: "T", Content: content}, long)
	require.Len(t, chapters, 4)
	assert.Equal(t, paragraphs[0]+"\n\n"+paragraphs[1], chapters[0].Content)

	short, _ := assembly.TierFor(models.AgeGroup3To5)
	chapters = assembly.BuildChapters(&assembly.GeneratedStory{Title: "T", Content: content}, short)
	assert.Len(t, chapters, 8)

	// единственный маркер считается заголовком истории
	chapters = assembly.BuildChapters(&assembly.GeneratedStory{Title: "T", Content: "# A Coruja\n\n" + content}, long)
	require.Len(t, chapters, 4)
	assert.Equal(t, "Capítulo 1", chapters[0].Title)
}

func TestExcerpt(t *testing.T) {
	text := strings.Repeat("palavra ", 100)
	ex := assembly.Excerpt(text, assembly.MaxImageExcerptRunes)
	assert.LessOrEqual(t, utf8.RuneCountInString(ex), assembly.MaxImageExcerptRunes)
	assert.True(t, strings.HasSuffix(ex, "palavra"), "cut at a word boundary")

	assert.Equal(t, "curto", assembly.Excerpt("  curto ", 300))
	assert.Equal(t, "ação", assembly.Excerpt("ação rápida", 6))
}

func TestEstimateReadingTime(t *testing.T) {
	assert.Equal(t, 1, assembly.EstimateReadingTime([]models.Chapter{{Content: "poucas palavras"}}))
	long := strings.Repeat("palavra ", 450)
	assert.Equal(t, 3, assembly.EstimateReadingTime([]models.Chapter{{Content: long}}))
}
