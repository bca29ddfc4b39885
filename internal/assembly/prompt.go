package assembly

import (
	"fmt"
	"strings"

	"storybook-server/internal/models"
)

// Tier параметры объема и лексики для возрастной группы.
type Tier struct {
	AgeGroup             models.AgeGroup
	Length               string
	MinParagraphs        int
	MaxParagraphs        int
	ParagraphsPerChapter int
	Vocabulary           string
	MaxTokens            int
}

var tiers = map[models.AgeGroup]Tier{
	models.AgeGroup3To5: {
		AgeGroup:             models.AgeGroup3To5,
		Length:               "curta",
		MinParagraphs:        4,
		MaxParagraphs:        5,
		ParagraphsPerChapter: 1,
		Vocabulary:           "frases bem curtas, palavras simples do dia a dia, repetições e sons divertidos",
		MaxTokens:            1200,
	},
	models.AgeGroup6To8: {
		AgeGroup:             models.AgeGroup6To8,
		Length:               "média",
		MinParagraphs:        6,
		MaxParagraphs:        7,
		ParagraphsPerChapter: 1,
		Vocabulary:           "frases simples, vocabulário acessível com algumas palavras novas explicadas pelo contexto",
		MaxTokens:            2000,
	},
	models.AgeGroup9To12: {
		AgeGroup:             models.AgeGroup9To12,
		Length:               "mais longa",
		MinParagraphs:        8,
		MaxParagraphs:        10,
		ParagraphsPerChapter: 2,
		Vocabulary:           "vocabulário mais rico, diálogos e descrições, sem conteúdo assustador demais",
		MaxTokens:            3200,
	},
}

// TierFor возвращает параметры группы.
func TierFor(ag models.AgeGroup) (Tier, error) {
	t, ok := tiers[ag]
	if !ok {
		return Tier{}, fmt.Errorf("%w: %q", models.ErrInvalidAgeGroup, ag)
	}
	return t, nil
}

// ChapterRange ожидаемое число глав.
func (t Tier) ChapterRange() (int, int) {
	per := t.ParagraphsPerChapter
	if per < 1 {
		per = 1
	}
	return (t.MinParagraphs + per - 1) / per, (t.MaxParagraphs + per - 1) / per
}

// PromptInput все, что попадает в запрос к провайдеру.
type PromptInput struct {
	Tier       Tier
	Characters []models.Character
	Theme      models.Theme
	ChildName  string
}

const systemPromptTemplate = `Você é um autor de histórias infantis. Escreva sempre em português do Brasil.
Escreva uma história %s para crianças de %s anos, com %d a %d parágrafos no total, divididos em %d a %d capítulos.
Linguagem: %s.
A história deve ser gentil, ter começo, meio e fim, e terminar com uma mensagem positiva.
Responda APENAS com um objeto JSON válido, sem texto fora dele, no formato:
{"title": "título da história", "summary": "resumo em uma ou duas frases", "readingTime": minutos de leitura (número inteiro), "chapters": [{"title": "título do capítulo", "content": "texto do capítulo"}]}`

// BuildPrompt возвращает системный и пользовательский промпты.
func BuildPrompt(in PromptInput) (string, string) {
	minCh, maxCh := in.Tier.ChapterRange()
	system := fmt.Sprintf(systemPromptTemplate,
		in.Tier.Length, in.Tier.AgeGroup,
		in.Tier.MinParagraphs, in.Tier.MaxParagraphs,
		minCh, maxCh,
		in.Tier.Vocabulary,
	)

	var b strings.Builder
	b.WriteString("Personagens:\n")
	for _, c := range in.Characters {
		if c.Description != "" {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
		} else {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
	}
	fmt.Fprintf(&b, "Tema: %s", in.Theme.Name)
	if in.Theme.Description != "" {
		fmt.Fprintf(&b, " (%s)", in.Theme.Description)
	}
	b.WriteString("\n")
	if in.ChildName != "" {
		fmt.Fprintf(&b, "A criança que vai ler se chama %s. Inclua %s como personagem da história, pelo nome.\n", in.ChildName, in.ChildName)
	}
	return system, b.String()
}
