package ai

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

var (
	encodersMu sync.Mutex
	encoders   = map[string]*tiktoken.Tiktoken{}
)

// EstimateTokens оценивает число токенов в тексте для модели.
// Для незнакомых моделей используется cl100k_base, а если словарь недоступен,
// грубая оценка в 4 символа на токен.
func EstimateTokens(model, text string) int {
	if text == "" {
		return 0
	}
	if tke := encoderFor(model); tke != nil {
		return len(tke.Encode(text, nil, nil))
	}
	n := utf8.RuneCountInString(text) / 4
	if n == 0 {
		n = 1
	}
	return n
}

func encoderFor(model string) *tiktoken.Tiktoken {
	encodersMu.Lock()
	defer encodersMu.Unlock()

	if tke, ok := encoders[model]; ok {
		return tke
	}
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		tke = nil
	}
	// nil тоже кэшируем, чтобы не пытаться загрузить словарь на каждый запрос
	encoders[model] = tke
	return tke
}
