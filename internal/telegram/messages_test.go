package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khiva-consulting/backoffice-api/internal/domain"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		lang domain.BotLanguage
		key  messageKey
		want string
	}{
		{
			name: "uzbek latin",
			lang: domain.BotLanguageUzLatin,
			key:  msgChooseLanguage,
			want: "Tilni tanlang:",
		},
		{
			name: "uzbek cyrillic",
			lang: domain.BotLanguageUzCyrillic,
			key:  msgChooseLanguage,
			want: "Тилни танланг:",
		},
		{
			name: "russian",
			lang: domain.BotLanguageRussian,
			key:  msgChooseLanguage,
			want: "Выберите язык:",
		},
		{
			name: "unknown language falls back to uzbek latin",
			lang: domain.BotLanguage("de"),
			key:  msgChooseLanguage,
			want: "Tilni tanlang:",
		},
		{
			name: "empty language falls back to uzbek latin",
			lang: domain.BotLanguage(""),
			key:  msgWelcome,
			want: "Assalomu alaykum! Khiva Consulting botiga xush kelibsiz.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text(tt.lang, tt.key))
		})
	}
}

func TestMessages_AllKeysPresentInAllLanguages(t *testing.T) {
	keys := []messageKey{
		msgWelcome, msgChooseLanguage, msgLanguageSet,
		msgAskPhone, msgNotFound, msgBadPhone, msgError,
	}
	for lang, table := range messages {
		for _, key := range keys {
			assert.NotEmpty(t, table[key], "language %s missing %s", lang, key)
		}
	}
}

func TestLanguageButtons_CoverAllLanguages(t *testing.T) {
	seen := map[domain.BotLanguage]bool{}
	for _, b := range languageButtons {
		assert.NotEmpty(t, b.Label)
		seen[b.Language] = true
	}
	assert.Len(t, seen, len(messages))
}
