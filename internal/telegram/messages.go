package telegram

import "github.com/khiva-consulting/backoffice-api/internal/domain"

// messageKey identifies one translatable bot reply
type messageKey string

const (
	msgWelcome        messageKey = "welcome"
	msgChooseLanguage messageKey = "choose_language"
	msgLanguageSet    messageKey = "language_set"
	msgAskPhone       messageKey = "ask_phone"
	msgNotFound       messageKey = "not_found"
	msgBadPhone       messageKey = "bad_phone"
	msgError          messageKey = "error"
)

var messages = map[domain.BotLanguage]map[messageKey]string{
	domain.BotLanguageUzLatin: {
		msgWelcome:        "Assalomu alaykum! Khiva Consulting botiga xush kelibsiz.",
		msgChooseLanguage: "Tilni tanlang:",
		msgLanguageSet:    "Til o'rnatildi.",
		msgAskPhone:       "Shartnoma holatini ko'rish uchun telefon raqamingizni yuboring (masalan: +998901234567).",
		msgNotFound:       "Bu raqam bo'yicha shartnoma topilmadi. Raqamni tekshirib qayta yuboring.",
		msgBadPhone:       "Telefon raqami noto'g'ri formatda. Masalan: +998901234567",
		msgError:          "Xatolik yuz berdi. Keyinroq qayta urinib ko'ring.",
	},
	domain.BotLanguageUzCyrillic: {
		msgWelcome:        "Ассалому алайкум! Khiva Consulting ботига хуш келибсиз.",
		msgChooseLanguage: "Тилни танланг:",
		msgLanguageSet:    "Тил ўрнатилди.",
		msgAskPhone:       "Шартнома ҳолатини кўриш учун телефон рақамингизни юборинг (масалан: +998901234567).",
		msgNotFound:       "Бу рақам бўйича шартнома топилмади. Рақамни текшириб қайта юборинг.",
		msgBadPhone:       "Телефон рақами нотўғри форматда. Масалан: +998901234567",
		msgError:          "Хатолик юз берди. Кейинроқ қайта уриниб кўринг.",
	},
	domain.BotLanguageRussian: {
		msgWelcome:        "Здравствуйте! Добро пожаловать в бот Khiva Consulting.",
		msgChooseLanguage: "Выберите язык:",
		msgLanguageSet:    "Язык установлен.",
		msgAskPhone:       "Отправьте номер телефона, чтобы посмотреть статус договора (например: +998901234567).",
		msgNotFound:       "Договор по этому номеру не найден. Проверьте номер и отправьте снова.",
		msgBadPhone:       "Неверный формат номера. Например: +998901234567",
		msgError:          "Произошла ошибка. Попробуйте позже.",
	},
}

// languageButtons maps inline keyboard labels to languages
var languageButtons = []struct {
	Label    string
	Language domain.BotLanguage
}{
	{"O'zbekcha (lotin)", domain.BotLanguageUzLatin},
	{"Ўзбекча (кирилл)", domain.BotLanguageUzCyrillic},
	{"Русский", domain.BotLanguageRussian},
}

// text resolves a reply in the user's language, falling back to Uzbek Latin
func text(lang domain.BotLanguage, key messageKey) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages[domain.BotLanguageUzLatin][key]
}
