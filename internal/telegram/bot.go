// Package telegram runs the client-facing bot: language selection, phone
// lookup and contract status replies with the printable PDF attached.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/khiva-consulting/backoffice-api/internal/config"
	"github.com/khiva-consulting/backoffice-api/internal/domain"
	"github.com/khiva-consulting/backoffice-api/internal/export"
	"github.com/khiva-consulting/backoffice-api/internal/phone"
	"github.com/khiva-consulting/backoffice-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const languageCallbackPrefix = "lang:"

type Bot struct {
	api          *tgbotapi.BotAPI
	config       *config.TelegramConfig
	botUserRepo  *repository.BotUserRepository
	clientRepo   *repository.ClientRepository
	contractRepo *repository.ContractRepository
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

func NewBot(
	cfg *config.TelegramConfig,
	botUserRepo *repository.BotUserRepository,
	clientRepo *repository.ClientRepository,
	contractRepo *repository.ContractRepository,
	pdf *export.PDFExporter,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{
		api:          api,
		config:       cfg,
		botUserRepo:  botUserRepo,
		clientRepo:   clientRepo,
		contractRepo: contractRepo,
		pdf:          pdf,
		logger:       logger,
	}, nil
}

// Run long-polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.PollTimeoutSeconds

	updates := b.api.GetUpdatesChan(updateConfig)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	lang := b.userLanguage(ctx, msg.From)

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.register(ctx, msg.From)
		b.reply(msg.Chat.ID, text(lang, msgWelcome))
		b.sendLanguageKeyboard(msg.Chat.ID, lang)
	case msg.IsCommand() && msg.Command() == "language":
		b.sendLanguageKeyboard(msg.Chat.ID, lang)
	case msg.Contact != nil:
		b.lookup(ctx, msg.Chat.ID, lang, msg.Contact.PhoneNumber)
	default:
		b.lookup(ctx, msg.Chat.ID, lang, msg.Text)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	if !strings.HasPrefix(data, languageCallbackPrefix) {
		return
	}
	lang := domain.BotLanguage(strings.TrimPrefix(data, languageCallbackPrefix))
	if !lang.IsValid() {
		return
	}

	b.register(ctx, cb.From)
	if err := b.botUserRepo.UpdateLanguage(ctx, cb.From.ID, lang); err != nil {
		b.logger.Warn("failed to update bot language", zap.Int64("telegram_id", cb.From.ID), zap.Error(err))
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Debug("failed to ack callback", zap.Error(err))
	}
	if cb.Message != nil {
		b.reply(cb.Message.Chat.ID, text(lang, msgLanguageSet))
		b.reply(cb.Message.Chat.ID, text(lang, msgAskPhone))
	}
}

// lookup resolves a phone number to the client's latest contract and replies
// with the summary and the PDF document.
func (b *Bot) lookup(ctx context.Context, chatID int64, lang domain.BotLanguage, raw string) {
	normalized, err := phone.Normalize(raw)
	if err != nil {
		b.reply(chatID, text(lang, msgBadPhone))
		return
	}

	client, err := b.clientRepo.FindByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.reply(chatID, text(lang, msgNotFound))
			return
		}
		b.logger.Error("bot client lookup failed", zap.Error(err))
		b.reply(chatID, text(lang, msgError))
		return
	}

	contract, err := b.contractRepo.GetLatestByClient(ctx, client.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.reply(chatID, text(lang, msgNotFound))
			return
		}
		b.logger.Error("bot contract lookup failed", zap.Error(err))
		b.reply(chatID, text(lang, msgError))
		return
	}

	b.reply(chatID, contractSummary(contract))

	pdfBytes, err := b.pdf.Contract(contract)
	if err != nil {
		b.logger.Warn("failed to render contract pdf for bot", zap.Error(err))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("shartnoma_%d.pdf", contract.ContractNumber),
		Bytes: pdfBytes,
	})
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Warn("failed to send contract pdf", zap.Error(err))
	}
}

func (b *Bot) register(ctx context.Context, from *tgbotapi.User) {
	if from == nil {
		return
	}
	user := &domain.BotUser{
		TelegramID: from.ID,
		FirstName:  from.FirstName,
	}
	if err := b.botUserRepo.Upsert(ctx, user); err != nil {
		b.logger.Warn("failed to register bot user", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}
}

func (b *Bot) userLanguage(ctx context.Context, from *tgbotapi.User) domain.BotLanguage {
	if from == nil {
		return domain.BotLanguageUzLatin
	}
	user, err := b.botUserRepo.GetByTelegramID(ctx, from.ID)
	if err != nil {
		return domain.BotLanguageUzLatin
	}
	return user.Language
}

func (b *Bot) sendLanguageKeyboard(chatID int64, lang domain.BotLanguage) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(languageButtons))
	for _, btn := range languageButtons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btn.Label, languageCallbackPrefix+string(btn.Language)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text(lang, msgChooseLanguage))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send language keyboard", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, textValue string) {
	msg := tgbotapi.NewMessage(chatID, textValue)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send bot message", zap.Error(err))
	}
}

func contractSummary(contract *domain.ConsultingContract) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Shartnoma № %d\n", contract.ContractNumber)
	fmt.Fprintf(&sb, "Sana: %s\n", contract.ContractDate.Format("02.01.2006"))
	if contract.Client != nil {
		fmt.Fprintf(&sb, "Mijoz: %s\n", contract.Client.FullName)
	}
	fmt.Fprintf(&sb, "Xizmat: %s\n", contract.ServiceName)
	fmt.Fprintf(&sb, "Holat: %s\n", contract.Status)
	fmt.Fprintf(&sb, "Umumiy narx: %d so'm\n", contract.TotalServiceFee)
	fmt.Fprintf(&sb, "To'langan: %d so'm\n", contract.AmountPaid)
	fmt.Fprintf(&sb, "Qoldiq: %d so'm", contract.RemainingAmount())
	return sb.String()
}
