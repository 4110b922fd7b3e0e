// Package bot runs the Telegram chat bot that sits next to the mini-app.
//
// The bot shares nothing with the HTTP server except the database: it
// registers users on /start, hands out the button that opens the mini-app,
// and lists a seller's active listings on /myads.
package bot

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/service"
)

const helpText = "<b>Gift Market</b>\n\n" +
	"/start - open the market\n" +
	"/myads - your active listings"

// sender is the part of *tgbot.Bot the command handlers use.
type sender interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
}

// Bot answers chat commands.
type Bot struct {
	client    *tgbot.Bot
	send      sender
	users     *service.UserService
	listings  *service.ListingService
	webAppURL string
	logger    *slog.Logger
}

// New connects to the Bot API with token and registers the command handlers.
// webAppURL is the page the "Open market" button launches; it may be empty.
func New(token, webAppURL string, users *service.UserService, listings *service.ListingService, logger *slog.Logger) (*Bot, error) {
	b := &Bot{
		users:     users,
		listings:  listings,
		webAppURL: webAppURL,
		logger:    logger,
	}

	client, err := tgbot.New(token, tgbot.WithDefaultHandler(b.handleDefault))
	if err != nil {
		return nil, fmt.Errorf("bot: connecting: %w", err)
	}
	client.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, b.handleStart)
	client.RegisterHandler(tgbot.HandlerTypeMessageText, "/myads", tgbot.MatchTypePrefix, b.handleMyAds)

	b.client = client
	b.send = client
	return b, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("bot started")
	b.client.Start(ctx)
	b.logger.Info("bot stopped")
}

func (b *Bot) handleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := privateMessage(update)
	if msg == nil {
		return
	}

	from := msg.From
	userID := strconv.FormatInt(from.ID, 10)
	if _, err := b.users.Register(ctx, userID, from.FirstName, from.LastName, from.Username); err != nil {
		b.logger.Error("bot: failed to register user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	params := &tgbot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      welcomeText(from.FirstName),
		ParseMode: "HTML",
	}
	if b.webAppURL != "" {
		params.ReplyMarkup = openMarketMarkup(b.webAppURL)
	}
	b.reply(ctx, params)
}

func (b *Bot) handleMyAds(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := privateMessage(update)
	if msg == nil {
		return
	}

	ads, err := b.listings.ListByOwner(ctx, strconv.FormatInt(msg.From.ID, 10))
	text := formatListings(ads)
	if err != nil {
		text = "Could not load your listings, please try again later."
	}

	b.reply(ctx, &tgbot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      text,
		ParseMode: "HTML",
	})
}

func (b *Bot) handleDefault(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	msg := privateMessage(update)
	if msg == nil {
		return
	}

	b.reply(ctx, &tgbot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      helpText,
		ParseMode: "HTML",
	})
}

func (b *Bot) reply(ctx context.Context, params *tgbot.SendMessageParams) {
	if _, err := b.send.SendMessage(ctx, params); err != nil {
		b.logger.Error("bot: failed to send message",
			slog.Any("chat_id", params.ChatID),
			slog.String("error", err.Error()),
		)
	}
}

// privateMessage returns the message of update if it came from a user in a
// private chat. Group chats and channel posts are ignored.
func privateMessage(update *models.Update) *models.Message {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return nil
	}
	if update.Message.Chat.Type != models.ChatTypePrivate {
		return nil
	}
	return update.Message
}

func welcomeText(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi, %s!\n\nBuy and sell collectible gifts right inside Telegram. "+
		"Tap the button below to open the market.", html.EscapeString(name))
}

func openMarketMarkup(webAppURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Open market", WebApp: &models.WebAppInfo{URL: webAppURL}},
			},
		},
	}
}

// formatListings renders a seller's listings as an HTML message.
func formatListings(ads []model.Advertisement) string {
	if len(ads) == 0 {
		return "You have no active listings."
	}

	var sb strings.Builder
	sb.WriteString("<b>Your active listings</b>\n")
	for _, ad := range ads {
		fmt.Fprintf(&sb, "\n#%d · %s · %s #%s · <b>%s</b>",
			ad.ID,
			html.EscapeString(ad.Collection),
			html.EscapeString(ad.Model),
			html.EscapeString(ad.Number),
			html.EscapeString(ad.DisplayPrice()),
		)
	}
	return sb.String()
}
