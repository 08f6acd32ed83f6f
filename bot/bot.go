package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"graffiti/models"
	"graffiti/wall"
)

// Telegram caps photos well below this; the limit only guards against a
// misbehaving file endpoint.
const maxImageBytes = 20 << 20

const storageDownMessage = "❌ Database is not connected, please try again later"

// Bot is the chat front end of the wall: it registers users on /start,
// accepts photo submissions, and answers the stats/help buttons.
type Bot struct {
	api        *tgbotapi.BotAPI
	svc        *wall.Service
	webAppURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(token, webAppURL string, svc *wall.Service, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}

	return &Bot{
		api:       api,
		svc:       svc,
		webAppURL: strings.TrimRight(webAppURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// Run long-polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)
	defer b.api.StopReceivingUpdates()

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-updates:
			if update.Message != nil && update.Message.From != nil {
				b.handleMessage(ctx, update.Message)
			}
			if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
		case "qr":
			b.handleQR(msg.Chat.ID)
		default:
			b.reply(msg.Chat.ID, "Unknown command. Send a photo to put it on the wall, or /start for the menu.")
		}
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := models.User{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		FullName: displayFullName(msg.From),
	}
	if err := b.svc.RegisterUser(ctx, user); err != nil {
		b.logger.Warn("register user", zap.Int64("user_id", msg.From.ID), zap.Error(err))
	}

	text := "🎨 <b>Welcome to the Graffiti Wall!</b>\n\n" +
		"Everyone gets to leave a mark here:\n" +
		"• 📸 Send a photo to put it on the wall\n" +
		"• 🎨 Browse the shared gallery in the Web App\n" +
		"• ❤️ Like the works you enjoy\n\n" +
		"<i>Tap the button below to open the gallery:</i>"

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = b.mainMenu()
	b.send(reply)
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	image, err := b.downloadPhoto(ctx, largestPhoto(msg.Photo).FileID)
	if err != nil {
		b.logger.Error("download photo", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, "❌ Could not fetch that photo from Telegram, please try again")
		return
	}

	username := msg.From.UserName
	if username == "" {
		username = msg.From.FirstName
	}

	photo, err := b.svc.SubmitPhoto(ctx, msg.From.ID, username, image)
	if err != nil {
		b.logger.Error("submit photo", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.reply(msg.Chat.ID, storageDownMessage)
		return
	}

	count, err := b.svc.CountPhotos(ctx)
	if err != nil {
		count = 0
	}

	text := fmt.Sprintf(
		"✅ <b>Photo added to the wall!</b>\n\n"+
			"👤 Author: %s\n"+
			"📍 Position: %d, %d\n"+
			"📸 Photos on the wall: %d\n\n"+
			"<i>Open the gallery to see your work!</i>",
		photo.Username, photo.PositionX, photo.PositionY, count)

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = b.mainMenu()
	b.send(reply)
}

func (b *Bot) handleQR(chatID int64) {
	png, err := qrcode.Encode(b.webAppURL+"/webapp/", qrcode.Medium, 256)
	if err != nil {
		b.logger.Error("encode qr", zap.Error(err))
		b.reply(chatID, "❌ Could not build the QR code")
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "wall.png", Bytes: png})
	photo.Caption = "Scan to open the Graffiti Wall"
	b.send(photo)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answer callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case "stats":
		stats, err := b.svc.Stats(ctx)
		if err != nil {
			b.logger.Error("stats callback", zap.Error(err))
			b.reply(chatID, storageDownMessage)
			return
		}
		b.reply(chatID, statsText(stats))
	case "help":
		b.reply(chatID, "Send a photo to this chat and it appears on the shared wall. "+
			"Open the gallery to browse, like, and (for admins) remove photos. "+
			"Use /qr to get a shareable QR code for the wall.")
	}
}

// web_app inline buttons arrived with Bot API 6.0, after this bot library's
// keyboard types, so the reply markup is marshaled from local structs. The
// gallery must open as a Web App: a plain url button would not give the page
// Telegram.WebApp.initDataUnsafe.user, which likes and admin checks need.
type webAppInfo struct {
	URL string `json:"url"`
}

type inlineButton struct {
	Text         string      `json:"text"`
	CallbackData string      `json:"callback_data,omitempty"`
	WebApp       *webAppInfo `json:"web_app,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func (b *Bot) mainMenu() inlineKeyboard {
	return inlineKeyboard{
		InlineKeyboard: [][]inlineButton{
			{{Text: "🎨 Open the gallery", WebApp: &webAppInfo{URL: b.webAppURL + "/webapp/"}}},
			{{Text: "📊 Stats", CallbackData: "stats"}},
			{{Text: "❓ Help", CallbackData: "help"}},
		},
	}
}

func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	tgFile, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get telegram file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tgFile.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create file request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download telegram file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected telegram file status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read telegram file: %w", err)
	}
	return data, nil
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send telegram message", zap.Error(err))
	}
}

// largestPhoto picks the highest-resolution rendition Telegram offers.
func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

func statsText(stats models.Stats) string {
	return fmt.Sprintf("📊 Wall stats\n\n📸 Photos: %d\n👥 Artists: %d\n❤️ Likes: %d",
		stats.TotalPhotos, stats.TotalUsers, stats.TotalLikes)
}

func displayFullName(u *tgbotapi.User) string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
