package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	app "birdseye/internal/application"
	"birdseye/internal/container"
	"birdseye/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я превращаю снимок с камеры в вид сверху.

📸 Отправьте фото, и я пришлю его в проекции «с высоты птичьего полёта».

📋 Команды:
/transform — преобразовать фото
/params — текущие параметры камеры
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Настройте камеру (или оставьте параметры по умолчанию)
2️⃣ Отправьте фото
3️⃣ Получите изображение в виде сверху

⚙️ Параметры камеры:
/tilt <угол> — наклон вокруг одной оси, в градусах
/euler <pitch> <yaw> <roll> — три угла, в градусах
/focal <f> — фокусное расстояние в пикселях
/reset — вернуть параметры по умолчанию
/params — показать текущие параметры

💡 Отправляйте фото файлом, чтобы Telegram не сжимал его.`

	msgAwaitingPhoto   = "📸 Отправьте фото для преобразования."
	msgCancelled       = "❌ Операция отменена. Отправьте /transform для нового преобразования."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото. Справка: /help"
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущее фото ещё обрабатывается."
	msgProcessingError = "⚠️ Не удалось прочитать изображение. Попробуйте другой файл."
	msgComputeError    = "⚠️ С такими параметрами вид сверху не строится (горизонт попадает в кадр). Уменьшите угол: /params"
	msgParamsError     = "⚠️ Некорректные параметры: %s"
	msgParams          = "⚙️ Параметры камеры: %s"
	msgParamsUpdated   = "✅ Параметры обновлены: %s"
	msgResult          = "🗺 Вид сверху %dx%d"
)

// Bot представляет Telegram-бота
type Bot struct {
	api    *tgbotapi.BotAPI
	users  *app.UserService
	photos *app.PhotoService
	logger *zap.Logger
	client *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "connect to telegram")
	}

	logger := c.Logger.Named("telegram")
	logger.Info("authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:    api,
		users:  c.UserService,
		photos: c.PhotoService,
		logger: logger,
		client: &http.Client{Timeout: time.Minute},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer wg.Done()
				b.handleMessage(ctx, msg)
			}(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		b.sendMessage(msg.Chat.ID, b.handleCommand(ctx, msg.From.ID, msg.Chat.ID, msg.Command(), msg.CommandArguments()))
		return
	}

	if fileID, ok := imageFileID(msg); ok {
		b.handlePhoto(ctx, msg, fileID)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand выполняет команду и возвращает текст ответа
func (b *Bot) handleCommand(ctx context.Context, userID, chatID int64, command, args string) string {
	var (
		user *entity.User
		err  error
		text string
	)

	switch command {
	case "start":
		_, err = b.users.Cancel(ctx, userID, chatID)
		text = msgStart

	case "help":
		return msgHelp

	case "params":
		if user, err = b.users.Get(ctx, userID, chatID); err == nil {
			text = fmt.Sprintf(msgParams, user.Params)
		}

	case "tilt", "euler", "focal":
		var values []float64
		if values, err = parseArgs(args, argCount[command]); err != nil {
			break
		}
		if user, err = b.users.UpdateParams(ctx, userID, chatID, paramUpdate(command, values)); err == nil {
			text = fmt.Sprintf(msgParamsUpdated, user.Params)
		}

	case "reset":
		if user, err = b.users.ResetParams(ctx, userID, chatID); err == nil {
			text = fmt.Sprintf(msgParamsUpdated, user.Params)
		}

	case "transform":
		_, err = b.users.BeginTransform(ctx, userID, chatID)
		text = msgAwaitingPhoto

	case "cancel":
		_, err = b.users.Cancel(ctx, userID, chatID)
		text = msgCancelled

	default:
		return msgUnknownCommand
	}

	if err != nil {
		if errors.Is(err, entity.ErrParameter) {
			return fmt.Sprintf(msgParamsError, err)
		}
		b.logger.Error("command failed", zap.String("command", command), zap.Int64("user_id", userID), zap.Error(err))
		return msgProcessingError
	}
	return text
}

var argCount = map[string]int{"tilt": 1, "euler": 3, "focal": 1}

// parseArgs разбирает ровно n чисел из аргументов команды.
func parseArgs(args string, n int) ([]float64, error) {
	fields := strings.Fields(strings.ReplaceAll(args, ",", " "))
	if len(fields) != n {
		return nil, entity.NewParameterError("expected %d numeric argument(s), got %d", n, len(fields))
	}

	values := make([]float64, n)
	for i, f := range fields {
		v, err := cast.ToFloat64E(f)
		if err != nil {
			return nil, entity.NewParameterError("%q is not a number", f)
		}
		values[i] = v
	}
	return values, nil
}

// paramUpdate возвращает изменение параметров для команды.
func paramUpdate(command string, values []float64) func(*entity.CameraParameters) {
	return func(p *entity.CameraParameters) {
		switch command {
		case "tilt":
			p.Mode = entity.RotationTilt
			p.TiltAngle = values[0]
			p.Pitch, p.Yaw, p.Roll = 0, 0, 0
		case "euler":
			p.Mode = entity.RotationEuler
			p.Pitch, p.Yaw, p.Roll = values[0], values[1], values[2]
			p.TiltAngle = 0
		case "focal":
			p.FocalLength = values[0]
		}
	}
}

// imageFileID выбирает файл с максимальным разрешением из фото или документа-изображения
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// handlePhoto преобразует фото и отправляет результат
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get user", zap.Error(err))
		return
	}
	if user.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}

	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("download photo", zap.String("file_id", fileID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.photos.ProcessPhoto(ctx, msg.From.ID, msg.Chat.ID, imageData)
	if err != nil {
		b.logger.Warn("transform photo", zap.Int64("user_id", msg.From.ID), zap.Error(err))
		b.sendMessage(msg.Chat.ID, errorReply(err))
		return
	}

	reply := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "birdseye.png", Bytes: out.PNG})
	reply.Caption = fmt.Sprintf(msgResult, out.Result.Width, out.Result.Height)
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("send photo", zap.Error(err))
	}
}

// errorReply подбирает ответ пользователю по виду ошибки
func errorReply(err error) string {
	switch {
	case errors.Is(err, entity.ErrComputation):
		return msgComputeError
	case errors.Is(err, entity.ErrParameter):
		return fmt.Sprintf(msgParamsError, err)
	default:
		return msgProcessingError
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, errors.Wrap(err, "get file")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
