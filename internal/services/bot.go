package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"survey/internal/models"

	"github.com/m-mizutani/goerr/v2"
	tele "gopkg.in/telebot.v3"
)

const textSubmission = `📝 <b>New survey response</b>

<b>Name:</b> %s
<b>Email:</b> %s
<b>Gender:</b> %s
<b>Stack:</b> %s
<b>Certificates:</b> %d
<b>At:</b> %s UTC`

// Bot posts submission notices to a telegram chat.
type Bot struct {
	bot    *tele.Bot
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	b, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create telegram bot")
	}
	return &Bot{b, chatID}, nil
}

func formatSubmission(response *models.SurveyResponse) string {
	return fmt.Sprintf(textSubmission,
		html.EscapeString(response.FullName),
		html.EscapeString(response.EmailAddress),
		html.EscapeString(response.Gender),
		html.EscapeString(strings.ReplaceAll(response.ProgrammingStack, ",", ", ")),
		len(response.Certificates),
		response.DateResponded.UTC().Format(models.DateRespondedLayout),
	)
}

func (bot *Bot) NotifySubmission(ctx context.Context, response *models.SurveyResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := bot.bot.Send(&tele.Chat{ID: bot.chatID}, formatSubmission(response), &tele.SendOptions{
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to send telegram message", goerr.V("chat_id", bot.chatID))
	}
	return nil
}

// NoopNotifier drops every notice. It is used when no bot is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifySubmission(context.Context, *models.SurveyResponse) error {
	return nil
}
