package telegram

import (
	"strconv"

	"github.com/go-telegram/bot/models"
)

// DeriveUserID derives a stable orchestrator user_id from a Telegram
// update. Username is preferred so the identity survives device changes;
// the numeric user ID and chat ID are fallbacks for users without one.
func DeriveUserID(update *models.Update) string {
	if update == nil || update.Message == nil {
		return "tg_unknown"
	}

	if from := update.Message.From; from != nil {
		if from.Username != "" {
			return "tg_" + from.Username
		}
		if from.ID != 0 {
			return "tg_id_" + strconv.FormatInt(from.ID, 10)
		}
	}

	if update.Message.Chat.ID != 0 {
		return "tg_chat_" + strconv.FormatInt(update.Message.Chat.ID, 10)
	}

	return "tg_unknown"
}
