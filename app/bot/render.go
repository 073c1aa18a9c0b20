package bot

import (
	"fmt"

	"github.com/foodpod-bot/foodpod/app/callback"
	"github.com/foodpod-bot/foodpod/app/dialog"
	"github.com/foodpod-bot/foodpod/app/view"
	tghelpers "github.com/foodpod-bot/foodpod/core/telegram/helpers"
	"github.com/foodpod-bot/foodpod/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// markup encodes the button rows of s. Screens without rows yield an empty
// inline keyboard, which removes the old one on edit.
func markup(s view.Screen) (*tele.ReplyMarkup, error) {
	rows := make([][]keyboard.InlineBtn, 0, len(s.Rows))
	for _, row := range s.Rows {
		out := make([]keyboard.InlineBtn, 0, len(row))
		for _, btn := range row {
			data, err := callback.Encode(btn.Data)
			if err != nil {
				return nil, fmt.Errorf("render %q: %w", btn.Text, err)
			}
			out = append(out, keyboard.InlineBtn{Text: btn.Text, Data: data})
		}
		rows = append(rows, out)
	}
	return keyboard.InlineButtonsRows(rows...), nil
}

// render delivers an engine outcome through the current update.
func render(c tele.Context, out dialog.Outcome) error {
	if err := tghelpers.Respond(c, out.Toast); err != nil {
		return err
	}

	switch out.Mode {
	case dialog.ModeEdit:
		rm, err := markup(out.Screen)
		if err != nil {
			return err
		}
		if c.Callback() == nil || c.Callback().Message == nil {
			return tghelpers.SendMD(c, out.Screen.Text, rm)
		}
		return tghelpers.EditOrSendMD(c, out.Screen.Text, rm)

	case dialog.ModeSend:
		if len(out.Screen.Rows) == 0 {
			return tghelpers.SendMD(c, out.Screen.Text)
		}
		rm, err := markup(out.Screen)
		if err != nil {
			return err
		}
		return tghelpers.SendMD(c, out.Screen.Text, rm)

	case dialog.ModePrompt:
		return tghelpers.SendMD(c, out.Screen.Text, keyboard.ForceReply())
	}
	return nil
}
