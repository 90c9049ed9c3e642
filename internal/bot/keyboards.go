package bot

import (
	"net/url"

	"github.com/m3rciful/linkbot/core/telegram/keyboard"
	"github.com/m3rciful/linkbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

// Callback payloads.
const (
	CbAll            = "category_" + catalog.AllKey
	CbCategoryPrefix = "category_"
	CbOpenAllPrefix  = "open_all_"
	CbBack           = "back_to_menu"
	CbHelp           = "help"
	CbShare          = "share"
	CbNewOrder       = "new_order"
	CbCancelOrder    = "cancel_order"
)

func backButton(label string) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: label, Data: CbBack}
}

// mainMenu lays out category buttons two per row with "all" in the flow,
// then help/share and the optional order button.
func mainMenu(cat *catalog.Catalog, orders bool) *tele.ReplyMarkup {
	cats := cat.Categories()
	buttons := make([]keyboard.InlineBtn, 0, len(cats)+1)
	for _, c := range cats {
		buttons = append(buttons, keyboard.InlineBtn{Text: c.Button, Data: CbCategoryPrefix + c.Key})
	}
	buttons = append(buttons, keyboard.InlineBtn{Text: cat.AllButton(), Data: CbAll})

	rows := keyboard.Chunk(buttons, 2)
	rows = append(rows, []keyboard.InlineBtn{
		{Text: btnHelp, Data: CbHelp},
		{Text: btnShare, Data: CbShare},
	})
	if orders {
		rows = append(rows, []keyboard.InlineBtn{{Text: btnNewOrder, Data: CbNewOrder}})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func categoryMenu(c catalog.Category) *tele.ReplyMarkup {
	var buttons []keyboard.InlineBtn
	if c.OpenAll {
		buttons = append(buttons, keyboard.InlineBtn{Text: btnOpenAll, Data: CbOpenAllPrefix + c.Key})
	}
	buttons = append(buttons, backButton(btnBack))
	return keyboard.InlineButtons(buttons...)
}

func cancelMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtons(keyboard.InlineBtn{Text: btnCancel, Data: CbCancelOrder})
}

// BotLink is the public t.me address of the bot.
func BotLink(username string) string {
	return "https://t.me/" + username
}

// ShareURL opens Telegram's share dialog prefilled with the bot link and text.
func ShareURL(username, text string) string {
	q := url.Values{}
	q.Set("url", BotLink(username))
	q.Set("text", text)
	return "https://t.me/share/url?" + q.Encode()
}

func shareMenu(username, text, label string, withBack bool) *tele.ReplyMarkup {
	buttons := []keyboard.InlineBtn{{Text: label, URL: ShareURL(username, text)}}
	if withBack {
		buttons = append(buttons, backButton(btnBack))
	}
	return keyboard.InlineButtons(buttons...)
}
