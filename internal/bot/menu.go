package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/linkbot/core/logger"
	"github.com/m3rciful/linkbot/core/telegram/callbacks"
	"github.com/m3rciful/linkbot/core/telegram/format"
	tghelpers "github.com/m3rciful/linkbot/core/telegram/helpers"
	"github.com/m3rciful/linkbot/core/telegram/keyboard"
	"github.com/m3rciful/linkbot/internal/catalog"

	tele "gopkg.in/telebot.v4"
)

func (h *Handlers) onStart(c tele.Context) error {
	text := fmt.Sprintf(textWelcome, firstName(c), h.catalog.Greeting())
	return tghelpers.SendMD(c, text, mainMenu(h.catalog, h.ordersEnabled()))
}

func (h *Handlers) onBack(c tele.Context) error {
	text := fmt.Sprintf(textWelcomeBack, firstName(c))
	return tghelpers.EditOrSendMD(c, text, mainMenu(h.catalog, h.ordersEnabled()))
}

func (h *Handlers) onList(c tele.Context) error {
	menu := keyboard.InlineButtons(backButton(btnOpenMenu))
	return tghelpers.SendMD(c, h.catalog.AllText(), menu)
}

func (h *Handlers) onAll(c tele.Context) error {
	menu := keyboard.InlineButtons(backButton(btnBack))
	return tghelpers.EditOrSendMD(c, h.catalog.AllText(), menu)
}

func (h *Handlers) onCategory(c tele.Context) error {
	key := callbacks.CallbackPayload(c)
	cat, ok := h.catalog.Lookup(key)
	if !ok {
		return unhandled("unknown_category")
	}
	logger.LogEvent(tghelpers.BuildContext(c), logger.Catalog, slog.LevelDebug, "catalog.category",
		slog.String("category", key),
		slog.Int("links", len(cat.Links)),
	)
	return tghelpers.EditOrSendMD(c, catalog.CategoryText(cat), categoryMenu(cat))
}

func (h *Handlers) onOpenAll(c tele.Context) error {
	key := callbacks.CallbackPayload(c)
	cat, ok := h.catalog.Lookup(key)
	if !ok || !cat.OpenAll {
		return unhandled("open_all_unavailable")
	}
	if err := tghelpers.EditOrSendMD(c, textOpening); err != nil {
		return err
	}
	for _, msg := range catalog.OpenAllMessages(cat) {
		if err := tghelpers.SendMDPreview(c, msg); err != nil {
			return err
		}
	}
	return tghelpers.SendText(c, textOpenedAll, &tele.SendOptions{
		ReplyMarkup: keyboard.InlineButtons(backButton(btnBackToMenu)),
	})
}

func (h *Handlers) commandList() string {
	if h.reg == nil {
		return ""
	}
	var b strings.Builder
	for _, cmd := range h.reg.ListCommands(true) {
		fmt.Fprintf(&b, "/%s - %s\n", format.EscapeV1(cmd.Text), cmd.Description)
	}
	return b.String()
}

func (h *Handlers) onHelp(c tele.Context) error {
	return tghelpers.SendMD(c, textHelpHeader+h.commandList()+textHelpFooter)
}

func (h *Handlers) onHelpCallback(c tele.Context) error {
	text := strings.TrimSuffix(textHelpSteps+h.commandList(), "\n")
	return tghelpers.EditOrSendMD(c, text, keyboard.InlineButtons(backButton(btnBack)))
}

func (h *Handlers) onShareCallback(c tele.Context) error {
	name := h.botUsername()
	text := fmt.Sprintf(textShareCallback, format.EscapeV1(BotLink(name)))
	return tghelpers.EditOrSendMD(c, text, shareMenu(name, h.catalog.ShareText(), btnShareLink, true))
}

func (h *Handlers) onShare(c tele.Context) error {
	name := h.botUsername()
	text := fmt.Sprintf(textShareCommand, BotLink(name))
	return tghelpers.SendText(c, text, &tele.SendOptions{
		ReplyMarkup: shareMenu(name, h.catalog.ShareText(), btnShareTG, false),
	})
}
