package helpers

import tele "gopkg.in/telebot.v4"

func markdownOpts(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown, DisableWebPagePreview: true}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	if len(opts) > 0 && opts[0] != nil {
		return c.Send(text, opts[0])
	}
	return c.Send(text)
}

// SendMD sends a message with Markdown parse mode and optional reply markup.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Send(text, markdownOpts(markup))
}

// SendMDPreview is SendMD with link previews left on, for single-link messages.
func SendMDPreview(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := markdownOpts(markup)
	opts.DisableWebPagePreview = false
	return c.Send(text, opts)
}

// EditOrSendMD tries to edit the message (Markdown) or sends a new one if edit fails.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, markdownOpts(markup))
}
