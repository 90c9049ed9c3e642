package telegram

import (
	"testing"

	"github.com/m3rciful/linkbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestResolveCallbackExactBeatsPrefix(t *testing.T) {
	reg := NewRegistry()
	var hit string
	mustRegister(t, reg.RegisterCallback("category_all", func(tele.Context) error { hit = "all"; return nil }))
	mustRegister(t, reg.RegisterCallbackPrefix("category_", func(tele.Context) error { hit = "prefix"; return nil }))
	mustRegister(t, reg.RegisterCallbackPrefix("category_x_", func(tele.Context) error { hit = "longer"; return nil }))

	h, rest, ok := reg.ResolveCallback("category_all")
	if !ok || rest != "" {
		t.Fatalf("exact key not resolved: ok=%v rest=%q", ok, rest)
	}
	_ = h(nil)
	if hit != "all" {
		t.Fatalf("expected exact handler, got %s", hit)
	}

	h, rest, ok = reg.ResolveCallback("category_social")
	if !ok || rest != "social" {
		t.Fatalf("prefix not resolved: ok=%v rest=%q", ok, rest)
	}
	_ = h(nil)
	if hit != "prefix" {
		t.Fatalf("expected prefix handler, got %s", hit)
	}

	h, rest, _ = reg.ResolveCallback("category_x_y")
	_ = h(nil)
	if hit != "longer" || rest != "y" {
		t.Fatalf("expected longest prefix, got %s rest=%q", hit, rest)
	}

	if _, _, ok := reg.ResolveCallback("category_"); ok {
		t.Fatal("bare prefix must not resolve")
	}
	if _, _, ok := reg.ResolveCallback("mystery"); ok {
		t.Fatal("unknown key must not resolve")
	}
}

func TestRegisterCallbackRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	mustRegister(t, reg.RegisterCallback("help", noop))
	if err := reg.RegisterCallback("help", noop); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatal("expected invalid registration error")
	}
}

func TestCommandsKeepOrderAndAliases(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start"})
	reg.RegisterCommand("/links", commands.Command{Handler: noop, Description: "links", Aliases: []string{"contacts"}})
	reg.RegisterCommand("/notifytest", commands.Command{Handler: noop, Description: "test", AdminOnly: true, Hidden: true})
	reg.RegisterCommand("bad", commands.Command{Handler: noop, Description: "x"})

	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "start" || visible[1].Text != "links" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("all commands = %+v", all)
	}
	if key, _, ok := reg.LookupCommand("/contacts@linkbot extra"); !ok || key != "/links" {
		t.Fatalf("alias lookup = %q %v", key, ok)
	}
	if _, _, ok := reg.LookupCommand("hello"); ok {
		t.Fatal("plain text must not match a command")
	}
}

type recordingSetter struct{ got []tele.Command }

func (r *recordingSetter) SetCommands(opts ...interface{}) error {
	r.got, _ = opts[0].([]tele.Command)
	return nil
}

func TestInitBotCommandsPublishesVisibleOnly(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/help", commands.Command{Handler: noop, Description: "help"})
	reg.RegisterCommand("/notifytest", commands.Command{Handler: noop, Description: "test", AdminOnly: true})
	setter := &recordingSetter{}
	InitBotCommands(setter, reg)
	if len(setter.got) != 1 || setter.got[0].Text != "help" {
		t.Fatalf("published = %+v", setter.got)
	}
}

func mustRegister(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("register: %v", err)
	}
}
