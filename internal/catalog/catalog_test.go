package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestPresetsLoad(t *testing.T) {
	names := PresetNames()
	if strings.Join(names, ",") != "contacts,links" {
		t.Fatalf("unexpected presets: %v", names)
	}
	for _, name := range names {
		c, err := Preset(name)
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		if c.Name() != name || c.ListCommand() != name {
			t.Fatalf("preset %s: name=%q list=%q", name, c.Name(), c.ListCommand())
		}
	}
	if _, err := Preset("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestCategoryTextEscapesURL(t *testing.T) {
	c, err := Preset("links")
	if err != nil {
		t.Fatal(err)
	}
	cat, ok := c.Lookup("main")
	if !ok {
		t.Fatal("main category missing")
	}
	want := "🏠 *Основные ссылки:*\n\n" +
		"• [📚 Документация](https://docs.example.com)\n" +
		"• [🌐 Официальный сайт](https://example.com)\n" +
		"• [💬 Техподдержка](https://t.me/support\\_chat)\n"
	if got := CategoryText(cat); got != want {
		t.Fatalf("category text mismatch:\n%q\nwant\n%q", got, want)
	}

	msgs := OpenAllMessages(cat)
	if len(msgs) != 3 || msgs[2] != "[💬 Техподдержка](https://t.me/support_chat)" {
		t.Fatalf("unexpected open-all messages: %q", msgs)
	}
}

func TestAllTextStable(t *testing.T) {
	c, err := Preset("links")
	if err != nil {
		t.Fatal(err)
	}
	first := c.AllText()
	if first != c.AllText() {
		t.Fatal("all view is not deterministic")
	}
	if !strings.HasPrefix(first, "🔗 *Все доступные ссылки:*\n\n🏠 *Основные ссылки:*\n• ") {
		t.Fatalf("unexpected prefix: %q", first[:80])
	}
	iMain := strings.Index(first, "Основные")
	iSocial := strings.Index(first, "Социальные")
	iRes := strings.Index(first, "🛠 *Ресурсы:*")
	if !(iMain < iSocial && iSocial < iRes) {
		t.Fatalf("categories out of order: %d %d %d", iMain, iSocial, iRes)
	}
	if !strings.HasSuffix(first, "(https://blog.example.com)\n\n") {
		t.Fatalf("unexpected suffix: %q", first[len(first)-40:])
	}
}

func TestContactsSocialHasNoOpenAll(t *testing.T) {
	c, err := Preset("contacts")
	if err != nil {
		t.Fatal(err)
	}
	cat, ok := c.Lookup("social")
	if !ok {
		t.Fatal("social category missing")
	}
	if cat.OpenAll {
		t.Fatal("contacts social category must not offer open-all")
	}
}

func TestNewValidates(t *testing.T) {
	link := []Link{{Name: "a", URL: "https://a"}}
	cases := map[string]Spec{
		"empty":     {},
		"bad key":   {Categories: []Category{{Key: "Bad Key", Button: "b", Text: "t", Links: link}}},
		"reserved":  {Categories: []Category{{Key: AllKey, Button: "b", Text: "t", Links: link}}},
		"no links":  {Categories: []Category{{Key: "x", Button: "b", Text: "t"}}},
		"duplicate": {Categories: []Category{{Key: "x", Button: "b", Text: "t", Links: link}, {Key: "x", Button: "b", Text: "t", Links: link}}},
		"bad cmd":   {ListCommand: "links now", Categories: []Category{{Key: "x", Button: "b", Text: "t", Links: link}}},
	}
	for name, spec := range cases {
		if _, err := New(spec); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	c, err := New(Spec{ListCommand: "/docs", Categories: []Category{{Key: "x", Button: "b", Text: "t", Links: link}}})
	if err != nil {
		t.Fatal(err)
	}
	if c.ListCommand() != "docs" || c.AllButton() == "" {
		t.Fatalf("defaults not applied: %+v", c.Spec())
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := Preset("links")
	if err != nil {
		t.Fatal(err)
	}
	cat, _ := c.Lookup("main")
	cat.Links[0].Name = "changed"
	cats := c.Categories()
	cats[0].Text = "changed"
	again, _ := c.Lookup("main")
	if again.Links[0].Name == "changed" || c.Categories()[0].Text == "changed" {
		t.Fatal("catalog mutated through a returned copy")
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	valid := "categories:\n  - {key: x, button: b, text: t, links: [{name: a, url: 'https://a'}]}\n"
	if _, err := Parse([]byte(valid)); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}
	if _, err := Parse([]byte("colour: red\n" + valid)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAssembleGroupsLinks(t *testing.T) {
	spec := assemble(Spec{Name: "db"},
		[]categoryRow{{Key: "b", Button: "B", Text: "*B*"}, {Key: "a", Button: "A", Text: "*A*", OpenAll: true}},
		[]linkRow{
			{CategoryKey: "a", Name: "a1", URL: "https://a/1"},
			{CategoryKey: "b", Name: "b1", URL: "https://b/1"},
			{CategoryKey: "a", Name: "a2", URL: "https://a/2"},
			{CategoryKey: "ghost", Name: "g", URL: "https://g"},
		})
	if len(spec.Categories) != 2 || spec.Categories[0].Key != "b" {
		t.Fatalf("row order not kept: %+v", spec.Categories)
	}
	a := spec.Categories[1]
	if !a.OpenAll || len(a.Links) != 2 || a.Links[1].Name != "a2" {
		t.Fatalf("unexpected category a: %+v", a)
	}
	if _, err := New(spec); err != nil {
		t.Fatalf("assembled spec invalid: %v", err)
	}
}
