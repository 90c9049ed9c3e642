// Package catalog holds the immutable link menu a bot presents: ordered
// categories of named links plus the texts that frame them.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// AllKey is reserved for the "all categories" view.
const AllKey = "all"

var (
	// ErrEmpty is returned for a catalog without categories.
	ErrEmpty = errors.New("catalog has no categories")

	keyRe     = regexp.MustCompile(`^[a-z0-9_]+$`)
	commandRe = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)
)

// Link is a single named URL.
type Link struct {
	Name string `yaml:"name" db:"name"`
	URL  string `yaml:"url" db:"url"`
}

// Category groups links under a header. OpenAll enables the button that
// sends every link as its own message.
type Category struct {
	Key     string `yaml:"key" db:"key"`
	Button  string `yaml:"button" db:"button"`
	Text    string `yaml:"text" db:"display_text"`
	OpenAll bool   `yaml:"open_all" db:"open_all"`
	Links   []Link `yaml:"links"`
}

// Spec is the serialized catalog shape shared by YAML files and the database.
type Spec struct {
	Name        string     `yaml:"name" db:"name"`
	ListCommand string     `yaml:"list_command" db:"list_command"`
	Greeting    string     `yaml:"greeting" db:"greeting"`
	AllTitle    string     `yaml:"all_title" db:"all_title"`
	AllButton   string     `yaml:"all_button" db:"all_button"`
	ShareText   string     `yaml:"share_text" db:"share_text"`
	Categories  []Category `yaml:"categories"`
}

// Catalog is an immutable, validated menu. Build it once with New and share
// the pointer; accessors return copies.
type Catalog struct {
	spec  Spec
	index map[string]int
}

// New validates spec, fills defaults and returns the catalog.
func New(spec Spec) (*Catalog, error) {
	spec = withDefaults(spec)
	if err := validate(spec); err != nil {
		return nil, err
	}
	c := &Catalog{spec: deepCopy(spec), index: make(map[string]int, len(spec.Categories))}
	for i, cat := range c.spec.Categories {
		c.index[cat.Key] = i
	}
	return c, nil
}

func withDefaults(s Spec) Spec {
	s.Name = strings.TrimSpace(s.Name)
	s.ListCommand = strings.TrimPrefix(strings.TrimSpace(s.ListCommand), "/")
	if s.ListCommand == "" {
		s.ListCommand = "links"
	}
	if s.Greeting == "" {
		s.Greeting = "Я бот для быстрого доступа к полезным ссылкам. Выбери категорию ниже:"
	}
	if s.AllTitle == "" {
		s.AllTitle = "🔗 *Все доступные ссылки:*"
	}
	if s.AllButton == "" {
		s.AllButton = "📋 Все ссылки"
	}
	if s.ShareText == "" {
		s.ShareText = "Классный бот с полезными ссылками!"
	}
	return s
}

func validate(s Spec) error {
	if len(s.Categories) == 0 {
		return ErrEmpty
	}
	if !commandRe.MatchString(s.ListCommand) {
		return fmt.Errorf("invalid list_command %q", s.ListCommand)
	}
	seen := make(map[string]struct{}, len(s.Categories))
	for i, cat := range s.Categories {
		switch {
		case !keyRe.MatchString(cat.Key):
			return fmt.Errorf("category %d: invalid key %q", i, cat.Key)
		case cat.Key == AllKey:
			return fmt.Errorf("category %d: key %q is reserved", i, AllKey)
		case strings.TrimSpace(cat.Text) == "":
			return fmt.Errorf("category %q: text is required", cat.Key)
		case strings.TrimSpace(cat.Button) == "":
			return fmt.Errorf("category %q: button is required", cat.Key)
		case len(cat.Links) == 0:
			return fmt.Errorf("category %q: no links", cat.Key)
		}
		if _, dup := seen[cat.Key]; dup {
			return fmt.Errorf("category %q: duplicate key", cat.Key)
		}
		seen[cat.Key] = struct{}{}
		for j, l := range cat.Links {
			if strings.TrimSpace(l.Name) == "" || strings.TrimSpace(l.URL) == "" {
				return fmt.Errorf("category %q link %d: name and url are required", cat.Key, j)
			}
		}
	}
	return nil
}

func deepCopy(s Spec) Spec {
	cats := make([]Category, len(s.Categories))
	for i, cat := range s.Categories {
		cat.Links = append([]Link(nil), cat.Links...)
		cats[i] = cat
	}
	s.Categories = cats
	return s
}

// Name identifies the catalog, e.g. the preset it came from.
func (c *Catalog) Name() string { return c.spec.Name }

// ListCommand is the command (without slash) that shows every link.
func (c *Catalog) ListCommand() string { return c.spec.ListCommand }

// Greeting follows the "hello" line of /start.
func (c *Catalog) Greeting() string { return c.spec.Greeting }

// AllButton labels the "all categories" button.
func (c *Catalog) AllButton() string { return c.spec.AllButton }

// ShareText is the suggested message for the share button.
func (c *Catalog) ShareText() string { return c.spec.ShareText }

// Len returns the number of categories.
func (c *Catalog) Len() int { return len(c.spec.Categories) }

// Categories returns the categories in declared order.
func (c *Catalog) Categories() []Category {
	return deepCopy(c.spec).Categories
}

// Lookup returns the category stored under key.
func (c *Catalog) Lookup(key string) (Category, bool) {
	i, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	cat := c.spec.Categories[i]
	cat.Links = append([]Link(nil), cat.Links...)
	return cat, true
}

// Spec returns a copy of the underlying specification.
func (c *Catalog) Spec() Spec {
	return deepCopy(c.spec)
}
