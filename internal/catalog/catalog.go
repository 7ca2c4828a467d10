package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// MinDistinctNames is the smallest catalog that can always fill a 4-option question.
const MinDistinctNames = 4

var (
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrCatalogTooSmall = errors.New("catalog has fewer distinct item names than options per question")
)

// Item is a single riddle entry.
type Item struct {
	Name  string `yaml:"name" json:"name"`
	Hint  string `yaml:"hint" json:"hint"`
	Image string `yaml:"image" json:"image"`
}

// Theme groups items under a named category with display metadata.
type Theme struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Color string `yaml:"color" json:"color"`
	Items []Item `yaml:"items" json:"items"`
}

// QuestionKey identifies a (theme, item) pair for de-duplication within a session.
type QuestionKey struct {
	Theme string
	Item  string
}

// Key derives the question key for an item of a theme.
func Key(themeID, itemName string) QuestionKey {
	return QuestionKey{Theme: themeID, Item: itemName}
}

type document struct {
	Themes []Theme `yaml:"themes"`
}

// Catalog is the read-only content source. Theme order is preserved.
type Catalog struct {
	themes []Theme
	byID   map[string]int
}

// New builds a catalog after structural validation. It does not enforce
// MinDistinctNames; use CheckMinimum for that.
func New(themes []Theme) (*Catalog, error) {
	c := &Catalog{
		themes: make([]Theme, 0, len(themes)),
		byID:   make(map[string]int, len(themes)),
	}
	for _, t := range themes {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: theme without id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate theme %q", ErrInvalidCatalog, t.ID)
		}
		seen := make(map[string]struct{}, len(t.Items))
		for _, it := range t.Items {
			if it.Name == "" {
				return nil, fmt.Errorf("%w: theme %q has an item without name", ErrInvalidCatalog, t.ID)
			}
			if _, dup := seen[it.Name]; dup {
				return nil, fmt.Errorf("%w: duplicate item %q in theme %q", ErrInvalidCatalog, it.Name, t.ID)
			}
			seen[it.Name] = struct{}{}
		}
		if t.Label == "" {
			t.Label = t.ID
		}
		t.Items = append([]Item(nil), t.Items...)
		c.byID[t.ID] = len(c.themes)
		c.themes = append(c.themes, t)
	}
	return c, nil
}

// Parse decodes a YAML catalog and checks the minimum size.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c, err := New(doc.Themes)
	if err != nil {
		return nil, err
	}
	if err := c.CheckMinimum(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the catalog at path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embeddedCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// CheckMinimum reports ErrCatalogTooSmall when fewer than MinDistinctNames
// distinct item names exist across all themes.
func (c *Catalog) CheckMinimum() error {
	if n := len(c.Names()); n < MinDistinctNames {
		return fmt.Errorf("%w: have %d, need %d", ErrCatalogTooSmall, n, MinDistinctNames)
	}
	return nil
}

func (c *Catalog) Themes() []Theme {
	return append([]Theme(nil), c.themes...)
}

func (c *Catalog) Theme(id string) (Theme, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Theme{}, false
	}
	return c.themes[i], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// ThemeIDs lists theme identifiers in catalog order.
func (c *Catalog) ThemeIDs() []string {
	ids := make([]string, len(c.themes))
	for i, t := range c.themes {
		ids[i] = t.ID
	}
	return ids
}

// Names returns every distinct item name across the catalog, first occurrence first.
func (c *Catalog) Names() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, t := range c.themes {
		for _, it := range t.Items {
			if _, ok := seen[it.Name]; ok {
				continue
			}
			seen[it.Name] = struct{}{}
			names = append(names, it.Name)
		}
	}
	return names
}

// Size is the number of (theme, item) pairs.
func (c *Catalog) Size() int {
	n := 0
	for _, t := range c.themes {
		n += len(t.Items)
	}
	return n
}
