package dashboard

import (
	"fmt"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/view"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultTheme = "light"

type ThemeSwitcher struct {
	page *view.Page
}

func NewThemeSwitcher(page *view.Page) *ThemeSwitcher {
	return &ThemeSwitcher{page: page}
}

// ApplyTheme replaces every body class with the one class for name and
// returns it. The body classes are set even when the page has no theme
// selector to sync.
func (t *ThemeSwitcher) ApplyTheme(name string) (string, error) {
	class := ThemeClass(name)
	t.page.SetBodyClasses(class)
	if err := t.page.SetValue(ThemeSelector, strings.TrimPrefix(class, "theme-")); err != nil {
		return class, fmt.Errorf("sync theme selector: %w", err)
	}
	return class, nil
}

func ThemeClass(name string) string {
	n := strings.Join(strings.Fields(cases.Lower(language.English).String(name)), "-")
	if n == "" {
		n = DefaultTheme
	}
	return "theme-" + n
}
