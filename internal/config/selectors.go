package config

import "fmt"

// SelectorsConfig is the DOM contract the sidebar is expected to follow.
type SelectorsConfig struct {
	Sidebar       string `yaml:"sidebar"`
	SidebarToggle string `yaml:"sidebar_toggle"`
	MenuLink      string `yaml:"menu_link"`
	MenuItem      string `yaml:"menu_item"`
	SubmenuItem   string `yaml:"submenu_item"`
	SubmenuLink   string `yaml:"submenu_link"`
}

// DefaultSelectors returns the dashboard's sidebar selectors.
func DefaultSelectors() SelectorsConfig {
	return SelectorsConfig{
		Sidebar:       "nav[id=sidebar]",
		SidebarToggle: `[aria-label="toggle sidebar visibility"]`,
		MenuLink:      ".simplebar-content li.nav-item a",
		MenuItem:      ".simplebar-content li.nav-item",
		SubmenuItem:   "ul.list-unstyled li",
		SubmenuLink:   "ul.list-unstyled li a",
	}
}

// Validate requires every selector to be set.
func (s SelectorsConfig) Validate() error {
	for name, v := range map[string]string{
		"sidebar":        s.Sidebar,
		"sidebar_toggle": s.SidebarToggle,
		"menu_link":      s.MenuLink,
		"menu_item":      s.MenuItem,
		"submenu_item":   s.SubmenuItem,
		"submenu_link":   s.SubmenuLink,
	} {
		if v == "" {
			return fmt.Errorf("selectors.%s must not be empty", name)
		}
	}
	return nil
}
