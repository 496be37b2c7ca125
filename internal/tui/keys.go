package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	toggle  key.Binding
	save    key.Binding
	open    key.Binding
	refresh key.Binding
	quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(
			key.WithKeys("tab", "esc", "t"),
			key.WithHelp("tab", "config"),
		),
		save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "guardar"),
		),
		open: key.NewBinding(
			key.WithKeys("ctrl+o", "o"),
			key.WithHelp("o", "abrir hoja"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "actualizar"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "salir"),
		),
	}
}
