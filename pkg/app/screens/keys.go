package screens

import "github.com/charmbracelet/bubbles/key"

type catalogKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	JumpPage key.Binding
	Search   key.Binding
	Genre    key.Binding
	GenreRev key.Binding
	Status   key.Binding
	Clear    key.Binding
	Open     key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func newCatalogKeyMap() catalogKeyMap {
	return catalogKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		JumpPage: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "jump")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g/G", "genre")),
		GenreRev: key.NewBinding(key.WithKeys("G")),
		Status:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k catalogKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.JumpPage, k.Search, k.Genre, k.Status, k.Clear, k.Open, k.Refresh, k.Quit}
}

func (k catalogKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.PrevPage, k.NextPage, k.JumpPage},
		{k.Search, k.Genre, k.Status, k.Clear},
		{k.Refresh, k.Quit},
	}
}

type detailsKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Read key.Binding
	Back key.Binding
	Quit key.Binding
}

func newDetailsKeyMap() detailsKeyMap {
	return detailsKeyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Read: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
		Back: key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k detailsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Read, k.Back, k.Quit}
}

func (k detailsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type readerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Next   key.Binding
	Prev   key.Binding
	Export key.Binding
	Back   key.Binding
	Quit   key.Binding
}

func newReaderKeyMap() readerKeyMap {
	return readerKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next chapter")),
		Prev:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev chapter")),
		Export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export EPUB")),
		Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k readerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Next, k.Prev, k.Export, k.Back, k.Quit}
}

func (k readerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
