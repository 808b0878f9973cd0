package cli

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/grovetools/spellsync/internal/sync"
)

const (
	inboxRemove     = "remove"
	inboxKeep       = "keep"
	inboxAlwaysAuto = "always"
	inboxNeverAuto  = "never"
)

// InboxPrompter asks interactively what to do with a processed inbox file.
type InboxPrompter struct{}

// NewInboxPrompter creates the interactive prompter for terminal sessions.
func NewInboxPrompter() *InboxPrompter {
	return &InboxPrompter{}
}

// ConfirmInboxRemoval shows a select form for the given inbox file.
func (p *InboxPrompter) ConfirmInboxRemoval(folder, path string) (sync.InboxChoice, error) {
	var answer string

	sel := huh.NewSelect[string]().
		Title(fmt.Sprintf("Words from %s were added to the global word list", filepath.Base(path))).
		Description(fmt.Sprintf("Folder: %s", folder)).
		Options(
			huh.NewOption("Remove the file", inboxRemove),
			huh.NewOption("Keep the file", inboxKeep),
			huh.NewOption("Always remove (remember for this folder)", inboxAlwaysAuto),
			huh.NewOption("Always keep (remember for this folder)", inboxNeverAuto),
		).
		Value(&answer)

	if err := huh.NewForm(huh.NewGroup(sel)).Run(); err != nil {
		return sync.InboxChoice{}, err
	}

	switch answer {
	case inboxAlwaysAuto:
		return sync.InboxChoice{Remove: true, Remember: true}, nil
	case inboxNeverAuto:
		return sync.InboxChoice{Remove: false, Remember: true}, nil
	case inboxKeep:
		return sync.InboxChoice{Remove: false}, nil
	default:
		return sync.InboxChoice{Remove: true}, nil
	}
}
