package jobwizard

import (
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/editor"

	"github.com/recruitdash/recruitdash/internal/logger"
)

// editedMsg carries text edited in $EDITOR back to field key.
type editedMsg struct {
	key     string
	content string
}

// openEditor edits content in the user's editor through a temp file.
func openEditor(key, content string) tea.Cmd {
	tmp, err := os.CreateTemp("", "recruitdash_"+key+"_*.md")
	if err != nil {
		logger.Warn("editor temp file: %v", err)
		return nil
	}
	path := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil
	}
	_ = tmp.Close()

	cmd, err := editor.Command("recruitdash", path)
	if err != nil {
		_ = os.Remove(path)
		logger.Warn("editor: %v", err)
		return nil
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return editedMsg{key: key, content: strings.TrimRight(string(data), "\n")}
	})
}
