package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// noticeTTL is how long a NoticeMsg stays visible.
const noticeTTL = 5 * time.Second

// FooterModel renders key hints and the latest notice.
type FooterModel struct {
	bindings []key.Binding
	notice   string
	noticeAt time.Time
	width    int
}

func NewFooterModel(km KeyMap) FooterModel {
	return FooterModel{bindings: km.footerBindings()}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
}

// SetNotice shows text until noticeTTL after at.
func (f *FooterModel) SetNotice(text string, at time.Time) {
	f.notice = text
	f.noticeAt = at
}

// Expire clears the notice once it is older than noticeTTL.
func (f *FooterModel) Expire(now time.Time) {
	if f.notice != "" && now.Sub(f.noticeAt) > noticeTTL {
		f.notice = ""
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	hints := make([]string, 0, len(f.bindings))
	for _, b := range f.bindings {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	left := strings.Join(hints, "  ")
	if f.notice == "" {
		return left
	}
	right := noticeStyle.Render(f.notice)
	gap := f.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}
