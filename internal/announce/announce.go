// Package announce batches the bills affected by one command invocation into a
// single message instead of announcing each bill on its own. Callers add every
// affected bill first and flush exactly once at the end.
package announce

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

// Sender is the single send capability a queue needs. *discordgo.Session
// satisfies it.
type Sender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Renderer supplies the header and per-bill line for one announcement variant.
type Renderer interface {
	Header() string
	Line(b *db.Bill) string
}

type Queue struct {
	renderer Renderer
	bills    []*db.Bill
}

func NewQueue(r Renderer) *Queue {
	return &Queue{renderer: r}
}

func (q *Queue) Add(b *db.Bill) {
	q.bills = append(q.bills, b)
}

func (q *Queue) Len() int {
	return len(q.bills)
}

// Render builds the combined message, bills in insertion order. An empty queue
// renders to the empty string.
func (q *Queue) Render() string {
	if len(q.bills) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(q.renderer.Header())
	b.WriteString("\n")
	for _, bill := range q.bills {
		b.WriteString(q.renderer.Line(bill))
		b.WriteString("\n")
	}
	return b.String()
}

// Flush sends the rendered message once and clears the queue. Flushing an
// empty queue sends nothing.
func (q *Queue) Flush(s Sender, channelID string) error {
	content := q.Render()
	q.bills = nil
	if content == "" {
		return nil
	}
	_, err := s.ChannelMessageSend(channelID, content)
	return err
}

func billLine(b *db.Bill) string {
	return fmt.Sprintf("Bill #%d - **%s** (<%s>)", b.ID, b.Name, b.Link)
}

// PassedLegislature announces bills that passed the Legislature's vote.
type PassedLegislature struct{}

func (PassedLegislature) Header() string {
	return ":white_check_mark: The following bills were passed by the Legislature."
}

func (PassedLegislature) Line(b *db.Bill) string {
	if b.IsVetoable {
		return billLine(b) + " - sent to the Ministry"
	}
	return billLine(b) + " - not vetoable, now law"
}

// PassedIntoLaw announces bills the Ministry passed into law.
type PassedIntoLaw struct{}

func (PassedIntoLaw) Header() string {
	return ":white_check_mark: The following bills were passed into law by the Ministry."
}

func (PassedIntoLaw) Line(b *db.Bill) string {
	return billLine(b)
}

// Vetoed announces bills the Ministry vetoed.
type Vetoed struct{}

func (Vetoed) Header() string {
	return ":x: The following bills were vetoed by the Ministry."
}

func (Vetoed) Line(b *db.Bill) string {
	return billLine(b)
}

// VetoOverridden announces vetoes the Legislature overrode.
type VetoOverridden struct{}

func (VetoOverridden) Header() string {
	return ":ballot_box: The Legislature overrode the Ministry's veto on the following bills, which are now law."
}

func (VetoOverridden) Line(b *db.Bill) string {
	return billLine(b)
}

// Repealed announces laws that were repealed.
type Repealed struct{}

func (Repealed) Header() string {
	return ":wastebasket: The following laws were repealed."
}

func (Repealed) Line(b *db.Bill) string {
	return billLine(b)
}
