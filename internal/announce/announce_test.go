package announce

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/jonasbohmann/democraciv-discord-bot-sub001/internal/db"
)

type fakeSender struct {
	sent []string
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, content)
	return &discordgo.Message{}, nil
}

func bill(id int, name string, vetoable bool) *db.Bill {
	return &db.Bill{ID: id, Name: name, Link: "https://docs.example.com/" + name, IsVetoable: vetoable}
}

func TestRenderInsertionOrder(t *testing.T) {
	q := NewQueue(PassedIntoLaw{})
	q.Add(bill(3, "Third", true))
	q.Add(bill(1, "First", true))
	q.Add(bill(2, "Second", true))

	rendered := q.Render()
	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 lines, got %d: %q", len(lines), rendered)
	}
	if lines[0] != (PassedIntoLaw{}).Header() {
		t.Errorf("first line %q is not the header", lines[0])
	}
	for i, want := range []string{"Third", "First", "Second"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want bill %q (insertion order)", i+1, lines[i+1], want)
		}
	}
}

func TestRenderEmptyQueue(t *testing.T) {
	q := NewQueue(Vetoed{})
	if got := q.Render(); got != "" {
		t.Errorf("Render() of empty queue = %q, want empty", got)
	}
}

func TestFlushSendsOnceAndClears(t *testing.T) {
	sender := &fakeSender{}
	q := NewQueue(Repealed{})
	q.Add(bill(7, "Old Statute", true))
	q.Add(bill(8, "Older Statute", true))

	if err := q.Flush(sender, "chan"); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one message, got %d", len(sender.sent))
	}
	if q.Len() != 0 {
		t.Errorf("queue not cleared after flush, len = %d", q.Len())
	}

	// A second flush after clearing must not resend anything
	if err := q.Flush(sender, "chan"); err != nil {
		t.Fatalf("Flush() of empty queue error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("empty flush sent a message, total = %d", len(sender.sent))
	}
}

func TestFlushEmptyQueueSendsNothing(t *testing.T) {
	sender := &fakeSender{}
	q := NewQueue(PassedLegislature{})
	if err := q.Flush(sender, "chan"); err != nil {
		t.Fatalf("Flush() error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no messages, got %v", sender.sent)
	}
}

func TestPassedLegislatureLine(t *testing.T) {
	r := PassedLegislature{}
	if got := r.Line(bill(1, "Tax Act", true)); !strings.Contains(got, "sent to the Ministry") {
		t.Errorf("vetoable bill line = %q, want mention of the Ministry", got)
	}
	if got := r.Line(bill(2, "Budget Act", false)); !strings.Contains(got, "now law") {
		t.Errorf("non-vetoable bill line = %q, want 'now law'", got)
	}
}
