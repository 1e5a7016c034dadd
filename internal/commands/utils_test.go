package commands

import (
	"strings"
	"testing"
)

func TestParseBillIDs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{"single id", []string{"12"}, []int{12}, false},
		{"multiple ids", []string{"12", "13", "14"}, []int{12, 13, 14}, false},
		{"no args", nil, nil, true},
		{"not a number", []string{"twelve"}, nil, true},
		{"zero", []string{"0"}, nil, true},
		{"negative", []string{"-3"}, nil, true},
		{"mixed valid and invalid", []string{"12", "x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBillIDs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseBillIDs(%v) expected an error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBillIDs(%v) error: %v", tt.args, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseBillIDs(%v) = %v, want %v", tt.args, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseBillIDs(%v)[%d] = %d, want %d", tt.args, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseMentionID(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"<@123456789>", 123456789},
		{"<@!123456789>", 123456789},
		{"123456789", 123456789},
		{" <@123456789> ", 123456789},
		{"not a mention", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := parseMentionID(tt.input); got != tt.want {
			t.Errorf("parseMentionID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestChunkLines(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := chunkLines(nil); got != nil {
			t.Errorf("chunkLines(nil) = %v, want nil", got)
		}
	})

	t.Run("fits in one message", func(t *testing.T) {
		got := chunkLines([]string{"one", "two", "three"})
		if len(got) != 1 {
			t.Fatalf("expected 1 message, got %d", len(got))
		}
		if got[0] != "one\ntwo\nthree" {
			t.Errorf("message = %q", got[0])
		}
	})

	t.Run("splits at the character limit", func(t *testing.T) {
		long := strings.Repeat("a", 900)
		got := chunkLines([]string{long, long, long})
		if len(got) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(got))
		}
		for i, msg := range got {
			if len(msg) > 2000 {
				t.Errorf("message %d is %d chars, over the limit", i, len(msg))
			}
		}
	})
}

func TestParseSnowflake(t *testing.T) {
	if got := ParseSnowflake("424242424242"); got != 424242424242 {
		t.Errorf("ParseSnowflake = %d", got)
	}
	if got := ParseSnowflake("nope"); got != 0 {
		t.Errorf("ParseSnowflake of garbage = %d, want 0", got)
	}
}
