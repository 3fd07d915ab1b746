package domain

import "testing"

func TestLastUserText(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		want     string
	}{
		{
			name:     "empty list",
			messages: nil,
			want:     "",
		},
		{
			name: "latest user wins",
			messages: []Message{
				Text("assistant", "x"),
				Text("user", "y"),
			},
			want: "y",
		},
		{
			name: "skips non-user roles",
			messages: []Message{
				Text("user", "first"),
				Text("assistant", "reply"),
				Text("system", "rules"),
			},
			want: "first",
		},
		{
			name: "only non-user roles",
			messages: []Message{
				Text("assistant", "a"),
				Text("system", "b"),
			},
			want: "",
		},
		{
			name: "trims whitespace",
			messages: []Message{
				Text("user", "  ping  "),
			},
			want: "ping",
		},
		{
			name: "blank user message falls through to older turn",
			messages: []Message{
				Text("user", "older"),
				Text("user", "   "),
			},
			want: "older",
		},
		{
			name: "part list content",
			messages: []Message{
				{Role: "user", Content: MessageContent{Parts: []ContentPart{
					{Type: "image_url"},
					{Type: "text", Text: "from parts"},
				}}},
			},
			want: "from parts",
		},
		{
			name: "part list without text falls through",
			messages: []Message{
				Text("user", "older"),
				{Role: "user", Content: MessageContent{Parts: []ContentPart{
					{Type: "image_url"},
				}}},
			},
			want: "older",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastUserText(tt.messages); got != tt.want {
				t.Errorf("LastUserText() = %q, want %q", got, tt.want)
			}
		})
	}
}
