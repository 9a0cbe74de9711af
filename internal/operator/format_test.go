package operator

import (
	"testing"

	"github.com/zulandar/switchboard/internal/messenger"
)

func TestBuildTurnContent(t *testing.T) {
	tests := []struct {
		name  string
		batch []messenger.InboundMessage
		want  string
	}{
		{
			name:  "single text",
			batch: []messenger.InboundMessage{{Text: "hello"}},
			want:  "hello",
		},
		{
			name: "texts joined in batch order",
			batch: []messenger.InboundMessage{
				{Text: "first"},
				{Text: "second"},
			},
			want: "first second",
		},
		{
			name: "caption plus photo",
			batch: []messenger.InboundMessage{{
				Text: "my car",
				Attachments: []messenger.Attachment{
					{Kind: messenger.AttachmentPhoto, FileID: "f1"},
				},
			}},
			want: "my car\n<attachments><photo><file_id>f1</file_id></photo></attachments>",
		},
		{
			name: "album of two photos no caption",
			batch: []messenger.InboundMessage{
				{Attachments: []messenger.Attachment{{Kind: messenger.AttachmentPhoto, FileID: "f1"}}},
				{Attachments: []messenger.Attachment{{Kind: messenger.AttachmentPhoto, FileID: "f2"}}},
			},
			want: "\n<attachments><photo><file_id>f1</file_id></photo> <photo><file_id>f2</file_id></photo></attachments>",
		},
		{
			name: "document attachment",
			batch: []messenger.InboundMessage{{
				Attachments: []messenger.Attachment{
					{Kind: messenger.AttachmentDocument, FileID: "d1"},
				},
			}},
			want: "\n<attachments><document><file_id>d1</file_id></document></attachments>",
		},
		{
			name: "unknown kind falls back to document",
			batch: []messenger.InboundMessage{{
				Attachments: []messenger.Attachment{{FileID: "x1"}},
			}},
			want: "\n<attachments><document><file_id>x1</file_id></document></attachments>",
		},
		{
			name: "mixed texts and attachments interleaved",
			batch: []messenger.InboundMessage{
				{Text: "passport", Attachments: []messenger.Attachment{{Kind: messenger.AttachmentPhoto, FileID: "p1"}}},
				{Text: "and license", Attachments: []messenger.Attachment{{Kind: messenger.AttachmentPhoto, FileID: "p2"}}},
			},
			want: "passport and license\n<attachments><photo><file_id>p1</file_id></photo> <photo><file_id>p2</file_id></photo></attachments>",
		},
		{
			name:  "empty batch",
			batch: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildTurnContent(tt.batch); got != tt.want {
				t.Errorf("BuildTurnContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
