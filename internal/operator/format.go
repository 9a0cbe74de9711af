package operator

import (
	"fmt"
	"strings"

	"github.com/zulandar/switchboard/internal/messenger"
)

// BuildTurnContent merges a batch into the single content string the agent
// pipeline receives: all text parts joined in batch order, followed by an
// <attachments> block naming each upload by kind and file handle. Adapters
// already picked one variant per upload (e.g. the highest-resolution photo
// rendition), so every attachment here appears exactly once.
func BuildTurnContent(batch []messenger.InboundMessage) string {
	var textParts []string
	var attachParts []string

	for _, msg := range batch {
		if msg.Text != "" {
			textParts = append(textParts, msg.Text)
		}
		for _, att := range msg.Attachments {
			kind := att.Kind
			if kind == "" {
				kind = messenger.AttachmentDocument
			}
			attachParts = append(attachParts,
				fmt.Sprintf("<%s><file_id>%s</file_id></%s>", kind, att.FileID, kind))
		}
	}

	content := strings.Join(textParts, " ")
	if len(attachParts) > 0 {
		content += fmt.Sprintf("\n<attachments>%s</attachments>", strings.Join(attachParts, " "))
	}
	return content
}
