package soap

import (
	"strings"

	"github.com/beevik/etree"
)

const redactedPlaceholder = "[FILTERED]"

// RedactPasswords returns a copy of the document with the text of every
// password element replaced, regardless of namespace prefix. Log sinks must
// never see credential material, so on a parse failure the whole payload is
// withheld rather than passed through.
func RedactPasswords(data []byte) []byte {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return []byte(redactedPlaceholder)
	}

	redactElement(&doc.Element)

	out, err := doc.WriteToBytes()
	if err != nil {
		return []byte(redactedPlaceholder)
	}
	return out
}

func redactElement(el *etree.Element) {
	for _, child := range el.ChildElements() {
		if strings.EqualFold(child.Tag, "password") {
			child.SetText(redactedPlaceholder)
			continue
		}
		redactElement(child)
	}
}
