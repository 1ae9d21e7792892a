package extract

import (
	"fmt"

	"github.com/docbridge/bridge/internal/providers"
)

// systemPrefix frames every extraction call. The source text comes from OCR
// runs over old scanned manuals, so the model is told up front that the text
// is noisy, that only troubleshooting content is wanted, and that an empty
// list is the correct answer when nothing relevant is present.
const systemPrefix = `You are a top-tier algorithm for extracting information from text. ` +
	`The text was produced by running OCR on scans of old documents, so it may contain ` +
	`OCR artifacts, broken words, and misread characters. Only extract information that ` +
	`is relevant to troubleshooting: problems, their causes, and their solutions. ` +
	`Extract every attribute the schema asks for. Each page of the source text is ` +
	`preceded by a marker of the form "--- Page N ---"; always record the page number ` +
	`on which each piece of information was found. If the text contains no relevant ` +
	`information, return an empty list rather than inventing records.`

// BuildPrompt assembles the chat messages for one extraction call. Caller
// instructions are appended to the fixed system prefix, they never replace it.
func BuildPrompt(instructions, text string) []providers.Message {
	system := systemPrefix
	if instructions != "" {
		system += "\n\n" + instructions
	}

	human := fmt.Sprintf("Extract the troubleshooting information from the following text:\n```\n%s\n```\nRespond with JSON only. Include the page number for every extracted record.", text)

	return []providers.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: human},
	}
}
