package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const markdown = "mrkdwn"
const section = "section"

// Username is the display name the webhook posts with.
const Username = "Bitbucket Pipelines"

type slackMessage struct {
	Username string  `json:"username"`
	Channel  string  `json:"channel"`
	Blocks   []Block `json:"blocks"`
}

// Block is a section of the message: either a single text or a row of fields.
type Block struct {
	Type   string `json:"type"`
	Text   *Text  `json:"text,omitempty"`
	Fields []Text `json:"fields,omitempty"`
}

// Text is a mrkdwn text object, used both as a block text and as a field.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func textBlock(text string) Block {
	return Block{
		Type: section,
		Text: &Text{
			Type: markdown,
			Text: text,
		},
	}
}

func fieldsBlock(fields ...string) Block {
	block := Block{
		Type: section,
	}
	for _, f := range fields {
		block.Fields = append(block.Fields, Text{
			Type: markdown,
			Text: f,
		})
	}
	return block
}

// Message is a notification ready to be posted to a webhook.
type Message struct {
	msg *slackMessage
}

// Channel returns the channel the message is addressed to.
func (m *Message) Channel() string {
	return m.msg.Channel
}

// Blocks returns the content blocks in posting order.
func (m *Message) Blocks() []Block {
	return m.msg.Blocks
}

// Payload returns the JSON body of the webhook request.
func (m *Message) Payload() ([]byte, error) {
	b := new(bytes.Buffer)
	e := json.NewEncoder(b)
	e.SetEscapeHTML(false)
	err := e.Encode(m.msg)
	if err != nil {
		return nil, fmt.Errorf("cannot encode message: %s", err)
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

var slackLink = regexp.MustCompile(`<([^<>|]+)\|([^<>]+)>`)

// Markdown renders the message as plain markdown, one paragraph per text.
func (m *Message) Markdown() string {
	var paragraphs []string
	for _, block := range m.msg.Blocks {
		if block.Text != nil {
			paragraphs = append(paragraphs, toMarkdown(block.Text.Text))
		}
		for _, field := range block.Fields {
			paragraphs = append(paragraphs, toMarkdown(field.Text))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

func toMarkdown(text string) string {
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		return "```\n" + text[3:len(text)-3] + "\n```"
	}
	text = slackLink.ReplaceAllString(text, "[$2]($1)")
	return strings.ReplaceAll(text, "\n", "  \n")
}
