// SPDX-License-Identifier: MIT

package whatsapp

import "strings"

// BusinessAccountObject is the webhook object type carrying user messages.
const BusinessAccountObject = "whatsapp_business_account"

// InboundMessage is one text message extracted from a webhook payload.
type InboundMessage struct {
	From string
	Text string
}

// Payload mirrors the subset of the Cloud API webhook body we consume.
type Payload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value `json:"value"`
}

type Value struct {
	Messages []Message `json:"messages"`
}

type Message struct {
	From string      `json:"from"`
	Type string      `json:"type"`
	Text MessageText `json:"text"`
}

type MessageText struct {
	Body string `json:"body"`
}

// ExtractMessages walks entry[].changes[].value.messages[] and returns
// the inbound text messages. Non-text messages are ignored.
func ExtractMessages(p Payload) []InboundMessage {
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if m.Type != "text" || m.From == "" {
					continue
				}
				out = append(out, InboundMessage{
					From: m.From,
					Text: strings.TrimSpace(m.Text.Body),
				})
			}
		}
	}
	return out
}
