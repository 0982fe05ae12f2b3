package llm

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// ExtractionStrategy names one known envelope shape and a total function
// that either extracts the reply text or reports not-applicable. A
// strategy never errors; shapes it does not recognize are simply not its
// problem.
type ExtractionStrategy struct {
	// Name identifies the envelope shape for diagnostics.
	Name string

	// Apply attempts extraction against the raw reply body.
	Apply func(body []byte) (string, bool)
}

// extractionStrategies is the fixed priority order in which envelope
// shapes are tried. The first applicable strategy wins; if none apply
// the reply is malformed, which triggers a retry — never a default.
var extractionStrategies = []ExtractionStrategy{
	{Name: "chat_completion_choices", Apply: extractChatCompletion},
	{Name: "output_text_field", Apply: extractOutputTextField},
	{Name: "output_text", Apply: extractOutputText},
	{Name: "output_choices", Apply: extractOutputChoices},
	{Name: "output_message_items", Apply: extractOutputMessageItems},
}

// ExtractReply applies the known extraction strategies in priority order
// and returns the first extracted text along with the name of the
// strategy that produced it. When no strategy applies it returns
// ErrMalformedReply.
func ExtractReply(body []byte) (text, strategy string, err error) {
	for _, s := range extractionStrategies {
		if out, ok := s.Apply(body); ok {
			return out, s.Name, nil
		}
	}
	return "", "", ErrMalformedReply
}

// extractChatCompletion handles the completion envelope, where the
// payload sits in choices[0].message.content. Decoding reuses the
// provider SDK's wire types.
func extractChatCompletion(body []byte) (string, bool) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", false
	}
	return resp.Choices[0].Message.Content, true
}

// extractOutputTextField handles the convenience field some structured
// replies carry at the top level: {"output_text": "..."}.
func extractOutputTextField(body []byte) (string, bool) {
	var resp struct {
		OutputText string `json:"output_text"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	return resp.OutputText, resp.OutputText != ""
}

// extractOutputText handles the nested object form: {"output": {"text": "..."}}.
func extractOutputText(body []byte) (string, bool) {
	var resp struct {
		Output struct {
			Text string `json:"text"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	return resp.Output.Text, resp.Output.Text != ""
}

// extractOutputChoices handles the choices-style list nested one level
// deeper: output.choices[0].message.content[0].text.
func extractOutputChoices(body []byte) (string, bool) {
	var resp struct {
		Output struct {
			Choices []struct {
				Message struct {
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Output.Choices) == 0 {
		return "", false
	}
	content := resp.Output.Choices[0].Message.Content
	if len(content) == 0 || content[0].Text == "" {
		return "", false
	}
	return content[0].Text, true
}

// extractOutputMessageItems handles the typed-item array form: output is
// a list where a "message" item holds a content list containing the text.
func extractOutputMessageItems(body []byte) (string, bool) {
	var resp struct {
		Output []struct {
			Type    string `json:"type"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, chunk := range item.Content {
			if chunk.Text != "" {
				return chunk.Text, true
			}
		}
	}
	return "", false
}
