package anthropic

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// textStream yields the text deltas from an Anthropic SSE response.
type textStream struct {
	reader *bufio.Reader
	closer io.Closer
	err    error
}

func newTextStream(body io.ReadCloser) *textStream {
	return &textStream{
		reader: bufio.NewReader(body),
		closer: body,
	}
}

// streamEvent is the subset of SSE payloads we consume.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// Next returns the next text fragment. Returns io.EOF once message_stop
// is seen or the body ends.
func (s *textStream) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				s.err = io.EOF
				return "", io.EOF
			}
			s.err = err
			return "", err
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				return ev.Delta.Text, nil
			}
		case "message_stop":
			s.err = io.EOF
			return "", io.EOF
		}
	}
}

func (s *textStream) Close() error {
	return s.closer.Close()
}
