package gemini

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// textStream decodes the SSE stream produced by streamGenerateContent
// with alt=sse. Each data line is a complete geminiResponse chunk.
type textStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

func newTextStream(body io.ReadCloser) *textStream {
	return &textStream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next returns the next text fragment, or io.EOF when the stream ends.
func (s *textStream) Next() (string, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", err
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			continue
		}
		if len(chunk.Candidates) == 0 {
			continue
		}
		var fragment string
		for _, part := range chunk.Candidates[0].Content.Parts {
			fragment += part.Text
		}
		if fragment != "" {
			return fragment, nil
		}
	}
}

// Close releases the underlying response body.
func (s *textStream) Close() error {
	return s.body.Close()
}
