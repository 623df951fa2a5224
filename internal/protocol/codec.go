package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcoot/rpsarena/internal/model"
)

// MaxMessageSize bounds a single line, delimiter excluded
const MaxMessageSize = 64 * 1024

// Reader decodes newline-delimited JSON messages from a stream.
// Partial reads are buffered until a delimiter arrives.
type Reader struct {
	r *bufio.Reader
}

// NewReader creates a Reader over r
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 4096)}
}

// ReadMessage returns the next message in arrival order.
//
// A line that is not a JSON object yields an error wrapping
// model.ErrMalformedMessage; the stream stays usable and the caller may keep
// reading. Any other error (io.EOF, network failures, oversized lines) is
// terminal for the stream.
func (r *Reader) ReadMessage() (Message, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return Message{}, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		return Decode(line)
	}
}

func (r *Reader) readLine() ([]byte, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.r.ReadLine()
		if err != nil {
			// A final unterminated line is discarded with the stream
			return nil, err
		}
		buf = append(buf, chunk...)
		if len(buf) > MaxMessageSize {
			return nil, fmt.Errorf("%w: %d bytes", model.ErrMessageTooLarge, len(buf))
		}
		if !isPrefix {
			return buf, nil
		}
	}
}

// Decode parses a single JSON message
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", model.ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", model.ErrMalformedMessage)
	}
	return msg, nil
}

// Encode serializes msg as a single line including the trailing delimiter
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Writer encodes messages onto a stream
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer over w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage writes msg followed by the delimiter
func (w *Writer) WriteMessage(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	_, err = w.w.Write(data)
	return err
}
