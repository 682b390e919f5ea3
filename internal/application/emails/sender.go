package emails

import (
	"context"
	"errors"
	"fmt"
)

// ErrAttachmentTooLarge is returned by file sources when a file cannot ride along as an attachment.
var ErrAttachmentTooLarge = errors.New("FILE_TOO_LARGE")

// Attachment is a file carried inline with a message.
type Attachment struct {
	FileName string
	MIMEType string
	Data     []byte
}

// Message is one plain-text outbound email.
type Message struct {
	To          string
	Subject     string
	Body        string
	ReplyTo     string
	Attachments []Attachment
}

// Result is what a send attempt reports back. Failures are values, not errors, so callers can
// log them against the project and carry on.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (r Result) Succeeded() bool { return r.OK }

// Failed builds a failed Result.
func Failed(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Sender delivers messages. Nil = no-op failure via Send.
type Sender interface {
	Send(ctx context.Context, msg Message) Result
}

// Send calls s, treating a nil sender as unconfigured.
func Send(ctx context.Context, s Sender, msg Message) Result {
	if s == nil {
		return Failed("Email sender is not configured")
	}
	return s.Send(ctx, msg)
}

// Recorder is an in-memory Sender that keeps every message and answers with a fixed result.
type Recorder struct {
	Sent   []Message
	Result Result
}

func (r *Recorder) Send(_ context.Context, msg Message) Result {
	r.Sent = append(r.Sent, msg)
	if r.Result == (Result{}) {
		return Result{OK: true, Message: "Email sent to " + msg.To}
	}
	return r.Result
}
