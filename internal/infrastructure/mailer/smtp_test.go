package mailer

import (
	"context"
	"errors"
	"testing"

	"grayco-suite/internal/application/emails"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeClient struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeClient) DialAndSendWithContext(_ context.Context, msgs ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

func newTestSMTP(f *fakeClient, testMode bool) *SMTP {
	return &SMTP{
		Server:        "smtp.test",
		Port:          587,
		Email:         "kam@kbsigns.test",
		Password:      "secret",
		TestMode:      testMode,
		TestRecipient: "inbox@kbsigns.test",
		Dial:          func() (Deliverer, error) { return f, nil },
	}
}

func TestSend_IncompleteConfig(t *testing.T) {
	s := &SMTP{Server: "smtp.test", Port: 587}
	res := s.Send(context.Background(), emails.Message{To: "c@test"})
	assert.False(t, res.Succeeded())
	assert.Equal(t, "SMTP configuration incomplete. Check secrets.", res.Message)
}

func TestSend_TestModeRedirects(t *testing.T) {
	f := &fakeClient{}
	s := newTestSMTP(f, true)
	res := s.Send(context.Background(), emails.Message{To: "customer@test", Subject: "Hello", Body: "Body"})
	require.True(t, res.Succeeded())
	assert.Equal(t, "Email sent to inbox@kbsigns.test", res.Message)

	require.Len(t, f.sent, 1)
	rcpts, err := f.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"inbox@kbsigns.test"}, rcpts)
	assert.Equal(t, []string{"[TEST] Hello"}, f.sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestRedirect(t *testing.T) {
	s := newTestSMTP(&fakeClient{}, true)
	got := s.redirect(emails.Message{To: "customer@test", Subject: "Hi", Body: "Body"})
	assert.Equal(t, "inbox@kbsigns.test", got.To)
	assert.Equal(t, "[Original recipient: customer@test]\n\nBody", got.Body)

	s.TestRecipient = ""
	assert.Equal(t, "kam@kbsigns.test", s.redirect(emails.Message{To: "x@test"}).To)

	s.TestMode = false
	assert.Equal(t, "customer@test", s.redirect(emails.Message{To: "customer@test"}).To)
}

func TestSend_LiveModeWithAttachments(t *testing.T) {
	f := &fakeClient{}
	s := newTestSMTP(f, false)
	res := s.Send(context.Background(), emails.Message{
		To:      "customer@test",
		Subject: "Proposal",
		Body:    "See attached",
		ReplyTo: "kam@kbsigns.test",
		Attachments: []emails.Attachment{
			{FileName: "proposal.pdf", Data: []byte("%PDF-1.4")},
			{FileName: "empty.pdf"},
		},
	})
	require.True(t, res.Succeeded())
	assert.Equal(t, "Email sent to customer@test with 1 attachment(s): proposal.pdf", res.Message)

	rcpts, err := f.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"customer@test"}, rcpts)
}

func TestSend_TransportFailureIsAResult(t *testing.T) {
	s := newTestSMTP(&fakeClient{err: errors.New("535 auth failed")}, false)
	res := s.Send(context.Background(), emails.Message{To: "customer@test", Subject: "x"})
	assert.False(t, res.Succeeded())
	assert.Equal(t, "SMTP Error: 535 auth failed", res.Message)
}

func TestSend_BadRecipient(t *testing.T) {
	s := newTestSMTP(&fakeClient{}, false)
	res := s.Send(context.Background(), emails.Message{To: "not an address"})
	assert.False(t, res.Succeeded())
	assert.Contains(t, res.Message, "Email error:")
}
