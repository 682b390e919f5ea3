package emails

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignRequest_CapsPhotosAndDefaults(t *testing.T) {
	photos := []Attachment{{FileName: "a.jpg"}, {FileName: "b.jpg"}, {FileName: "c.jpg"}, {FileName: "d.jpg"}}
	msg := DesignRequest("matt@test", "Acme Dental", "", "", photos)
	assert.Equal(t, "Design Request: Acme Dental", msg.Subject)
	assert.Len(t, msg.Attachments, 3)
	assert.Contains(t, msg.Body, "No additional notes provided.")
	assert.Contains(t, msg.Body, "No Drive folder linked yet.")
	assert.Contains(t, msg.Body, "(3 site photo(s) attached)")
}

func TestPricingRequest(t *testing.T) {
	msg := PricingRequest("bruno@test", "Acme", "https://drive/x", &Attachment{FileName: "proof.pdf"}, false)
	assert.Contains(t, msg.Body, "Please price the attached design for Acme.")
	assert.Contains(t, msg.Body, "(Design proof attached: proof.pdf)")

	msg = PricingRequest("bruno@test", "Acme", "", nil, true)
	assert.Contains(t, msg.Body, "Please price the latest design for Acme.")
	assert.Contains(t, msg.Body, "too large to attach")
	assert.Empty(t, msg.Attachments)
}

func TestCustomerProposal_LinkWhenNotAttached(t *testing.T) {
	msg := CustomerProposal("c@test", "kam@test", "Acme", "https://proposal", "", nil, false)
	assert.Equal(t, "Your Sign Proposal from KB Signs - Acme", msg.Subject)
	assert.Equal(t, "kam@test", msg.ReplyTo)
	assert.Contains(t, msg.Body, "at the link below:\nhttps://proposal")

	msg = CustomerProposal("c@test", "kam@test", "Acme", "https://proposal", "", &Attachment{FileName: "p.pdf"}, false)
	assert.Contains(t, msg.Body, "attached below:")
	assert.NotContains(t, msg.Body, "https://proposal")
}

func TestInstallPrep_BalanceReminder(t *testing.T) {
	msg := InstallPrep("c@test", "", "Acme", "March 20, 2026", 4250.5)
	assert.Contains(t, msg.Body, "FINAL PAYMENT REMINDER")
	assert.Contains(t, msg.Body, "$4,250.50")

	msg = InstallPrep("c@test", "", "Acme", "March 20, 2026", 0)
	assert.NotContains(t, msg.Body, "FINAL PAYMENT REMINDER")
}

func TestFinalInvoiceRequest(t *testing.T) {
	msg := FinalInvoiceRequest("bruno@test", "", "Acme", 12500, "")
	assert.Equal(t, "Final Invoice Needed - Acme", msg.Subject)
	assert.Contains(t, msg.Body, "REMAINING BALANCE: $12,500.00")
}

func TestVictoryLap_FirstWordGreeting(t *testing.T) {
	msg := VictoryLap("c@test", "Joe's Pizza", "")
	assert.Equal(t, "Thank you for choosing KB Signs - Joe's Pizza", msg.Subject)
	assert.Contains(t, msg.Body, "Hi Joe's,")
	assert.Contains(t, msg.Body, ReviewLink)

	assert.Contains(t, VictoryLap("c@test", "", "").Body, "Hi there,")
}

func TestSend_NilSender(t *testing.T) {
	res := Send(context.Background(), nil, Message{To: "x@test"})
	assert.False(t, res.Succeeded())
	assert.Equal(t, "Email sender is not configured", res.Message)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	res := Send(context.Background(), r, NightBefore("c@test", "", "Acme", "March 20, 2026"))
	require.True(t, res.Succeeded())
	assert.Equal(t, "Email sent to c@test", res.Message)
	require.Len(t, r.Sent, 1)
	assert.Contains(t, r.Sent[0].Body, "ARRIVAL WINDOW: 8:00 AM - 9:00 AM")

	r.Result = Failed("SMTP Error: %s", "boom")
	assert.Equal(t, "SMTP Error: boom", r.Send(context.Background(), Message{}).Message)
}
