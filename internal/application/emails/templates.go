package emails

import (
	"fmt"
	"strings"

	"grayco-suite/internal/pkg/money"
)

// ReviewLink is where the victory lap email points happy customers.
const ReviewLink = "https://g.page/r/YOUR_GOOGLE_REVIEW_LINK"

const signature = `Best regards,
Kam
KB Sign Construction
kam@kbsignconstruction.com
`

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// DesignRequest asks the designer for a proof. Up to three site photos ride along.
func DesignRequest(to, client, notes, driveLink string, photos []Attachment) Message {
	if len(photos) > 3 {
		photos = photos[:3]
	}
	note := ""
	if len(photos) > 0 {
		note = fmt.Sprintf("\n\n(%d site photo(s) attached)", len(photos))
	}
	body := fmt.Sprintf(`Hi Matt,

Please create a design for %s.

PROJECT NOTES:
%s

GOOGLE DRIVE FOLDER:
%s
%s

Thanks,
KB Signs Team
`, client, orDefault(notes, "No additional notes provided."), orDefault(driveLink, "No Drive folder linked yet."), note)
	return Message{To: to, Subject: "Design Request: " + client, Body: body, Attachments: photos}
}

// PricingRequest asks for a price on the latest design. tooLarge notes a proof that could not be attached.
func PricingRequest(to, client, driveLink string, proof *Attachment, tooLarge bool) Message {
	which, note := "latest", ""
	var atts []Attachment
	switch {
	case proof != nil:
		which = "attached"
		atts = []Attachment{*proof}
		note = "\n\n(Design proof attached: " + proof.FileName + ")"
	case tooLarge:
		note = "\n\nNote: Design file is too large to attach. Please find it in the Google Drive folder."
	}
	body := fmt.Sprintf(`Hi Bruno,

Please price the %s design for %s.

GOOGLE DRIVE FOLDER (Design files here):
%s
%s

Thanks,
KB Signs Team
`, which, client, orDefault(driveLink, "No Drive folder linked yet."), note)
	return Message{To: to, Subject: "Pricing Request: " + client, Body: body, Attachments: atts}
}

// CustomerProposal sends the proposal, attached when possible and linked otherwise.
func CustomerProposal(to, replyTo, client, proposalLink, driveLink string, proposal *Attachment, tooLarge bool) Message {
	where, link, note := "at the link below", proposalLink, ""
	var atts []Attachment
	switch {
	case proposal != nil:
		where, link = "attached below", ""
		atts = []Attachment{*proposal}
		note = "\n\n(Proposal PDF attached: " + proposal.FileName + ")"
	case tooLarge:
		note = "\n\nNote: Proposal file is too large to attach. Please view it here:\n" + proposalLink
	}
	body := fmt.Sprintf(`Hello,

Thank you for your interest in KB Signs!

Please find your proposal %s:
%s
%s

PROJECT FILES:
%s

If you have any questions, please don't hesitate to reach out.

%s`, where, link, note, driveLink, signature)
	return Message{
		To:          to,
		Subject:     "Your Sign Proposal from KB Signs - " + client,
		Body:        body,
		ReplyTo:     replyTo,
		Attachments: atts,
	}
}

func DepositInvoiceRequest(to, client, driveLink string) Message {
	body := fmt.Sprintf(`Hi Bruno,

Please create a deposit invoice for the %s project.

The proposal has been approved and we need a deposit invoice to send to the customer.

GOOGLE DRIVE FOLDER:
%s

Thanks,
KB Signs Team
`, client, orDefault(driveLink, "No Drive folder linked yet."))
	return Message{To: to, Subject: "Deposit Invoice Needed: " + client, Body: body}
}

func DepositInvoice(to, replyTo, client, invoiceLink, driveLink string) Message {
	invoice := "Your invoice is attached to this email."
	if invoiceLink != "" {
		invoice = "View Invoice: " + invoiceLink
	}
	files := ""
	if driveLink != "" {
		files = "PROJECT FILES: " + driveLink
	}
	body := fmt.Sprintf(`Hello,

Thank you for choosing KB Signs for your project!

Please find your deposit invoice attached. Once payment is received, we will begin production on your sign.

%s

%s

If you have any questions about the invoice or payment, please don't hesitate to reach out.

%s`, invoice, files, signature)
	return Message{To: to, Subject: "Deposit Invoice - " + client + " Sign Project", Body: body, ReplyTo: replyTo}
}

// InstallPrep is the three-days-out customer briefing. A positive balance adds a payment reminder.
func InstallPrep(to, replyTo, client, installDate string, balanceDue float64) Message {
	balance := ""
	if balanceDue > 0 {
		balance = fmt.Sprintf(`
FINAL PAYMENT REMINDER:
Your remaining balance of %s is due before installation. Please ensure payment is completed to avoid any delays.
`, money.Format(balanceDue))
	}
	body := fmt.Sprintf(`Hello,

Your sign installation is scheduled for %s! Here's what you need to know:

WHAT TO EXPECT DURING INSTALLATION:
- Our team will arrive between 8:00 AM - 9:00 AM
- Installation typically takes 2-4 hours depending on sign complexity
- We'll handle all mounting, wiring, and final positioning
- A final walkthrough will be conducted before we leave

SITE ACCESS REQUIREMENTS:
- Please ensure the installation area is clear and accessible
- If gated, please provide access codes or arrange for someone to let us in
- Electrical access may be needed for illuminated signs
- Parking space for our installation vehicle
%s
If you have any questions or need to reschedule, please contact us immediately.

%s`, installDate, balance, signature)
	return Message{To: to, Subject: "Your Sign Installation in 3 Days - " + client, Body: body, ReplyTo: replyTo}
}

func FinalInvoiceRequest(to, replyTo, client string, balanceDue float64, driveLink string) Message {
	files := ""
	if driveLink != "" {
		files = "PROJECT FILES: " + driveLink
	}
	body := fmt.Sprintf(`Hey Bruno,

We need a final invoice created for the %s project.

REMAINING BALANCE: %s

%s

Please create and upload the final invoice so we can send it to the customer before installation.

Thanks,
Kam
`, client, money.Format(balanceDue), files)
	return Message{To: to, Subject: "Final Invoice Needed - " + client, Body: body, ReplyTo: replyTo}
}

func NightBefore(to, replyTo, client, installDate string) Message {
	body := fmt.Sprintf(`Hello,

This is a friendly reminder that your sign installation is scheduled for tomorrow, %s.

ARRIVAL WINDOW: 8:00 AM - 9:00 AM

Our team will give you a call when they're on the way. Please ensure the installation area is accessible.

If you have any last-minute questions, feel free to reach out.

See you tomorrow!

%s`, installDate, signature)
	return Message{To: to, Subject: "Tomorrow's Installation - " + client, Body: body, ReplyTo: replyTo}
}

// VictoryLap thanks the customer the day after install and asks for a review.
func VictoryLap(to, client, reviewLink string) Message {
	first := "there"
	if f := strings.Fields(client); len(f) > 0 {
		first = f[0]
	}
	body := fmt.Sprintf(`Hi %s,

It was great working with you on the %s install yesterday! We hope you love the new look.

If you have 30 seconds, would you mind leaving us a quick review here?
%s

It helps us out a ton!

Thanks,
Kam
KB Signs`, first, client, orDefault(reviewLink, ReviewLink))
	return Message{To: to, Subject: "Thank you for choosing KB Signs - " + client, Body: body}
}

// SystemTest checks the SMTP wiring end to end.
func SystemTest(to string) Message {
	return Message{
		To:      to,
		Subject: "Grayco Lite V3 - System Test",
		Body:    "This is a test email from Grayco Lite V3.\n\nIf you received this, your SMTP configuration is working correctly.\n\n- Grayco Lite V3 System",
	}
}
