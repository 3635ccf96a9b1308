package notifications

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/storeshop/pkg/errors"
	"github.com/angelmondragon/storeshop/pkg/numfmt"
)

const bodyTemplate = `Hello Team

We order the following item:

Productname: %s
SAP Number: %s
Storename: %s
Storenumber: %s
Amount: %s

Orderer name:

Thanks and regards`

// MailIntent is a pre-filled message the user's mail client opens. The shop
// never sends mail itself.
type MailIntent struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	URI       string `json:"uri"`
}

// Compose builds the order mail for a special product.
func Compose(recipient, productName, sapNumber string, quantity int, storeName, storeNumber string) (MailIntent, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return MailIntent{}, pkgerrors.New(pkgerrors.CodeValidation, "notification email is missing for this product").
			WithDetails(map[string]any{"sap_number": sapNumber})
	}
	if _, err := mail.ParseAddress(recipient); err != nil {
		return MailIntent{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "notification email is not a valid address").
			WithDetails(map[string]any{"recipient": recipient})
	}

	subject := fmt.Sprintf("Order: %s - %s", productName, sapNumber)
	body := fmt.Sprintf(bodyTemplate, productName, sapNumber, storeName, storeNumber, numfmt.FormatInt(quantity))

	return MailIntent{
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		URI:       MailtoURI(recipient, subject, body),
	}, nil
}

// MailtoURI encodes a mailto link with RFC 3986 escaping: spaces become %20
// and newlines %0A.
func MailtoURI(recipient, subject, body string) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		url.PathEscape(recipient), escape(subject), escape(body))
}

func escape(s string) string {
	// QueryEscape leaves only unreserved characters and turns spaces into "+";
	// a literal "+" is already %2B at this point.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
