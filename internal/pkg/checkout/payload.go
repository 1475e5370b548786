package checkout

import "github.com/lipsense/portal/internal/pkg/backend"

// BuildPayload assembles the subscription request from the handoff and a
// validated instrument. The card number is sent as its whitespace-free digits.
func BuildPayload(h Handoff, p PaymentInstrument) backend.SubscriptionRequest {
	n := p.Normalized()
	req := backend.SubscriptionRequest{
		PlanSlug: string(h.Plan),
		PaymentMethod: backend.PaymentMethod{
			CardNumber:  n.CardNumber,
			ExpiryMonth: n.ExpiryMonth,
			ExpiryYear:  n.ExpiryYear,
			CVV:         n.CVV,
			CardHolder:  n.CardHolder,
		},
		UsageDetails: backend.UsageDetails{
			Resolution: string(h.Resolution),
			Support:    string(h.Support),
		},
	}
	if h.APICalls != nil {
		v := *h.APICalls
		req.UsageDetails.APICalls = &v
	}
	if h.Languages != nil {
		v := *h.Languages
		req.UsageDetails.Languages = &v
	}
	if a := n.BillingAddress; a != nil {
		req.BillingAddress = &backend.BillingAddress{
			Line1:      a.Line1,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	return req
}
