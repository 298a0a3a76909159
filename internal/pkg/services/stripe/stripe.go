package stripe

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/customer"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/paymentmethod"
	"github.com/stripe/stripe-go/v83/refund"
	"github.com/stripe/stripe-go/v83/setupintent"
)

// Provider wraps the Stripe API for subscription billing.
type Provider struct {
	apiKey string
}

func NewProvider(apiKey string) *Provider {
	stripe.Key = apiKey
	return &Provider{apiKey: apiKey}
}

// Enabled reports whether an API key was configured. Payment endpoints reply
// with a service unavailable error when it is not.
func (p *Provider) Enabled() bool {
	return p.apiKey != ""
}

// CreatePaymentIntent creates a payment intent and returns its ID and client
// secret. Automatic payment methods cover cards, Apple Pay and Google Pay.
func (p *Provider) CreatePaymentIntent(amount int64, currency string, metadata map[string]interface{}) (string, string, error) {
	stripeMetadata := make(map[string]string)
	for k, v := range metadata {
		stripeMetadata[k] = fmt.Sprintf("%v", v)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Metadata: stripeMetadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return pi.ID, pi.ClientSecret, nil
}

// GetPaymentStatus retrieves the current status of a payment intent.
func (p *Provider) GetPaymentStatus(paymentIntentID string) (string, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get payment intent: %w", err)
	}

	return string(pi.Status), nil
}

// RefundPayment refunds a payment. A nil amount refunds in full.
func (p *Provider) RefundPayment(paymentIntentID string, amount *int64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	if amount != nil {
		params.Amount = stripe.Int64(*amount)
	}

	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	return nil
}

// CreateCustomer creates a Stripe customer tagged with the user ID. The email
// is optional since billing happens off-session.
func (p *Provider) CreateCustomer(userID uuid.UUID, email string, metadata map[string]interface{}) (string, error) {
	stripeMetadata := make(map[string]string)
	for k, v := range metadata {
		stripeMetadata[k] = fmt.Sprintf("%v", v)
	}
	stripeMetadata["user_id"] = userID.String()

	params := &stripe.CustomerParams{
		Metadata: stripeMetadata,
	}
	if email != "" {
		params.Email = stripe.String(email)
	}

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	return c.ID, nil
}

// DeleteCustomer removes a Stripe customer, used for cleanup when a
// downstream step fails.
func (p *Provider) DeleteCustomer(customerID string) error {
	if _, err := customer.Del(customerID, nil); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return nil
}

// CreateSetupIntent prepares collection of a payment method without charging,
// used when a trial user adds a card for later billing.
func (p *Provider) CreateSetupIntent(customerID string) (string, string, error) {
	params := &stripe.SetupIntentParams{
		Customer: stripe.String(customerID),
		Usage:    stripe.String("off_session"),
	}

	si, err := setupintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create setup intent: %w", err)
	}

	return si.ID, si.ClientSecret, nil
}

// AttachPaymentMethod attaches a collected payment method to a customer and
// makes it the default for invoices.
func (p *Provider) AttachPaymentMethod(customerID, paymentMethodID string) error {
	_, err := paymentmethod.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach payment method: %w", err)
	}

	_, err = customer.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set default payment method: %w", err)
	}

	return nil
}
