package types

// Address is the shipping address snapshot stored on each order.
type Address struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// BankDetails is the payout destination snapshot stored on a withdrawal request.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	RoutingCode   string `json:"routing_code,omitempty"`
}

// PaymentResult captures the gateway confirmation metadata for a paid order.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time,omitempty"`
	PayerEmail string `json:"payer_email,omitempty"`
}
