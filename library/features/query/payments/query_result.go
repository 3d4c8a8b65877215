package payments

// PaymentView is the public representation of a payment.
type PaymentView struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	BorrowingID string `json:"borrowing_id"`
	BookTitle   string `json:"book_title"`
	SessionID   string `json:"session_id"`
	SessionURL  string `json:"session_url"`
	MoneyToPay  string `json:"money_to_pay"`
}

// Payments is the result of the ListQuery.
type Payments struct {
	Payments []PaymentView `json:"payments"`
	Count    int           `json:"count"`
}

// CallbackResult is a payment together with the message shown after a checkout callback.
type CallbackResult struct {
	Payment PaymentView `json:"payment"`
	Message string      `json:"message"`
}
