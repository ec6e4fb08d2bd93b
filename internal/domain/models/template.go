package models

// MessageTemplate is an operator-editable WhatsApp message.
type MessageTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

// PixConfig holds the banking data quoted in collection messages.
type PixConfig struct {
	BankName    string `json:"bank_name"`
	Beneficiary string `json:"beneficiary"`
	PixType     string `json:"pix_type" validate:"notblank"`
	PixKey      string `json:"pix_key" validate:"notblank"`
}
