package dto

import (
	"github.com/shopspring/decimal"
)

// LineItemRequest is one billable line on a create/update request.
// A nil TaxRate inherits the invoice's header tax rate.
type LineItemRequest struct {
	Description   string           `json:"description"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     decimal.Decimal  `json:"unit_price"`
	Unit          string           `json:"unit"`
	Category      string           `json:"category"`
	Notes         string           `json:"notes"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
}

// PaymentTermsRequest configures net days and incentives.
type PaymentTermsRequest struct {
	NetDays             int             `json:"net_days"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	DiscountDays        int             `json:"discount_days"`
	LateFeePercentage   decimal.Decimal `json:"late_fee_percentage"`
	LateFeeGraceDays    int             `json:"late_fee_grace_days"`
	PaymentInstructions string          `json:"payment_instructions"`
}

// CreateInvoiceRequest creates a draft invoice. Client fields are optional
// when ContactID is set: the contact is then snapshotted. Dates use
// YYYY-MM-DD. An empty InvoiceNumber allocates the next number for Prefix.
type CreateInvoiceRequest struct {
	ContactID     string `json:"contact_id"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email"`
	ClientPhone   string `json:"client_phone"`
	ClientAddress string `json:"client_address"`

	InvoiceNumber string `json:"invoice_number"`
	Prefix        string `json:"prefix"`
	Currency      string `json:"currency"`
	IssueDate     string `json:"issue_date"`
	DueDate       string `json:"due_date"`

	TaxRate              decimal.Decimal `json:"tax_rate"`
	TaxType              string          `json:"tax_type"`
	OverallDiscountType  string          `json:"overall_discount_type"`
	OverallDiscountValue decimal.Decimal `json:"overall_discount_value"`

	LineItems []LineItemRequest    `json:"line_items"`
	Terms     *PaymentTermsRequest `json:"payment_terms"`

	EstimateID string `json:"estimate_id"`
	ProjectID  string `json:"project_id"`
	JobID      string `json:"job_id"`

	Tags          []string          `json:"tags"`
	CustomFields  map[string]string `json:"custom_fields"`
	InternalNotes string            `json:"internal_notes"`
}

// UpdateInvoiceRequest mutates an existing invoice. Nil fields are left
// unchanged; a non-nil LineItems slice replaces all lines. Version, when
// positive, must match the stored version or the update is rejected.
type UpdateInvoiceRequest struct {
	ClientName    *string `json:"client_name"`
	ClientEmail   *string `json:"client_email"`
	ClientPhone   *string `json:"client_phone"`
	ClientAddress *string `json:"client_address"`

	DueDate *string `json:"due_date"`

	TaxRate              *decimal.Decimal `json:"tax_rate"`
	OverallDiscountType  *string          `json:"overall_discount_type"`
	OverallDiscountValue *decimal.Decimal `json:"overall_discount_value"`

	LineItems []LineItemRequest    `json:"line_items"`
	Terms     *PaymentTermsRequest `json:"payment_terms"`

	Tags          []string          `json:"tags"`
	CustomFields  map[string]string `json:"custom_fields"`
	InternalNotes *string           `json:"internal_notes"`

	Version int64 `json:"version"`
}

// ProcessPaymentRequest records a payment against an invoice.
type ProcessPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	Method        string          `json:"payment_method"`
	Reference     string          `json:"reference"`
	TransactionID string          `json:"transaction_id"`
	Notes         string          `json:"notes"`
}

// SearchInvoicesRequest is the query contract for GET /invoices/search.
type SearchInvoicesRequest struct {
	Query      string `query:"q"`
	Status     string `query:"status"`
	MinTotal   string `query:"min_total"`
	MaxTotal   string `query:"max_total"`
	IssuedFrom string `query:"issued_from"`
	IssuedTo   string `query:"issued_to"`
	Tag        string `query:"tag"`
	PageRequest
}

// LineItemResponse exposes a line with its derived amounts, rounded.
type LineItemResponse struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Unit           string          `json:"unit,omitempty"`
	Category       string          `json:"category,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	LineTotal      decimal.Decimal `json:"line_total"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	FinalTotal     decimal.Decimal `json:"final_total"`
}

// PaymentResponse exposes one applied payment.
type PaymentResponse struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     string          `json:"payment_date"`
	Method          string          `json:"payment_method"`
	Status          string          `json:"status"`
	Reference       string          `json:"reference,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ProcessedBy     string          `json:"processed_by,omitempty"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount"`
	EffectiveAmount decimal.Decimal `json:"effective_amount"`
}

// FinancialSummaryResponse is the invoice-level money roll-up.
type FinancialSummaryResponse struct {
	Subtotal          decimal.Decimal `json:"subtotal"`
	LineDiscountTotal decimal.Decimal `json:"line_discount_total"`
	OverallDiscount   decimal.Decimal `json:"overall_discount_amount"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// PaymentTermsResponse mirrors PaymentTermsRequest.
type PaymentTermsResponse struct {
	NetDays             int             `json:"net_days"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	DiscountDays        int             `json:"discount_days"`
	LateFeePercentage   decimal.Decimal `json:"late_fee_percentage"`
	LateFeeGraceDays    int             `json:"late_fee_grace_days"`
	PaymentInstructions string          `json:"payment_instructions,omitempty"`
}

// InvoiceResponse is the full aggregate view. EffectiveStatus layers the
// derived overdue state over the stored status.
type InvoiceResponse struct {
	ID              string `json:"id"`
	BusinessID      string `json:"business_id"`
	InvoiceNumber   string `json:"invoice_number"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`

	IssueDate  string  `json:"issue_date"`
	DueDate    string  `json:"due_date"`
	SentDate   *string `json:"sent_date,omitempty"`
	ViewedDate *string `json:"viewed_date,omitempty"`
	PaidDate   *string `json:"paid_date,omitempty"`

	ContactID     string `json:"contact_id,omitempty"`
	ClientName    string `json:"client_name"`
	ClientEmail   string `json:"client_email,omitempty"`
	ClientPhone   string `json:"client_phone,omitempty"`
	ClientAddress string `json:"client_address,omitempty"`

	Currency             string          `json:"currency"`
	TaxRate              decimal.Decimal `json:"tax_rate"`
	TaxType              string          `json:"tax_type"`
	OverallDiscountType  string          `json:"overall_discount_type"`
	OverallDiscountValue decimal.Decimal `json:"overall_discount_value"`

	LineItems []LineItemResponse `json:"line_items"`
	Payments  []PaymentResponse  `json:"payments"`

	Summary    FinancialSummaryResponse `json:"summary"`
	AmountPaid decimal.Decimal          `json:"amount_paid"`
	BalanceDue decimal.Decimal          `json:"balance_due"`

	EarlyPaymentDiscount decimal.Decimal `json:"early_payment_discount"`
	LateFee              decimal.Decimal `json:"late_fee"`

	Terms PaymentTermsResponse `json:"payment_terms"`

	EstimateID string `json:"estimate_id,omitempty"`
	ProjectID  string `json:"project_id,omitempty"`
	JobID      string `json:"job_id,omitempty"`

	Tags          []string          `json:"tags,omitempty"`
	CustomFields  map[string]string `json:"custom_fields,omitempty"`
	InternalNotes string            `json:"internal_notes,omitempty"`
	CreatedBy     string            `json:"created_by,omitempty"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	Version       int64             `json:"version"`
}

// InvoiceListResponse is a page of invoices.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
