package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tradeflow/fieldops-api/internal/domain"
	"github.com/tradeflow/fieldops-api/internal/domain/entity"
	"github.com/tradeflow/fieldops-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo persists the invoice aggregate across three tables: invoices,
// invoice_line_items and invoice_payments. Derived amounts (line totals,
// invoice totals, balance) are written on every save so listings and search
// can filter on them, but the entity remains the source of truth: loads
// rebuild the aggregate from its inputs.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass a pool or a tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, business_id, invoice_number, status, issue_date, due_date,
	sent_date, viewed_date, paid_date,
	contact_id, client_name, client_email, client_phone, client_address,
	currency, tax_rate, tax_type, overall_discount_type, overall_discount_value,
	estimate_id, project_id, job_id,
	net_days, discount_percentage, discount_days,
	late_fee_percentage, late_fee_grace_days, payment_instructions,
	tags, custom_fields, internal_notes, created_by,
	created_at, updated_at, version`

// Create inserts the invoice header, its line items and any payments in the
// caller's transaction. A 23505 on (business_id, invoice_number) surfaces as
// ErrDuplicate: the unique constraint, not the advisory pre-check, is the
// authoritative guard against number races.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	customFields, err := marshalCustomFields(inv.CustomFields)
	if err != nil {
		return err
	}
	summary := inv.Summary()
	query := `
		INSERT INTO invoices (
			id, business_id, invoice_number, status, issue_date, due_date,
			sent_date, viewed_date, paid_date,
			contact_id, client_name, client_email, client_phone, client_address,
			currency, tax_rate, tax_type, overall_discount_type, overall_discount_value,
			estimate_id, project_id, job_id,
			net_days, discount_percentage, discount_days,
			late_fee_percentage, late_fee_grace_days, payment_instructions,
			tags, custom_fields, internal_notes, created_by,
			subtotal, total_amount, balance_due,
			created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38
		)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.BusinessID, inv.InvoiceNumber, string(inv.Status), inv.IssueDate, inv.DueDate,
		inv.SentDate, inv.ViewedDate, inv.PaidDate,
		nullIfEmpty(inv.ContactID), inv.ClientName, nullIfEmpty(inv.ClientEmail), nullIfEmpty(inv.ClientPhone), nullIfEmpty(inv.ClientAddress),
		inv.Currency, inv.TaxRate, string(inv.TaxType), string(inv.OverallDiscountType), inv.OverallDiscountValue,
		nullIfEmpty(inv.EstimateID), nullIfEmpty(inv.ProjectID), nullIfEmpty(inv.JobID),
		inv.Terms.NetDays, inv.Terms.DiscountPercentage, inv.Terms.DiscountDays,
		inv.Terms.LateFeePercentage, inv.Terms.LateFeeGraceDays, nullIfEmpty(inv.Terms.PaymentInstructions),
		inv.Tags, customFields, nullIfEmpty(inv.InternalNotes), nullIfEmpty(inv.CreatedBy),
		summary.Subtotal, summary.TotalAmount, inv.BalanceDue().Round(2),
		inv.CreatedAt, inv.UpdatedAt, inv.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number %s: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	if err := r.insertLineItems(ctx, inv); err != nil {
		return err
	}
	return r.insertPayments(ctx, inv)
}

// Update rewrites the aggregate with a compare-and-swap on (id, version).
// Zero rows affected on an existing invoice means someone else wrote first.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	customFields, err := marshalCustomFields(inv.CustomFields)
	if err != nil {
		return err
	}
	summary := inv.Summary()
	query := `
		UPDATE invoices SET
			status = $3, issue_date = $4, due_date = $5,
			sent_date = $6, viewed_date = $7, paid_date = $8,
			client_name = $9, client_email = $10, client_phone = $11, client_address = $12,
			tax_rate = $13, overall_discount_type = $14, overall_discount_value = $15,
			net_days = $16, discount_percentage = $17, discount_days = $18,
			late_fee_percentage = $19, late_fee_grace_days = $20, payment_instructions = $21,
			tags = $22, custom_fields = $23, internal_notes = $24,
			subtotal = $25, total_amount = $26, balance_due = $27,
			updated_at = $28,
			version = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.Version,
		string(inv.Status), inv.IssueDate, inv.DueDate,
		inv.SentDate, inv.ViewedDate, inv.PaidDate,
		inv.ClientName, nullIfEmpty(inv.ClientEmail), nullIfEmpty(inv.ClientPhone), nullIfEmpty(inv.ClientAddress),
		inv.TaxRate, string(inv.OverallDiscountType), inv.OverallDiscountValue,
		inv.Terms.NetDays, inv.Terms.DiscountPercentage, inv.Terms.DiscountDays,
		inv.Terms.LateFeePercentage, inv.Terms.LateFeeGraceDays, nullIfEmpty(inv.Terms.PaymentInstructions),
		inv.Tags, customFields, nullIfEmpty(inv.InternalNotes),
		summary.Subtotal, summary.TotalAmount, inv.BalanceDue().Round(2),
		inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, inv.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("invoice %s: %w", inv.ID, domain.ErrNotFound)
		}
		return domain.ErrVersionConflict
	}
	inv.Version++

	// Lines and payments are rewritten wholesale; the surrounding tx makes
	// it atomic.
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("clear invoice lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("clear invoice payments: %w", err)
	}
	if err := r.insertLineItems(ctx, inv); err != nil {
		return err
	}
	return r.insertPayments(ctx, inv)
}

func (r *InvoiceRepo) insertLineItems(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoice_line_items (
			id, invoice_id, position, description, quantity, unit_price,
			unit, category, notes, discount_type, discount_value, tax_rate,
			line_total, discount_amount, tax_amount, final_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	for i, li := range inv.LineItems {
		if li.ID == "" {
			li.ID = uuid.New().String()
			inv.LineItems[i].ID = li.ID
		}
		_, err := r.q.Exec(ctx, query,
			li.ID, inv.ID, i, li.Description, li.Quantity, li.UnitPrice,
			nullIfEmpty(li.Unit), nullIfEmpty(li.Category), nullIfEmpty(li.Notes),
			string(li.DiscountType), li.DiscountValue, li.TaxRate,
			li.LineTotal().Round(2), li.DiscountAmount().Round(2),
			li.TaxAmount().Round(2), li.FinalTotal().Round(2),
		)
		if err != nil {
			return fmt.Errorf("insert invoice line %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *InvoiceRepo) insertPayments(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoice_payments (
			id, invoice_id, amount, payment_date, method, status,
			reference, transaction_id, notes, processed_by, refunded_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for i, p := range inv.Payments {
		if p.ID == "" {
			p.ID = uuid.New().String()
			inv.Payments[i].ID = p.ID
		}
		_, err := r.q.Exec(ctx, query,
			p.ID, inv.ID, p.Amount, p.PaymentDate, string(p.Method), string(p.Status),
			nullIfEmpty(p.Reference), nullIfEmpty(p.TransactionID), nullIfEmpty(p.Notes),
			nullIfEmpty(p.ProcessedBy), p.RefundedAmount, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert invoice payment %d: %w", i+1, err)
		}
	}
	return nil
}

// GetByID loads the full aggregate, or nil when it does not exist.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate locks the invoice row until the transaction ends. Only
// meaningful on a tx-bound repository.
func (r *InvoiceRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.getByID(ctx, id, true)
}

func (r *InvoiceRepo) getByID(ctx context.Context, id string, forUpdate bool) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.loadChildren(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes the aggregate. Eligibility (draft, unsent, no payments) is
// the use case's responsibility.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_payments WHERE invoice_id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice payments: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListByBusiness returns a filtered page plus the unpaged count. An Overdue
// filter becomes a due-date + balance predicate over the payable statuses,
// since overdue is never stored.
func (r *InvoiceRepo) ListByBusiness(ctx context.Context, businessID string, filter repository.InvoiceFilter, limit, offset int) ([]*entity.Invoice, int, error) {
	where := []string{"business_id = $1"}
	args := []any{businessID}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Overdue {
		where = append(where, overduePredicate)
	}
	if filter.ContactID != "" {
		add("contact_id = $%d", filter.ContactID)
	}
	if filter.ProjectID != "" {
		add("project_id = $%d", filter.ProjectID)
	}
	if filter.JobID != "" {
		add("job_id = $%d", filter.JobID)
	}
	if filter.IssuedFrom != nil {
		add("issue_date >= $%d", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		add("issue_date <= $%d", *filter.IssuedTo)
	}

	return r.pageQuery(ctx, where, args, limit, offset)
}

// overduePredicate mirrors entity.Invoice.IsOverdue in SQL.
const overduePredicate = `(status IN ('sent', 'viewed', 'partially_paid') AND due_date < now() AND balance_due > 0)`

// Search runs the free-form search: Query matches number and client
// name/email, the rest are range filters.
func (r *InvoiceRepo) Search(ctx context.Context, businessID string, criteria repository.InvoiceSearchCriteria, limit, offset int) ([]*entity.Invoice, int, error) {
	where := []string{"business_id = $1"}
	args := []any{businessID}

	add := func(cond string, val any) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if criteria.Query != "" {
		args = append(args, "%"+criteria.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(invoice_number ILIKE $%d OR client_name ILIKE $%d OR client_email ILIKE $%d)", n, n, n))
	}

	var stored []string
	overdueWanted := false
	for _, s := range criteria.Statuses {
		if s == entity.StatusOverdue {
			overdueWanted = true
			continue
		}
		stored = append(stored, string(s))
	}
	switch {
	case len(stored) > 0 && overdueWanted:
		args = append(args, stored)
		where = append(where, fmt.Sprintf("(status = ANY($%d) OR %s)", len(args), overduePredicate))
	case len(stored) > 0:
		add("status = ANY($%d)", stored)
	case overdueWanted:
		where = append(where, overduePredicate)
	}

	if criteria.MinTotal != nil {
		add("total_amount >= $%d", *criteria.MinTotal)
	}
	if criteria.MaxTotal != nil {
		add("total_amount <= $%d", *criteria.MaxTotal)
	}
	if criteria.IssuedFrom != nil {
		add("issue_date >= $%d", *criteria.IssuedFrom)
	}
	if criteria.IssuedTo != nil {
		add("issue_date <= $%d", *criteria.IssuedTo)
	}
	if len(criteria.Tags) > 0 {
		add("tags @> $%d", criteria.Tags)
	}

	return r.pageQuery(ctx, where, args, limit, offset)
}

func (r *InvoiceRepo) pageQuery(ctx context.Context, where []string, args []any, limit, offset int) ([]*entity.Invoice, int, error) {
	cond := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM invoices WHERE ` + cond
	if err := r.q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY issue_date DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadChildren(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// NextInvoiceNumber atomically advances the per-business sequence for the
// prefix and formats the number. Must run in the same transaction as the
// invoice insert so allocation and creation commit or roll back together.
func (r *InvoiceRepo) NextInvoiceNumber(ctx context.Context, businessID, prefix string) (string, error) {
	var n int64
	query := `
		INSERT INTO invoice_sequences (business_id, prefix, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (business_id, prefix)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1
		RETURNING last_value`
	if err := r.q.QueryRow(ctx, query, businessID, prefix).Scan(&n); err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}

// HasDuplicateNumber is the advisory pre-check; the unique constraint on
// (business_id, invoice_number) remains authoritative.
func (r *InvoiceRepo) HasDuplicateNumber(ctx context.Context, businessID, number string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM invoices WHERE business_id = $1 AND invoice_number = $2)`
	if err := r.q.QueryRow(ctx, query, businessID, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return exists, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status, taxType, discountType string
	var contactID, clientEmail, clientPhone, clientAddress *string
	var estimateID, projectID, jobID *string
	var paymentInstructions, internalNotes, createdBy *string
	var customFields []byte

	err := row.Scan(
		&inv.ID, &inv.BusinessID, &inv.InvoiceNumber, &status, &inv.IssueDate, &inv.DueDate,
		&inv.SentDate, &inv.ViewedDate, &inv.PaidDate,
		&contactID, &inv.ClientName, &clientEmail, &clientPhone, &clientAddress,
		&inv.Currency, &inv.TaxRate, &taxType, &discountType, &inv.OverallDiscountValue,
		&estimateID, &projectID, &jobID,
		&inv.Terms.NetDays, &inv.Terms.DiscountPercentage, &inv.Terms.DiscountDays,
		&inv.Terms.LateFeePercentage, &inv.Terms.LateFeeGraceDays, &paymentInstructions,
		&inv.Tags, &customFields, &internalNotes, &createdBy,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.Version,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	inv.TaxType = entity.TaxType(taxType)
	inv.OverallDiscountType = entity.DiscountType(discountType)
	inv.ContactID = derefStr(contactID)
	inv.ClientEmail = derefStr(clientEmail)
	inv.ClientPhone = derefStr(clientPhone)
	inv.ClientAddress = derefStr(clientAddress)
	inv.EstimateID = derefStr(estimateID)
	inv.ProjectID = derefStr(projectID)
	inv.JobID = derefStr(jobID)
	inv.Terms.PaymentInstructions = derefStr(paymentInstructions)
	inv.InternalNotes = derefStr(internalNotes)
	inv.CreatedBy = derefStr(createdBy)
	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &inv.CustomFields); err != nil {
			return nil, fmt.Errorf("decode custom fields: %w", err)
		}
	}
	return &inv, nil
}

// loadChildren fetches line items and payments for a batch of invoices in
// two queries instead of 2N.
func (r *InvoiceRepo) loadChildren(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}

	lineQuery := `
		SELECT invoice_id, id, description, quantity, unit_price,
		       unit, category, notes, discount_type, discount_value, tax_rate
		FROM invoice_line_items
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, position`
	rows, err := r.q.Query(ctx, lineQuery, ids)
	if err != nil {
		return fmt.Errorf("load invoice lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var invoiceID, discountType string
		var unit, category, notes *string
		var li entity.LineItem
		if err := rows.Scan(&invoiceID, &li.ID, &li.Description, &li.Quantity, &li.UnitPrice,
			&unit, &category, &notes, &discountType, &li.DiscountValue, &li.TaxRate); err != nil {
			return fmt.Errorf("scan invoice line: %w", err)
		}
		li.Unit = derefStr(unit)
		li.Category = derefStr(category)
		li.Notes = derefStr(notes)
		li.DiscountType = entity.DiscountType(discountType)
		if inv := byID[invoiceID]; inv != nil {
			inv.LineItems = append(inv.LineItems, li)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	paymentQuery := `
		SELECT invoice_id, id, amount, payment_date, method, status,
		       reference, transaction_id, notes, processed_by, refunded_amount, created_at
		FROM invoice_payments
		WHERE invoice_id = ANY($1)
		ORDER BY invoice_id, payment_date, created_at`
	prows, err := r.q.Query(ctx, paymentQuery, ids)
	if err != nil {
		return fmt.Errorf("load invoice payments: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var invoiceID, method, status string
		var reference, transactionID, notes, processedBy *string
		var p entity.Payment
		if err := prows.Scan(&invoiceID, &p.ID, &p.Amount, &p.PaymentDate, &method, &status,
			&reference, &transactionID, &notes, &processedBy, &p.RefundedAmount, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan invoice payment: %w", err)
		}
		p.Method = entity.PaymentMethod(method)
		p.Status = entity.PaymentStatus(status)
		p.Reference = derefStr(reference)
		p.TransactionID = derefStr(transactionID)
		p.Notes = derefStr(notes)
		p.ProcessedBy = derefStr(processedBy)
		if inv := byID[invoiceID]; inv != nil {
			inv.Payments = append(inv.Payments, p)
		}
	}
	return prows.Err()
}

func marshalCustomFields(fields map[string]string) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode custom fields: %w", err)
	}
	return b, nil
}
