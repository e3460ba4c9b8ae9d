package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements of the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// InvoiceRow mirrors a row of the invoices table.
type InvoiceRow struct {
	ID             string
	InvoiceNo      string
	InvoiceDate    string
	Status         string
	FullName       string
	Nickname       string
	Gender         string
	Age            int64
	Domicile       string
	WhatsApp       string
	Email          string
	Destination    string
	TripDate       string
	Packet         string
	Experience     string
	MedicalHistory string
	Allergies      string
	GearRental     string
	Subtotal       int64
	Discount       int64
	Total          int64
	CreatedAt      int64
	UpdatedAt      int64
}

const invoiceColumns = `id, invoice_no, invoice_date, status, full_name, nickname, gender, age,
	domicile, whatsapp, email, destination, trip_date, packet, experience,
	medical_history, allergies, gear_rental, subtotal, discount, total,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (InvoiceRow, error) {
	var r InvoiceRow
	err := row.Scan(
		&r.ID, &r.InvoiceNo, &r.InvoiceDate, &r.Status, &r.FullName, &r.Nickname,
		&r.Gender, &r.Age, &r.Domicile, &r.WhatsApp, &r.Email, &r.Destination,
		&r.TripDate, &r.Packet, &r.Experience, &r.MedicalHistory, &r.Allergies,
		&r.GearRental, &r.Subtotal, &r.Discount, &r.Total, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

const listInvoices = `SELECT ` + invoiceColumns + `
FROM invoices
ORDER BY created_at DESC, invoice_no DESC, id DESC`

func (q *Queries) ListInvoices(ctx context.Context) ([]InvoiceRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvoices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceRow
	for rows.Next() {
		r, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getInvoice = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`

func (q *Queries) GetInvoice(ctx context.Context, id string) (InvoiceRow, error) {
	return scanInvoice(q.db.QueryRowContext(ctx, getInvoice, id))
}

const upsertInvoice = `INSERT INTO invoices (` + invoiceColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	invoice_no = excluded.invoice_no,
	invoice_date = excluded.invoice_date,
	status = excluded.status,
	full_name = excluded.full_name,
	nickname = excluded.nickname,
	gender = excluded.gender,
	age = excluded.age,
	domicile = excluded.domicile,
	whatsapp = excluded.whatsapp,
	email = excluded.email,
	destination = excluded.destination,
	trip_date = excluded.trip_date,
	packet = excluded.packet,
	experience = excluded.experience,
	medical_history = excluded.medical_history,
	allergies = excluded.allergies,
	gear_rental = excluded.gear_rental,
	subtotal = excluded.subtotal,
	discount = excluded.discount,
	total = excluded.total,
	updated_at = excluded.updated_at`

func (q *Queries) UpsertInvoice(ctx context.Context, r InvoiceRow) error {
	_, err := q.db.ExecContext(ctx, upsertInvoice,
		r.ID, r.InvoiceNo, r.InvoiceDate, r.Status, r.FullName, r.Nickname,
		r.Gender, r.Age, r.Domicile, r.WhatsApp, r.Email, r.Destination,
		r.TripDate, r.Packet, r.Experience, r.MedicalHistory, r.Allergies,
		r.GearRental, r.Subtotal, r.Discount, r.Total, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

const deleteInvoice = `DELETE FROM invoices WHERE id = ?`

func (q *Queries) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteInvoice, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const lastInvoiceNo = `SELECT invoice_no FROM invoices
ORDER BY created_at DESC, invoice_no DESC, id DESC
LIMIT 1`

func (q *Queries) LastInvoiceNo(ctx context.Context) (string, error) {
	var no string
	err := q.db.QueryRowContext(ctx, lastInvoiceNo).Scan(&no)
	return no, err
}

// ExpenseRow mirrors a row of the expenses table.
type ExpenseRow struct {
	ID        string
	Title     string
	Category  string
	Amount    int64
	Date      string
	Notes     string
	CreatedAt int64
}

const expenseColumns = `id, title, category, amount, date, notes, created_at`

func scanExpense(row scanner) (ExpenseRow, error) {
	var r ExpenseRow
	err := row.Scan(&r.ID, &r.Title, &r.Category, &r.Amount, &r.Date, &r.Notes, &r.CreatedAt)
	return r, err
}

const listExpenses = `SELECT ` + expenseColumns + `
FROM expenses
ORDER BY date DESC, created_at DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		r, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id string) (ExpenseRow, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id))
}

const upsertExpense = `INSERT INTO expenses (` + expenseColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	title = excluded.title,
	category = excluded.category,
	amount = excluded.amount,
	date = excluded.date,
	notes = excluded.notes`

func (q *Queries) UpsertExpense(ctx context.Context, r ExpenseRow) error {
	_, err := q.db.ExecContext(ctx, upsertExpense, r.ID, r.Title, r.Category, r.Amount, r.Date, r.Notes, r.CreatedAt)
	return err
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SettingsRow mirrors the single row of the settings table.
type SettingsRow struct {
	Logo             string
	BankName         string
	AccountNo        string
	AccountName      string
	WhatsAppContact  string
	EmailContact     string
	InstagramContact string
	FooterNote       string
	UpdatedAt        int64
}

const getSettings = `SELECT logo, bank_name, account_no, account_name, whatsapp_contact,
	email_contact, instagram_contact, footer_note, updated_at
FROM settings WHERE id = 1`

func (q *Queries) GetSettings(ctx context.Context) (SettingsRow, error) {
	var r SettingsRow
	err := q.db.QueryRowContext(ctx, getSettings).Scan(
		&r.Logo, &r.BankName, &r.AccountNo, &r.AccountName, &r.WhatsAppContact,
		&r.EmailContact, &r.InstagramContact, &r.FooterNote, &r.UpdatedAt,
	)
	return r, err
}

const upsertSettings = `INSERT INTO settings (id, logo, bank_name, account_no, account_name,
	whatsapp_contact, email_contact, instagram_contact, footer_note, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	logo = excluded.logo,
	bank_name = excluded.bank_name,
	account_no = excluded.account_no,
	account_name = excluded.account_name,
	whatsapp_contact = excluded.whatsapp_contact,
	email_contact = excluded.email_contact,
	instagram_contact = excluded.instagram_contact,
	footer_note = excluded.footer_note,
	updated_at = excluded.updated_at`

func (q *Queries) UpsertSettings(ctx context.Context, r SettingsRow) error {
	_, err := q.db.ExecContext(ctx, upsertSettings,
		r.Logo, r.BankName, r.AccountNo, r.AccountName, r.WhatsAppContact,
		r.EmailContact, r.InstagramContact, r.FooterNote, r.UpdatedAt,
	)
	return err
}
