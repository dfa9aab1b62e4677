package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"finance-tracker-backend/internal/model"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Postgres is the relational store.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// DB exposes the pool for migrations and seeding.
func (p *Postgres) DB() *sql.DB { return p.db }

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInUse, pgErr.ConstraintName)
		}
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

// Users

const userColumns = `id, email, name, password_hash, reset_token_hash, reset_token_expires, created_at`

func scanUser(row scanner) (model.User, error) {
	var (
		u       model.User
		token   sql.NullString
		expires sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &token, &expires, &u.CreatedAt); err != nil {
		return model.User{}, mapErr(err)
	}
	if token.Valid {
		u.ResetTokenHash = &token.String
	}
	if expires.Valid {
		u.ResetTokenExpires = &expires.Time
	}
	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u model.User, categories []model.Category) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting user: %w", mapErr(err))
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, insertCategorySQL,
			c.ID, c.UserID, c.Name, c.Type, c.Color, c.Icon, c.IsDefault, c.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting category %q: %w", c.Name, mapErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *Postgres) UserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return scanUser(p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (p *Postgres) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(p.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (p *Postgres) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expires time.Time) error {
	return p.execOne(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_token_expires = $3 WHERE id = $1`,
		userID, tokenHash, expires,
	)
}

func (p *Postgres) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := p.db.QueryRowContext(ctx,
		`UPDATE users SET password_hash = $3, reset_token_hash = NULL, reset_token_expires = NULL
		WHERE reset_token_hash = $1 AND reset_token_expires >= $2
		RETURNING id`,
		tokenHash, now, passwordHash,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, mapErr(err)
	}
	return id, nil
}

// execOne runs a statement that must touch exactly one row.
func (p *Postgres) execOne(ctx context.Context, query string, args ...any) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Accounts

const accountColumns = `id, user_id, name, type, initial_balance, created_at, updated_at`

func scanAccount(row scanner) (model.Account, error) {
	var a model.Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.InitialBalance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.Account{}, mapErr(err)
	}
	return a, nil
}

func (p *Postgres) ListAccounts(ctx context.Context, userID uuid.UUID) ([]model.Account, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY name, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (p *Postgres) GetAccount(ctx context.Context, userID, id uuid.UUID) (model.Account, error) {
	return scanAccount(p.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND user_id = $2`, id, userID))
}

func (p *Postgres) AccountNameTaken(ctx context.Context, userID uuid.UUID, name string, except *uuid.UUID) (bool, error) {
	var taken bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = $1 AND name = $2 AND ($3::uuid IS NULL OR id <> $3::uuid))`,
		userID, name, nullUUID(except),
	).Scan(&taken)
	return taken, err
}

func (p *Postgres) CreateAccount(ctx context.Context, a model.Account) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.Name, a.Type, a.InitialBalance, a.CreatedAt, a.UpdatedAt,
	)
	return mapErr(err)
}

func (p *Postgres) UpdateAccount(ctx context.Context, a model.Account) error {
	return p.execOne(ctx,
		`UPDATE accounts SET name = $3, type = $4, initial_balance = $5, updated_at = $6 WHERE id = $1 AND user_id = $2`,
		a.ID, a.UserID, a.Name, a.Type, a.InitialBalance, a.UpdatedAt,
	)
}

func (p *Postgres) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	return p.execOne(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, userID)
}

// Categories

const categoryColumns = `id, user_id, name, type, color, icon, is_default, created_at`

const insertCategorySQL = `INSERT INTO categories (` + categoryColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func scanCategory(row scanner) (model.Category, error) {
	var (
		c    model.Category
		icon sql.NullString
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &icon, &c.IsDefault, &c.CreatedAt); err != nil {
		return model.Category{}, mapErr(err)
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	return c, nil
}

func (p *Postgres) ListCategories(ctx context.Context, userID uuid.UUID, typ model.EntryType) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = $2`
		args = append(args, typ)
	}
	query += ` ORDER BY name, id`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (p *Postgres) GetCategory(ctx context.Context, userID, id uuid.UUID) (model.Category, error) {
	return scanCategory(p.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID))
}

func (p *Postgres) CategoryNameTaken(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var taken bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND name = $2)`, userID, name,
	).Scan(&taken)
	return taken, err
}

func (p *Postgres) CreateCategory(ctx context.Context, c model.Category) error {
	_, err := p.db.ExecContext(ctx, insertCategorySQL,
		c.ID, c.UserID, c.Name, c.Type, c.Color, c.Icon, c.IsDefault, c.CreatedAt,
	)
	return mapErr(err)
}

// Transactions

const transactionSelect = `
	SELECT t.id, t.user_id, t.account_id, t.category_id, t.amount, t.date, t.description, t.type, t.notes,
	       t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.type, c.color, c.icon, c.is_default, c.created_at
	FROM transactions t
	JOIN categories c ON t.category_id = c.id`

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		t       model.Transaction
		c       model.Category
		account uuid.NullUUID
		notes   sql.NullString
		icon    sql.NullString
	)
	err := row.Scan(
		&t.ID, &t.UserID, &account, &t.CategoryID, &t.Amount, &t.Date, &t.Description, &t.Type, &notes,
		&t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &icon, &c.IsDefault, &c.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, mapErr(err)
	}
	if account.Valid {
		t.AccountID = &account.UUID
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	t.Category = &c
	return t, nil
}

var sortColumns = map[model.SortField]string{
	model.SortDate:        "t.date",
	model.SortAmount:      "t.amount",
	model.SortDescription: "t.description",
	model.SortType:        "t.type",
	model.SortCreatedAt:   "t.created_at",
}

// whereBuilder accumulates conditions with positional placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func transactionWhere(userID uuid.UUID, f model.TransactionFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("t.user_id = ?", userID)
	if f.Search != "" {
		w.add(`t.description ILIKE '%' || ? || '%' ESCAPE '\'`, escapeLike(f.Search))
	}
	if f.Type != "" {
		w.add("t.type = ?", f.Type)
	}
	if f.CategoryID != nil {
		w.add("t.category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		w.add("t.account_id = ?", *f.AccountID)
	}
	if f.From != nil {
		w.add("t.date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("t.date <= ?", *f.To)
	}
	return w
}

func (p *Postgres) ListTransactions(ctx context.Context, userID uuid.UUID, q model.TransactionQuery) ([]model.Transaction, int, error) {
	w := transactionWhere(userID, q.Filter)

	var total int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[model.SortDate]
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	query := fmt.Sprintf("%s%s ORDER BY %s %s, t.id %s LIMIT %d OFFSET %d",
		transactionSelect, w.String(), column, dir, dir, q.PageSize, q.Offset())

	rows, err := p.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]model.Transaction, 0, q.PageSize)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func (p *Postgres) GetTransaction(ctx context.Context, userID, id uuid.UUID) (model.Transaction, error) {
	return scanTransaction(p.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = $1 AND t.user_id = $2`, id, userID))
}

func (p *Postgres) CreateTransaction(ctx context.Context, t model.Transaction) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, category_id, amount, date, description, type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.UserID, nullUUID(t.AccountID), t.CategoryID, t.Amount, t.Date, t.Description, t.Type, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	)
	return mapErr(err)
}

func (p *Postgres) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	return p.execOne(ctx, `
		UPDATE transactions
		SET account_id = $3, category_id = $4, amount = $5, date = $6, description = $7, type = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, nullUUID(t.AccountID), t.CategoryID, t.Amount, t.Date, t.Description, t.Type, t.Notes, t.UpdatedAt,
	)
}

func (p *Postgres) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	return p.execOne(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
}

func entryWhere(userID uuid.UUID, f model.EntryFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("t.user_id = ?", userID)
	if f.Type != "" {
		w.add("t.type = ?", f.Type)
	}
	if f.AccountID != nil {
		w.add("t.account_id = ?", *f.AccountID)
	}
	if f.From != nil {
		w.add("t.date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("t.date <= ?", *f.To)
	}
	return w
}

func (p *Postgres) CountTransactions(ctx context.Context, userID uuid.UUID, f model.EntryFilter) (int, error) {
	w := entryWhere(userID, f)
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+w.String(), w.args...).Scan(&n)
	return n, err
}

func (p *Postgres) Entries(ctx context.Context, userID uuid.UUID, f model.EntryFilter) ([]model.Entry, error) {
	w := entryWhere(userID, f)
	rows, err := p.db.QueryContext(ctx, `
		SELECT t.id, t.account_id, t.category_id, c.name, c.color, t.amount, t.type, t.date
		FROM transactions t
		JOIN categories c ON t.category_id = c.id`+w.String()+`
		ORDER BY t.date, t.id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.Entry, 0)
	for rows.Next() {
		var (
			e       model.Entry
			account uuid.NullUUID
		)
		if err := rows.Scan(&e.ID, &account, &e.CategoryID, &e.CategoryName, &e.CategoryColor, &e.Amount, &e.Type, &e.Date); err != nil {
			return nil, err
		}
		if account.Valid {
			e.AccountID = &account.UUID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
