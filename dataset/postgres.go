package dataset

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/datazip-inc/slicer/types"
	"github.com/jackc/pgx/v5"
)

// PostgresDataset scans a table. Rows are fetched in text format, so cells carry the same
// representation psql would print and typed coercion stays in the predicate.
type PostgresDataset struct {
	dsn       string
	table     pgx.Identifier
	columns   []string
	batchSize int
}

// NewPostgres parses a postgres://...#schema.table selector and reads the table's columns.
func NewPostgres(ctx context.Context, selector string, batchSize int) (*PostgresDataset, error) {
	dsn, table, err := parsePostgresSelector(selector)
	if err != nil {
		return nil, err
	}

	d := &PostgresDataset{dsn: dsn, table: table, batchSize: batchSize}

	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, d.selectSQL()+" LIMIT 0", pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %s", d.Name(), err)
	}
	for _, field := range rows.FieldDescriptions() {
		d.columns = append(d.columns, field.Name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %s", d.Name(), err)
	}

	return d, nil
}

func (d *PostgresDataset) Name() string {
	return d.table.Sanitize()
}

func (d *PostgresDataset) Columns() []string {
	return d.columns
}

func (d *PostgresDataset) Scan(ctx context.Context, fn func(batch []types.Row) error) error {
	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	rows, err := conn.Query(ctx, d.selectSQL(), pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return fmt.Errorf("failed to query table %s: %w", d.Name(), err)
	}
	defer rows.Close()

	batch := make([]types.Row, 0, d.batchSize)
	for rows.Next() {
		raw := rows.RawValues()
		row := make(types.Row, len(raw))
		for i, value := range raw {
			// NULL stays an empty cell
			if value != nil {
				row[i] = string(value)
			}
		}

		batch = append(batch, row)
		if len(batch) == d.batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]types.Row, 0, d.batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to scan table %s: %w", d.Name(), err)
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func (d *PostgresDataset) Close() error {
	return nil
}

func (d *PostgresDataset) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, d.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %s", redactErr(err, d.dsn))
	}
	return conn, nil
}

// selectSQL keeps the physical row order of the table; the identifier is always quoted.
func (d *PostgresDataset) selectSQL() string {
	return fmt.Sprintf("SELECT * FROM %s", d.table.Sanitize())
}

func parsePostgresSelector(selector string) (string, pgx.Identifier, error) {
	parsed, err := url.Parse(selector)
	if err != nil {
		return "", nil, fmt.Errorf("invalid postgres selector: %s", Redact(selector))
	}

	table := strings.TrimSpace(parsed.Fragment)
	if table == "" {
		return "", nil, fmt.Errorf("postgres selector %s is missing the #table fragment", Redact(selector))
	}

	ident := pgx.Identifier(strings.Split(table, "."))
	for _, part := range ident {
		if part == "" || len(ident) > 2 {
			return "", nil, fmt.Errorf("invalid table %q in postgres selector, expected table or schema.table", table)
		}
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String(), ident, nil
}

// Redact hides credentials in postgres selectors before they reach logs or errors.
func Redact(selector string) string {
	parsed, err := url.Parse(selector)
	if err != nil || parsed.User == nil {
		return selector
	}
	return parsed.Redacted()
}

func redactErr(err error, dsn string) string {
	msg := err.Error()
	parsed, perr := url.Parse(dsn)
	if perr != nil || parsed.User == nil {
		return msg
	}
	if password, ok := parsed.User.Password(); ok && password != "" {
		msg = strings.ReplaceAll(msg, password, "xxxxx")
	}
	return msg
}
