package hostdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/internal/query"
	"github.com/huangsam/chartwire/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// parsedQueryCacheSize bounds the number of parsed expressions kept per host.
const parsedQueryCacheSize = 256

// maxQueuedQueries bounds the queries waiting for a free worker.
const maxQueuedQueries = 1024

// ErrProcedureNotFound is returned when a named procedure is not registered.
var ErrProcedureNotFound = errors.New("procedure not found")

// SQLHost serves records from a SQL database. Entities are tables keyed by id,
// procedures are SELECT statements stored in host_procedures.
type SQLHost struct {
	db           *sql.DB
	backend      schema.DatabaseBackend
	connStr      string
	queryTimeout time.Duration
	bulkhead     bulkhead.Bulkhead[[]contract.RawRecord]
	notifier     contract.ChangeNotifier
	notifierKind schema.NotifierKind
	publisher    Publisher

	cacheMu sync.Mutex
	parsed  *simplelru.LRU
}

var (
	_ Host                = &SQLHost{} // Compile-time check
	_ contract.ActionHost = &SQLHost{} // Compile-time check
)

// OpenDB opens and pings a database for the backend.
func OpenDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHostDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite host at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL host: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL host: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	default:
		return nil, fmt.Errorf("unsupported SQL host backend: %s. Must be sqlite, mysql or postgresql", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	return db, nil
}

// NewSQLHost opens the database, ensures the host tables exist and starts the notifier.
func NewSQLHost(opts Options) (*SQLHost, error) {
	db, err := OpenDB(opts.Backend, opts.ConnStr)
	if err != nil {
		return nil, err
	}
	host, err := newSQLHostFromDB(db, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return host, nil
}

func newSQLHostFromDB(db *sql.DB, opts Options) (*SQLHost, error) {
	if err := createHostTables(db); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	timeout := opts.QueryTimeout
	if timeout <= 0 {
		timeout = contract.DefaultQueryTimeout
	}
	parsed, err := simplelru.NewLRU(parsedQueryCacheSize, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	h := &SQLHost{
		db:           db,
		backend:      opts.Backend,
		connStr:      opts.ConnStr,
		queryTimeout: timeout,
		bulkhead: bulkhead.New[[]contract.RawRecord](bulkhead.Config{
			MaxConcurrent: workers,
			MaxQueue:      maxQueuedQueries,
			QueueTimeout:  timeout,
		}),
		parsed:       parsed,
		notifierKind: opts.Notifier,
	}

	switch opts.Notifier {
	case schema.RedisNotifier:
		rn, err := NewRedisNotifier(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, err
		}
		h.notifier = rn
		h.publisher = rn
	case schema.NoneNotifier:
		h.notifier = NewNoopNotifier()
	default:
		h.notifierKind = schema.PollNotifier
		h.notifier = NewPollNotifier(db, opts.Backend, opts.PollInterval)
	}
	return h, nil
}

// createHostTables creates the host tables if they are missing.
func createHostTables(db *sql.DB) error {
	for _, name := range []string{"000001_create_host_procedures.up.sql", "000002_create_host_revisions.up.sql"} {
		stmt, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(stmt)); err != nil {
			return fmt.Errorf("failed to create host tables: %w", err)
		}
	}
	return nil
}

// DB returns the underlying database handle.
func (h *SQLHost) DB() *sql.DB { return h.db }

// Backend returns the database backend.
func (h *SQLHost) Backend() schema.DatabaseBackend { return h.backend }

// Get runs a query expression or a procedure. Concurrency is bounded by the
// worker bulkhead and every query is bounded by the query timeout.
func (h *SQLHost) Get(ctx context.Context, req schema.RetrieveRequest) ([]contract.RawRecord, error) {
	return h.bulkhead.Execute(ctx, func(ctx context.Context) ([]contract.RawRecord, error) {
		ctx, cancel := context.WithTimeout(ctx, h.queryTimeout)
		defer cancel()

		stmt, args, err := h.statement(ctx, req)
		if err != nil {
			return nil, err
		}
		logging.Debug().Str("backend", string(h.backend)).Str("sql", stmt).Int("args", len(args)).Msg("Host query")

		rows, err := h.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			return nil, err
		}
		defer func() { _ = rows.Close() }()
		return scanRecords(rows)
	})
}

// statement resolves a request into SQL and arguments.
func (h *SQLHost) statement(ctx context.Context, req schema.RetrieveRequest) (string, []any, error) {
	if req.ActionName != "" {
		body, err := h.procedureBody(ctx, req.ActionName)
		if err != nil {
			return "", nil, err
		}
		stmt, n := rebind(body, h.backend)
		return stmt, bindParams(req.Params, n), nil
	}

	q, err := h.parse(req.QueryExpression)
	if err != nil {
		return "", nil, err
	}
	return q.SQL(h.backend, req.Sort)
}

// parse returns a parsed query, reusing previously parsed expressions.
func (h *SQLHost) parse(expr string) (*query.Query, error) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	if v, ok := h.parsed.Get(expr); ok {
		return v.(*query.Query), nil
	}
	q, err := query.Parse(expr)
	if err != nil {
		return nil, err
	}
	h.parsed.Add(expr, q)
	return q, nil
}

// procedureBody looks up the SQL body of a registered procedure.
func (h *SQLHost) procedureBody(ctx context.Context, name string) (string, error) {
	stmt := fmt.Sprintf("SELECT body FROM %s WHERE name = %s",
		query.QuoteIdent(proceduresTable, h.backend), query.Placeholder(h.backend, 1))
	var body string
	if err := h.db.QueryRowContext(ctx, stmt, name).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrProcedureNotFound, name)
		}
		return "", err
	}
	return body, nil
}

// ExecuteAction runs a procedure for its side effects against a record.
func (h *SQLHost) ExecuteAction(ctx context.Context, name string, recordID string) error {
	ctx, cancel := context.WithTimeout(ctx, h.queryTimeout)
	defer cancel()

	body, err := h.procedureBody(ctx, name)
	if err != nil {
		return err
	}
	stmt, n := rebind(body, h.backend)
	if _, err := h.db.ExecContext(ctx, stmt, bindParams([]string{recordID}, n)...); err != nil {
		return err
	}
	logging.Info().Str("procedure", name).Str("record", recordID).Msg("Executed click action")
	return nil
}

// OpenPage has no page model on a SQL host; the request is logged.
func (h *SQLHost) OpenPage(_ context.Context, page string, recordID string) error {
	logging.Info().Str("page", page).Str("record", recordID).Msg("Open page requested")
	return nil
}

// Subscribe watches a record through the configured notifier.
func (h *SQLHost) Subscribe(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	return h.notifier.Watch(recordID, callback)
}

// Unsubscribe removes a watch created by Subscribe.
func (h *SQLHost) Unsubscribe(handle schema.SubscriptionHandle) error {
	return h.notifier.Unwatch(handle)
}

// Touch bumps the revision of a record so pollers notice the change, and
// publishes the change when a publisher is configured.
func (h *SQLHost) Touch(ctx context.Context, recordID string) (int64, error) {
	if _, err := h.db.ExecContext(ctx, touchQuery(h.backend), recordID, time.Now().Unix()); err != nil {
		return 0, fmt.Errorf("failed to touch record %s: %w", recordID, err)
	}
	var revision int64
	stmt := fmt.Sprintf("SELECT revision FROM %s WHERE record_id = %s",
		query.QuoteIdent(revisionsTable, h.backend), query.Placeholder(h.backend, 1))
	if err := h.db.QueryRowContext(ctx, stmt, recordID).Scan(&revision); err != nil {
		return 0, fmt.Errorf("failed to read revision of %s: %w", recordID, err)
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, recordID, revision); err != nil {
			return revision, err
		}
	}
	return revision, nil
}

// Close stops the notifier and closes the database.
func (h *SQLHost) Close() error {
	var errs []error
	if h.notifier != nil {
		errs = append(errs, h.notifier.Close())
	}
	if h.db != nil {
		errs = append(errs, h.db.Close())
	}
	return errors.Join(errs...)
}

// touchQuery returns the revision UPSERT for the backend.
func touchQuery(backend schema.DatabaseBackend) string {
	table := query.QuoteIdent(revisionsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (record_id, revision, updated_at) VALUES (?, 1, ?) AS new
			ON DUPLICATE KEY UPDATE revision = %s.revision + 1, updated_at = new.updated_at`, table, table)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (record_id, revision, updated_at) VALUES ($1, 1, $2)
			ON CONFLICT (record_id) DO UPDATE SET revision = %s.revision + 1, updated_at = EXCLUDED.updated_at`, table, table)

	default: // SQLite
		return fmt.Sprintf(`INSERT INTO %s (record_id, revision, updated_at) VALUES (?, 1, ?)
			ON CONFLICT (record_id) DO UPDATE SET revision = %s.revision + 1, updated_at = excluded.updated_at`, table, table)
	}
}

// rebind converts ? placeholders outside string literals to the backend style
// and returns the number of placeholders.
func rebind(body string, backend schema.DatabaseBackend) (string, int) {
	var b strings.Builder
	n := 0
	inString := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '?' && !inString:
			n++
			b.WriteString(query.Placeholder(backend, n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), n
}

// bindParams fits params to n placeholders. Missing values repeat the first parameter.
func bindParams(params []string, n int) []any {
	args := make([]any, n)
	for i := range args {
		switch {
		case i < len(params):
			args[i] = params[i]
		case len(params) > 0:
			args[i] = params[0]
		default:
			args[i] = nil
		}
	}
	return args
}

// scanRecords converts result rows into records keyed by their id column.
func scanRecords(rows *sql.Rows) ([]contract.RawRecord, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []contract.RawRecord{}
	row := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		attrs := make(map[string]any, len(columns))
		id := ""
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			attrs[col] = v
			if strings.EqualFold(col, "id") {
				id = schema.FormatX(v)
			}
		}
		if id == "" {
			id = strconv.Itoa(row)
		}
		records = append(records, schema.NewMapRecord(id, attrs))
		row++
	}
	return records, rows.Err()
}
