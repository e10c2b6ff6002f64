// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdiddy/industry-leverage/pkg/types"
)

// Defaults for the XBRL US public filings database.
const (
	DefaultHost = "public.xbrl.us"
	DefaultPort = 5432
	DefaultName = "edgar_db"
)

const reportQuery = `
	SELECT report.report_id::text, report.properties->>'document_type'
	FROM report
	WHERE report.reporting_period_end_date >= $1
	  AND report.reporting_period_end_date <= $2
	  AND (report.properties->>'standard_industrial_classification')::text LIKE $3
	  AND report.source_id = (SELECT source_id FROM source WHERE source_name = 'SEC')
	  AND report.properties->>'document_type' IN ('10-Q', '10-K')
	ORDER BY report.report_id
`

// ConnString returns cfg.DatabaseURL, or builds one from the host fields
// and credentials.
func ConnString(cfg types.DiscoveryConfig, user, password string) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	host, port, name := cfg.Host, cfg.Port, cfg.Name
	if host == "" {
		host = DefaultHost
	}
	if port == 0 {
		port = DefaultPort
	}
	if name == "" {
		name = DefaultName
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + name,
	}
	if user != "" {
		u.User = url.UserPassword(user, password)
	}
	return u.String()
}

// PostgresFinder queries the public filings database.
type PostgresFinder struct {
	pool *pgxpool.Pool
}

// NewPostgresFinder connects to connString. Queries run one at a time so
// the pool holds a single connection.
func NewPostgresFinder(ctx context.Context, connString string) (*PostgresFinder, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	config.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresFinder{pool: pool}, nil
}

// Close releases the pool.
func (f *PostgresFinder) Close() {
	f.pool.Close()
}

// FindReports implements ReportFinder.
func (f *PostgresFinder) FindReports(ctx context.Context, sicPrefix string, start, end time.Time) ([]types.ReportRef, error) {
	rows, err := f.pool.Query(ctx, reportQuery, start, end, sicPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var refs []types.ReportRef
	for rows.Next() {
		var id, docType string
		if err := rows.Scan(&id, &docType); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		refs = append(refs, types.ReportRef{ReportID: id, DocumentType: types.DocumentType(docType)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading reports: %w", err)
	}
	return refs, nil
}
