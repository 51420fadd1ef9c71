package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
)

// FetchResult is the single value delivered by FetchAsync.
type FetchResult struct {
	Records []contract.RawRecord
	Err     error
}

// Fetcher retrieves raw records for one data source from the host.
type Fetcher struct {
	host contract.HostDataSource
}

// NewFetcher creates a fetcher bound to a host data source.
func NewFetcher(host contract.HostDataSource) *Fetcher {
	return &Fetcher{host: host}
}

// QueryExpression builds the host query for a query path source bound to ownerID.
// Single quotes in ownerID are doubled so the id stays inside its string literal.
func QueryExpression(src schema.QueryPathSource, ownerID string) string {
	escaped := strings.ReplaceAll(ownerID, "'", "''")
	constraint := strings.ReplaceAll(src.Constraint, schema.CurrentObjectToken, escaped)
	return "//" + src.EntityPath + constraint
}

// Fetch issues exactly one host retrieval for the source and returns records in host order.
func (f *Fetcher) Fetch(ctx context.Context, source schema.DataSource, ownerID string) ([]contract.RawRecord, error) {
	switch src := source.(type) {
	case schema.QueryPathSource:
		req := schema.RetrieveRequest{QueryExpression: QueryExpression(src, ownerID)}
		if src.SortAttribute != "" {
			req.Sort = []schema.SortSpec{{Attribute: src.SortAttribute, Direction: schema.SortAsc}}
		}
		records, err := f.host.Get(ctx, req)
		if err != nil {
			return nil, &RetrievalError{Mode: schema.QueryPathMode, Target: req.QueryExpression, Err: err}
		}
		return records, nil

	case schema.ProcedureSource:
		req := schema.RetrieveRequest{ActionName: src.Name, Params: []string{ownerID}}
		records, err := f.host.Get(ctx, req)
		if err != nil {
			return nil, &RetrievalError{Mode: schema.ProcedureMode, Target: src.Name, Err: err}
		}
		return records, nil

	default:
		return nil, fmt.Errorf("unsupported data source %T", source)
	}
}

// FetchAsync runs Fetch on a goroutine. The returned channel yields exactly one
// result and is then closed.
func (f *Fetcher) FetchAsync(ctx context.Context, source schema.DataSource, ownerID string) <-chan FetchResult {
	ch := make(chan FetchResult, 1)
	go func() {
		defer close(ch)
		records, err := f.Fetch(ctx, source, ownerID)
		ch <- FetchResult{Records: records, Err: err}
	}()
	return ch
}
