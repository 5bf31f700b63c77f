package table

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

// LoadBigQuery runs a query and returns its result set as a table. Column
// order follows the result schema.
func LoadBigQuery(ctx context.Context, client *bigquery.Client, sql string) (*Table, error) {
	it, err := client.Query(sql).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadBigQuery: running query: %w", err)
	}

	var records [][]interface{}
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("LoadBigQuery: reading row %d: %w", len(records), err)
		}

		rec := make([]interface{}, len(values))
		for i, v := range values {
			rec[i] = bigQueryCell(v)
		}
		records = append(records, rec)
	}

	columns := make([]string, len(it.Schema))
	for i, field := range it.Schema {
		columns[i] = field.Name
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("LoadBigQuery: query returned no schema")
	}

	return FromValues(columns, records), nil
}

func bigQueryCell(v bigquery.Value) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return parseCell(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case *big.Rat:
		if val == nil {
			return nil
		}
		f, _ := val.Float64()
		return f
	case civil.Date:
		return val.String()
	case civil.DateTime:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case bool:
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
