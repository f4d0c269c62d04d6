package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// execCall records one Execute invocation for assertions
type execCall struct {
	Query  string
	Params map[string]any
}

// fakeExecutor satisfies Executor without a live store. Responses are driven
// by the respond func; nil respond returns no records.
type fakeExecutor struct {
	calls   []execCall
	respond func(query string, params map[string]any) ([]*neo4j.Record, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	f.calls = append(f.calls, execCall{Query: query, Params: params})
	if f.respond != nil {
		return f.respond(query, params)
	}
	return nil, nil
}

// record builds a result row from alternating key/value pairs
func record(pairs ...any) *neo4j.Record {
	rec := &neo4j.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		rec.Keys = append(rec.Keys, pairs[i].(string))
		rec.Values = append(rec.Values, pairs[i+1])
	}
	return rec
}

// nodeRecord builds a result row returning a node under the given key
func nodeRecord(key string, props map[string]any) *neo4j.Record {
	return record(key, neo4j.Node{Props: props})
}
