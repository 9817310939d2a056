/*
Package server implements a msgpack IPC query server over an fmindex.Index.

Clients write msgpack-encoded requests to the server's input and read one
msgpack response per request from its output. The first message the server
writes is a status message:

	{"status": "ready"}

Search requests return the sorted positions of a pattern, capped by the
limit and by search.max_results, together with the total count and the
time spent in microseconds:

	{"id": "q1", "a": "search", "p": "whale", "l": 10}
	{"id": "q1", "pos": [1042, 9977], "c": 2, "t": 31, "cached": false}

Count requests skip locating:

	{"id": "q2", "a": "count", "p": "whale"}
	{"id": "q2", "pos": null, "c": 2, "t": 4, "cached": false}

Other actions are "info" (index shape), "cached" (cached patterns extending
p) and "health". Failures answer with {"id", "e", "code"}.
*/
package server

// Request is the single request shape for every action.
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"a"`
	Pattern string `msgpack:"p"`
	Limit   int    `msgpack:"l,omitempty"`
}

const (
	ActionSearch = "search"
	ActionCount  = "count"
	ActionInfo   = "info"
	ActionCached = "cached"
	ActionHealth = "health"
)

// SearchResponse answers search and count requests.
type SearchResponse struct {
	ID        string `msgpack:"id"`
	Positions []int  `msgpack:"pos"`
	Count     int    `msgpack:"c"`
	TimeTaken int64  `msgpack:"t"`
	Cached    bool   `msgpack:"cached"`
}

// InfoResponse describes the served index.
type InfoResponse struct {
	ID           string `msgpack:"id"`
	Symbols      int    `msgpack:"n"`
	AlphabetSize int    `msgpack:"k"`
	Algorithm    string `msgpack:"algo"`
	Step         int    `msgpack:"step"`
	Cached       int    `msgpack:"cached"`
}

// CachedResponse lists cached patterns.
type CachedResponse struct {
	ID       string   `msgpack:"id"`
	Patterns []string `msgpack:"ps"`
}

type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"code"`
}
