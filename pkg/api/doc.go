// Package api serves scaleList evaluation over HTTP.
//
// Routes:
//
//	GET    /healthz                    liveness and build version
//	GET    /v1/schema                  attribute table
//	GET    /v1/graph?format=dot|svg|json&detailed=true
//	POST   /v1/evaluate?refresh=true   evaluate a node file body
//	POST   /v1/compute/{attribute}     compute request against a node file body
//	GET    /v1/nodes                   stored snapshots
//	GET    /v1/nodes/{name}
//	PUT    /v1/nodes/{name}            store a node file body
//	DELETE /v1/nodes/{name}
//	POST   /v1/nodes/{name}/evaluate
//	GET    /metrics                    Prometheus text exposition
//
// Request bodies use the JSON node file shape read by the io package. Errors
// are returned as {"code": "...", "message": "..."} with a status derived
// from the error code. A compute request for an attribute the node does not
// produce answers 404 with code UNKNOWN_ATTRIBUTE.
package api
