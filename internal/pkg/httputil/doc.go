// Package httputil holds the JSON response and request helpers shared by the
// console handlers.
//
// Handlers write through these helpers rather than the raw
// http.ResponseWriter so error bodies keep one shape and internal errors are
// logged without leaking details to the client.
package httputil
