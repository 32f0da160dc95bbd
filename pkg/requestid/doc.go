// Package requestid stamps every HTTP request with a correlation id.
//
// Middleware keeps a client supplied X-Request-ID when it is at most 128
// characters of [a-zA-Z0-9_-], and otherwise generates a UUID. The id is
// echoed in the response, stored in the request context, and added to log
// records through LoggerExtractor.
package requestid
