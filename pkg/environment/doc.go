// Package environment names the deployment environment and carries it through
// request contexts.
//
// The billing HTTP API uses it to decide whether internal error details are
// included in error responses: they are in development only.
package environment
