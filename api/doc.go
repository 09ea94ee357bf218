// Package api exposes the service over HTTP: a conversation endpoint that
// runs one pipeline turn, a catalog listing endpoint, a health check, and a
// static file server for location images.
package api
