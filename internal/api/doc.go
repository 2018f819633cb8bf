// Package api holds the HTTP handlers for the book exchange: authentication,
// user profiles, the book catalog and the trade workflow. Handlers decode and
// validate requests, call the services and translate service errors into
// status codes with MapErrorToStatusCode and GetSafeErrorMessage. Raw error
// text never reaches the client.
package api
