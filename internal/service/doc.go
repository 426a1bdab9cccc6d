// Package service defines the save service contract and its HTTP adapter.
//
// The engine only sees SaveService. Client speaks the story server's REST
// API, carries the _session cookie and maps HTTP 401 to ErrUnauthorized.
package service
