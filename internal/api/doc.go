// Package api serves the live engine over a websocket.
//
// One Driver owns the Engine. Every connection submits client commands to
// the Driver and receives a state message after each command; the Hub fans
// engine changes out to every connection as they happen.
package api
