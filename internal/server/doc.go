// Package server exposes the download job engine over a small JSON
// HTTP API plus a server-sent events progress feed.
package server
