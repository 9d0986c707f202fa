// Package connectors provides the document sources resumerag reads from.
// The filesystem connector loads resume files from a local directory and
// decodes them with the registered normalisers.
package connectors
