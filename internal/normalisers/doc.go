// Package normalisers holds the source document readers. Each subpackage
// turns one file format into page-numbered text for chunking.
package normalisers
