// Package normalisers provides implementations of the Normaliser interface
// for the supported resume formats. Each normaliser decodes the bytes of one
// file type into plain text documents ready for chunking.
//
// Normalisers are handed to the filesystem document store at startup.
package normalisers
