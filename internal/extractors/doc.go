// Package extractors provides implementations of the Extractor
// interface for the supported document formats, plus a registry that
// selects one by file extension.
package extractors
