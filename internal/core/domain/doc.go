// Package domain contains the core entities of the campusrag pipeline:
// crawl targets and crawled documents, text chunks, vector records and
// search results, plus the domain error taxonomy. It has no dependencies
// on infrastructure packages.
package domain
