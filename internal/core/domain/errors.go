package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrVocabularyNotTrained indicates an embedding was requested before
	// the generator was fitted to a corpus. Embedding without a vocabulary
	// would produce meaningless vectors, so this fails fast.
	ErrVocabularyNotTrained = errors.New("embedding vocabulary not trained")

	// ErrVectorStoreUnavailable indicates the vector database cannot be
	// reached. Ingestion and search cannot proceed without it.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrModelUnavailable indicates the language model service is not
	// reachable. Answer generation degrades to the fallback path; this is
	// never surfaced as a user-facing failure.
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrIngestInProgress indicates an ingestion run is already active for
	// an overlapping source set.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// Crawl errors. Both are skip-and-continue conditions: a single bad
	// page never aborts a crawl.

	// ErrNotHTML indicates the fetched resource is not an HTML page.
	ErrNotHTML = errors.New("not an HTML page")

	// ErrDisallowedURL indicates a URL outside the domain allowlist or
	// with a binary file extension.
	ErrDisallowedURL = errors.New("disallowed URL")
)
