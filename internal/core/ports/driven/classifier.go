package driven

// Classifier assigns a chunk of content to a knowledge base
// partition. Consulted once per chunk before append.
type Classifier interface {
	// Classify returns the partition name for the given content.
	// Implementations fall back to a general partition when no
	// specific one fits.
	Classify(content string) string
}
