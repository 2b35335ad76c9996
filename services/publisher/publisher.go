package publisher

// Publisher emits ingested product records to downstream consumers.
type Publisher interface {
	// Publish publishes a message under a provider key
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
