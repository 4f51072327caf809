package nats

const (
	IndexDocsTopic    string = "index_docs"
	RetrieveDocsTopic string = "retrieve_docs"
)
