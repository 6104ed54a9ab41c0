package service

// Publisher is notified after a mutation so connected clients can refresh
type Publisher interface {
	Publish(eventType string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
