package mocks

import "sync"

type MockProducer struct {
	mu     sync.Mutex
	Topics []string
}

func (m *MockProducer) ProduceMessage(topic, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Topics = append(m.Topics, topic)
	return nil
}
