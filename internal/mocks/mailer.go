package mocks

type MockMailer struct{}

func (m *MockMailer) Send(recipient string, data any, patterns ...string) error {
	return nil
}
