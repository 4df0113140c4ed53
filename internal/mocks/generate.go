// Package mocks provides gomock mocks for the broker seams of the publishers.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	ch := mocks.NewMockAMQPChannel(ctrl)
//	ch.EXPECT().PublishWithContext(gomock.Any(), "alerts", "alerts.critical", false, false, gomock.Any()).Return(nil)
package mocks

// MockAMQPChannel: PublishWithContext, Close
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=amqp_channel_mock.go github.com/code-string/aegis-bugle/pkg/producer AMQPChannel

// MockBrokerPublisher: SendAlert, SendPayload, Broker, Close
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=broker_publisher_mock.go github.com/code-string/aegis-bugle/pkg/producer BrokerPublisher
