// Package oplatypes defines core architectural interfaces for Opla.
package oplatypes

// Service defines the interface for Opla services that provide specific functionality.
// Services are registered and initialized at startup and looked up by name afterwards.
type Service interface {
	Name() string
	Initialize() error
}
