package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantMode string
		wantArgs []string
	}{
		{"equals form", []string{"--mode=order-service", "--port=9000"}, "order-service", []string{"--port=9000"}},
		{"separate value", []string{"--port", "9000", "--mode", "notification-subscriber"}, "notification-subscriber", []string{"--port", "9000"}},
		{"missing", []string{"--port=9000"}, "", []string{"--port=9000"}},
		{"dangling flag", []string{"--mode"}, "", []string{"--mode"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, args := splitMode(tt.args)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
