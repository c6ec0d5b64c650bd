package db

import (
	"context"
	"testing"
)

func TestNewInvalidConnection(t *testing.T) {
	ctx := context.Background()

	// Test with invalid connection string
	_, err := New(ctx, "invalid://connection")
	if err == nil {
		t.Error("expected error with invalid connection string, got nil")
	}
}
