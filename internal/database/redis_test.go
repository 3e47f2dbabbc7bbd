package database

import (
	"strings"
	"testing"
)

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("http://not-redis")
	if err == nil {
		t.Fatal("Expected error for non-redis URL")
	}
	if !strings.Contains(err.Error(), "failed to parse Redis URL") {
		t.Errorf("Expected parse error, got %v", err)
	}
}
