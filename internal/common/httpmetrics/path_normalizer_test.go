package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"root", "/", "/"},
		{"empty", "", "/"},
		{"static", "/api/tasks", "/api/tasks"},
		{"task id", "/api/tasks/42", "/api/tasks/{id}"},
		{"task complete", "/api/tasks/42/complete", "/api/tasks/{id}/complete"},
		{"username", "/api/users/worker", "/api/users/{username}"},
		{"numeric username", "/api/users/12345", "/api/users/{id}"},
		{"users list", "/api/users", "/api/users"},
		{"health", "/health", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
