package instance

import (
	"fmt"
	"os"
)

// GetID identifies this process for lock ownership, preferring WORKER_ID.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
