package main

import (
	"fmt"
	"os"
	"sync"
)

// secretResolver abstracts where provider credentials come from, so tests can
// inject fixed values and a managed secret store can slot in later.
type secretResolver interface {
	Resolve(name string) (string, error)
}

// envSecretResolver reads secrets from the environment, resolving each name
// once and caching the value for the lifetime of the process.
type envSecretResolver struct {
	mu    sync.Mutex
	cache map[string]string
}

func newEnvSecretResolver() *envSecretResolver {
	return &envSecretResolver{cache: make(map[string]string)}
}

func (r *envSecretResolver) Resolve(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if value, ok := r.cache[name]; ok {
		return value, nil
	}
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("secret %s is not set", name)
	}
	r.cache[name] = value
	return value, nil
}
