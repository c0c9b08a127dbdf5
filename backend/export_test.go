package backend

// Unregister removes a backend registered by a test.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registrations, name)
}
