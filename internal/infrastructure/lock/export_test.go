package lock

// Entries número de claves con lock tomado o en espera.
func (l *Local) Entries() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
