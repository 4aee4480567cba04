package memory

import "sync"

// TransactionRepo keeps the reference→actor correlation table and the set
// of already-finalized references. Both live only for the process lifetime.
type TransactionRepo struct {
	mu        sync.RWMutex
	owners    map[string]int64
	processed map[string]struct{}
}

// NewTransactionRepo creates an empty in-memory transaction log.
func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{
		owners:    make(map[string]int64),
		processed: make(map[string]struct{}),
	}
}

// Record remembers which actor owns a freshly minted reference.
func (r *TransactionRepo) Record(ref string, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[ref] = userID
}

// Resolve returns the actor that owns the reference, if known.
func (r *TransactionRepo) Resolve(ref string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.owners[ref]
	return id, ok
}

// IsProcessed reports whether the reference has already been finalized.
func (r *TransactionRepo) IsProcessed(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.processed[ref]
	return ok
}

// MarkProcessed adds the reference to the processed set. Returns false if
// the reference was already processed, so callers can enforce exactly-once
// finalization under duplicate or replayed callbacks.
func (r *TransactionRepo) MarkProcessed(ref string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.processed[ref]; ok {
		return false
	}
	r.processed[ref] = struct{}{}
	return true
}
