package importer

import "context"

// DuplicateChecker cross-references a candidate CPF against records already
// in the store. Placeholder CPFs are exempt: they cannot collide with real
// identifiers by construction, and batch-internal uniqueness is guaranteed
// by the placeholder counter.
type DuplicateChecker struct {
	store Store
}

func NewDuplicateChecker(store Store) *DuplicateChecker {
	return &DuplicateChecker{store: store}
}

// Check returns the ID of an existing student sharing the CPF, or "" if
// there is none. excludeID skips the record under edit in update flows.
func (c *DuplicateChecker) Check(ctx context.Context, cpf, excludeID string) (string, error) {
	if cpf == "" || IsPlaceholderCPF(cpf) {
		return "", nil
	}
	id, err := c.store.FindStudentIDByCPF(ctx, cpf)
	if err != nil {
		return "", err
	}
	if id == "" || id == excludeID {
		return "", nil
	}
	return id, nil
}
