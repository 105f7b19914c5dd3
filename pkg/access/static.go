package access

import "context"

// StaticChecker allows a fixed set of ids. It backs offline validation and
// tests.
type StaticChecker struct {
	allowed map[string]struct{}
}

// NewStaticChecker returns a checker that allows exactly the given ids.
func NewStaticChecker(ids ...string) *StaticChecker {
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}

	return &StaticChecker{allowed: allowed}
}

func (s *StaticChecker) Check(_ context.Context, id string) (bool, error) {
	_, ok := s.allowed[id]

	return ok, nil
}
