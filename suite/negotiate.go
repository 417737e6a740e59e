package suite

import (
	"errors"
	"fmt"
)

// ErrNoCommonSuite is returned when no suite is both offered and acceptable.
var ErrNoCommonSuite = errors.New("suite: no suite in common")

// Negotiate picks the suite to use given the codes offered by the peer and our
// own preference order. An empty preference means every registered suite, in
// code order. Codes that are not registered are skipped on both sides.
func (r *Registry) Negotiate(offered, preference []uint16) (*Suite, error) {
	if len(preference) == 0 {
		list := r.List()
		preference = make([]uint16, 0, len(list))
		for _, s := range list {
			preference = append(preference, s.Code)
		}
	}
	set := make(map[uint16]struct{}, len(offered))
	for _, c := range offered {
		set[c] = struct{}{}
	}
	for _, c := range preference {
		if _, ok := set[c]; !ok {
			continue
		}
		s, err := r.Lookup(c)
		if errors.Is(err, ErrSuiteNotFound) {
			continue
		}
		return s, err
	}
	return nil, fmt.Errorf("%w: offered %d suites", ErrNoCommonSuite, len(offered))
}

// Negotiate runs Registry.Negotiate against the default registry.
func Negotiate(offered, preference []uint16) (*Suite, error) {
	return Default.Negotiate(offered, preference)
}
