package bt

import "errors"

// RegisterBuiltins registers the domain-free basics every config gets for
// free: trivial leaves, blackboard predicates and a pass hook. Domain
// catalogs register their own pieces on top.
func RegisterBuiltins(r *Registry) {
	r.RegisterLeaf("noop", func(Params) (LeafFunc, error) {
		return func(*Turn) Status { return StatusSuccess }, nil
	})

	r.RegisterLeaf("fail", func(Params) (LeafFunc, error) {
		return func(*Turn) Status { return StatusFailure }, nil
	})

	r.RegisterLeaf("running", func(Params) (LeafFunc, error) {
		return func(*Turn) Status { return StatusRunning }, nil
	})

	r.RegisterLeaf("set-bool", func(params Params) (LeafFunc, error) {
		key := params.String("key", "")
		if key == "" {
			return nil, errors.New("set-bool requires a 'key' param")
		}
		value := params.Bool("value", true)
		return func(t *Turn) Status {
			t.BB.Set(key, value)
			return StatusSuccess
		}, nil
	})

	r.RegisterPred("bb-true", func(params Params) (Predicate, error) {
		key := params.String("key", "")
		if key == "" {
			return nil, errors.New("bb-true requires a 'key' param")
		}
		return func(t *Turn) bool {
			v, _ := t.BB.GetBool(key)
			return v
		}, nil
	})

	r.RegisterPred("always", func(Params) (Predicate, error) {
		return func(*Turn) bool { return true }, nil
	})

	r.RegisterHook("always-succeed", func(Params) (Hook, error) {
		return succeedHook{}, nil
	})
}

// succeedHook maps any terminal child result onto Success; Running passes
// through.
type succeedHook struct {
	BaseHook
}

func (succeedHook) After(_ *Turn, raw Status) Status {
	if raw == StatusRunning {
		return StatusRunning
	}
	return StatusSuccess
}
