package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func String(v string) *string { return &v }

func Float64(v float64) *float64 { return &v }

// Deref returns *p, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
