package ptr

// Ptr возвращает указатель на значение
func Ptr[T any](v T) *T {
	return &v
}

// Deref возвращает значение указателя или zero value
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NilIfZero возвращает nil для zero value
func NilIfZero[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
