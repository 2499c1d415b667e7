package auth

// WithPINCompare replaces the bcrypt comparison so tests can observe it.
func WithPINCompare(compare func(hash, pin []byte) error) ServiceOption {
	return func(s *Service) {
		s.compare = compare
	}
}
