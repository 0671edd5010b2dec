package store

// Status returns the global request status.
func (s *Store) Status() RequestStatus {
	var status RequestStatus
	s.read(func(state State) { status = state.App.Status })
	return status
}

// Err returns the last user-facing error message, if any.
func (s *Store) Err() (string, bool) {
	var (
		message string
		ok      bool
	)
	s.read(func(state State) {
		if state.App.Error != nil {
			message, ok = *state.App.Error, true
		}
	})
	return message, ok
}

// IsInitialized reports whether the initial load has finished.
func (s *Store) IsInitialized() bool {
	var initialized bool
	s.read(func(state State) { initialized = state.App.IsInitialized })
	return initialized
}

// SetStatus sets the global request status.
func (s *Store) SetStatus(status RequestStatus) error {
	return s.Dispatch(SetAppStatus{Status: status})
}

// SetError sets the last error message; nil clears it.
func (s *Store) SetError(message *string) error {
	return s.Dispatch(SetAppError{Error: message})
}

// ResetStatus returns the tracker to idle and clears the error message.
func (s *Store) ResetStatus() error {
	return s.Dispatch(SetAppError{Error: nil}, SetAppStatus{Status: StatusIdle})
}

func (s *Store) setLoading() {
	if err := s.SetStatus(StatusLoading); err != nil {
		s.logger.WithError(err).Error("set loading status")
	}
}
