package devo

import (
	"fmt"

	"holyverses/internal/model"
)

// SignIn stores (or refreshes) the user record and makes it the single
// signed-in user, signing out anyone else. When the record carries no ID
// from an external identity, a fresh local one is minted.
func (s *DevoService) SignIn(user *model.User) error {
	if user.ID == "" {
		user.ID = s.idgen.New()
	}

	user.SignedIn = true
	if err := s.database.UpsertUser(user); err != nil {
		return fmt.Errorf("storing user: %w", err)
	}
	if _, err := s.database.SignInUser(user.ID); err != nil {
		return fmt.Errorf("signing in user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in", "user", user.ID, "email", user.Email)
	return nil
}

// SignOut clears the signed-in flag on every stored user.
func (s *DevoService) SignOut() error {
	if err := s.database.SignOutAllUsers(); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	s.logger.Info("user signed out")
	return nil
}

// CurrentUser returns the signed-in user, or nil when nobody is signed in.
func (s *DevoService) CurrentUser() (*model.User, error) {
	return s.database.CurrentUser()
}

// DeleteUser removes a stored user record entirely.
func (s *DevoService) DeleteUser(id string) error {
	return s.database.DeleteUser(id)
}
