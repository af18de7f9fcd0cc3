// Package views holds the page-level view models rendered by the HTTP handlers.
package views

import (
	"context"
	"sync"

	"chessgame/internal/models"
)

const (
	RegisterPath      = "/auth/register"
	ResetPasswordPath = "/auth/reset-password"

	ColorError = "red"
)

// AuthService is the authentication capability the login view delegates to.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) error
	SignInWithGoogle(ctx context.Context) error
}

// Navigator performs a client-side route transition.
type Navigator interface {
	Navigate(path string)
}

// Notifier displays a transient notification outside the form.
type Notifier interface {
	Show(n Notification)
}

// Notification is a transient message with a display color.
type Notification struct {
	Message string
	Color   string
}

// LoginView owns the state of a single login form for the lifetime of one mount.
type LoginView struct {
	auth     AuthService
	nav      Navigator
	notifier Notifier

	mu          sync.Mutex
	mounted     bool
	loading     bool
	creds       models.Credentials
	fieldErrors FieldErrors
	touched     map[string]bool
	cancel      context.CancelFunc
}

// NewLoginView returns a mounted view with empty credentials.
func NewLoginView(auth AuthService, nav Navigator, notifier Notifier) *LoginView {
	return &LoginView{
		auth:        auth,
		nav:         nav,
		notifier:    notifier,
		mounted:     true,
		fieldErrors: FieldErrors{},
		touched:     make(map[string]bool),
	}
}

// SetEmail updates the email and revalidates the fields edited so far.
func (v *LoginView) SetEmail(email string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.creds.Email = email
	v.touched[FieldEmail] = true
	v.revalidateLocked()
}

// SetPassword updates the password and revalidates the fields edited so far.
func (v *LoginView) SetPassword(password string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.creds.Password = password
	v.touched[FieldPassword] = true
	v.revalidateLocked()
}

// revalidateLocked keeps errors only for fields the user has already edited.
func (v *LoginView) revalidateLocked() {
	all := ValidateCredentials(v.creds)
	v.fieldErrors = FieldErrors{}
	for field, msg := range all {
		if v.touched[field] {
			v.fieldErrors[field] = msg
		}
	}
}

// Validate runs the full rule set against the current credentials without changing state.
func (v *LoginView) Validate() FieldErrors {
	v.mu.Lock()
	creds := v.creds
	v.mu.Unlock()
	return ValidateCredentials(creds)
}

// Loading reports whether a login call is in flight.
func (v *LoginView) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Credentials returns the current form values.
func (v *LoginView) Credentials() models.Credentials {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.creds
}

// FieldErrors returns a copy of the current per-field messages.
func (v *LoginView) FieldErrors() FieldErrors {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(FieldErrors, len(v.fieldErrors))
	for k, msg := range v.fieldErrors {
		out[k] = msg
	}
	return out
}

// Submit validates the form and, when valid, performs exactly one login call.
// It reports whether the login call was made. A submission while another is
// in flight, or after Unmount, is ignored.
func (v *LoginView) Submit(ctx context.Context) bool {
	v.mu.Lock()
	if !v.mounted || v.loading {
		v.mu.Unlock()
		return false
	}
	v.touched[FieldEmail] = true
	v.touched[FieldPassword] = true
	v.fieldErrors = ValidateCredentials(v.creds)
	if !v.fieldErrors.Valid() {
		v.mu.Unlock()
		return false
	}

	creds := v.creds
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.loading = true
	v.mu.Unlock()

	defer v.finishSubmit(cancel)

	if err := v.auth.Login(ctx, creds); err != nil {
		v.notify(Notification{Message: errorMessage(err), Color: ColorError})
	}
	return true
}

func (v *LoginView) finishSubmit(cancel context.CancelFunc) {
	v.mu.Lock()
	v.loading = false
	v.cancel = nil
	v.mu.Unlock()
	cancel()
}

// notify drops the notification once the view is unmounted.
func (v *LoginView) notify(n Notification) {
	v.mu.Lock()
	mounted := v.mounted
	v.mu.Unlock()
	if mounted {
		v.notifier.Show(n)
	}
}

func errorMessage(err error) (msg string) {
	defer func() {
		// a typed nil error panics in Error()
		if recover() != nil {
			msg = ""
		}
	}()
	return err.Error()
}

// GoToRegister navigates to the registration page regardless of form validity.
func (v *LoginView) GoToRegister() { v.nav.Navigate(RegisterPath) }

// GoToResetPassword navigates to the password reset page regardless of form validity.
func (v *LoginView) GoToResetPassword() { v.nav.Navigate(ResetPasswordPath) }

// SignInWithGoogle starts the federated sign-in flow. Errors are returned to the caller untouched.
func (v *LoginView) SignInWithGoogle(ctx context.Context) error {
	return v.auth.SignInWithGoogle(ctx)
}

// Unmount detaches the view. An in-flight submission is cancelled and its
// completion no longer notifies.
func (v *LoginView) Unmount() {
	v.mu.Lock()
	v.mounted = false
	cancel := v.cancel
	v.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Mounted reports whether Unmount has not been called yet.
func (v *LoginView) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}
