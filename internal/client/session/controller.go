// Package session tracks who is signed in on this client. The signed-in
// profile is persisted under StorageKey and restored by Init.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"moviehub/internal/client/api"
	"moviehub/internal/client/storage"
	"moviehub/internal/core/domain"
	"moviehub/pkg/utils"

	"go.uber.org/zap"
)

const StorageKey = "moviehubUser"

const (
	formErrorTTL = 5 * time.Second
	noticeTTL    = 3 * time.Second

	msgLoginOK      = "Login successful!"
	msgSignupOK     = "Account created successfully!"
	msgLoginFailed  = "Login failed"
	msgSignupFailed = "Signup failed"
	msgLoginRetry   = "Login failed. Please try again."
	msgSignupRetry  = "Signup failed. Please try again."
	navActionLogout = "Logout"
	navActionSignIn = "Sign In"
	navGreetingFmt  = "Welcome, %s!"
)

type Form string

const (
	FormLogin  Form = "login"
	FormSignup Form = "signup"
)

type Modal string

const (
	ModalNone   Modal = ""
	ModalLogin  Modal = "login"
	ModalSignup Modal = "signup"
)

// AccountClient is the part of the server API the controller needs.
type AccountClient interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Signup(ctx context.Context, name, email, password string) (*api.AuthResponse, error)
}

// Nav is what the navigation area shows.
type Nav struct {
	Authenticated bool
	Greeting      string
	Action        string
}

type timedMessage struct {
	text    string
	expires time.Time
}

type Controller struct {
	accounts AccountClient
	store    storage.Storage
	logger   *zap.Logger
	now      func() time.Time

	mu         sync.Mutex
	user       *domain.Profile
	modal      Modal
	formErrors map[Form]timedMessage
	notice     timedMessage
}

func NewController(accounts AccountClient, store storage.Storage, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		accounts:   accounts,
		store:      store,
		logger:     logger,
		now:        utils.Now,
		formErrors: make(map[Form]timedMessage),
	}
}

// Init restores the session from storage. An entry that does not decode
// to a profile is removed and the controller stays anonymous.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restoreLocked()
}

func (c *Controller) restoreLocked() error {
	c.user = nil

	raw, ok, err := c.store.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return nil
	}

	var profile *domain.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil || profile == nil {
		c.logger.Warn("discarding unreadable session entry", zap.Error(err))
		if err := c.store.Remove(StorageKey); err != nil {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}

	c.user = profile
	return nil
}

// Reload drops all in-memory state and rebuilds it from storage.
func (c *Controller) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modal = ModalNone
	c.formErrors = make(map[Form]timedMessage)
	c.notice = timedMessage{}
	return c.restoreLocked()
}

// User returns the signed-in profile, if any.
func (c *Controller) User() (domain.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return domain.Profile{}, false
	}
	return *c.user, true
}

func (c *Controller) Nav() Nav {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return Nav{Action: navActionSignIn}
	}
	return Nav{
		Authenticated: true,
		Greeting:      fmt.Sprintf(navGreetingFmt, c.user.Name),
		Action:        navActionLogout,
	}
}

var navTemplate = template.Must(template.New("nav").Parse(
	`<nav class="nav-auth">{{if .Authenticated}}<span class="welcome">{{.Greeting}}</span> <button id="logout-btn">{{.Action}}</button>{{else}}<button id="signin-btn">{{.Action}}</button>{{end}}</nav>
`))

// RenderNav writes the navigation markup for the current state.
func (c *Controller) RenderNav(w io.Writer) error {
	return navTemplate.Execute(w, c.Nav())
}

// Logout forgets the session and reloads.
func (c *Controller) Logout() error {
	c.mu.Lock()
	c.user = nil
	err := c.store.Remove(StorageKey)
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return c.Reload()
}

// Login submits credentials. The boolean reports whether the server
// accepted them; the error is only set when the session could not be
// persisted. Failures are surfaced through FormError(FormLogin).
func (c *Controller) Login(ctx context.Context, email, password string) (bool, error) {
	resp, err := c.accounts.Login(ctx, email, password)
	return c.complete(FormLogin, ModalLogin, resp, err)
}

// Signup creates an account and signs it in on success.
func (c *Controller) Signup(ctx context.Context, name, email, password string) (bool, error) {
	resp, err := c.accounts.Signup(ctx, name, email, password)
	return c.complete(FormSignup, ModalSignup, resp, err)
}

func (c *Controller) complete(form Form, modal Modal, resp *api.AuthResponse, callErr error) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if callErr != nil {
		c.logger.Warn("account request failed", zap.String("form", string(form)), zap.Error(callErr))
		c.setFormErrorLocked(form, retryMessage(form))
		return false, nil
	}

	if !resp.Success || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = defaultFailure(form)
		}
		c.setFormErrorLocked(form, msg)
		return false, nil
	}

	raw, err := json.Marshal(resp.User)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}
	if err := c.store.Set(StorageKey, string(raw)); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	user := *resp.User
	c.user = &user
	delete(c.formErrors, form)
	if c.modal == modal {
		c.modal = ModalNone
	}
	c.notice = timedMessage{text: successNotice(form), expires: c.now().Add(noticeTTL)}

	c.logger.Info("signed in", zap.String("form", string(form)), zap.String("user_id", string(user.ID)))
	return true, nil
}

func (c *Controller) setFormErrorLocked(form Form, msg string) {
	c.formErrors[form] = timedMessage{text: msg, expires: c.now().Add(formErrorTTL)}
}

// FormError returns the current error for form, or "" once it expired.
func (c *Controller) FormError(form Form) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.formErrors[form]
	if !ok {
		return ""
	}
	if !c.now().Before(m.expires) {
		delete(c.formErrors, form)
		return ""
	}
	return m.text
}

// Notice returns the transient success message, or "" once it expired.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.notice.text == "" || !c.now().Before(c.notice.expires) {
		c.notice = timedMessage{}
		return ""
	}
	return c.notice.text
}

func (c *Controller) Modal() Modal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modal
}

func (c *Controller) OpenLogin() { c.setModal(ModalLogin) }
func (c *Controller) OpenSignup() { c.setModal(ModalSignup) }

func (c *Controller) SwitchToSignup() { c.setModal(ModalSignup) }
func (c *Controller) SwitchToLogin() { c.setModal(ModalLogin) }

func (c *Controller) CloseModals() { c.setModal(ModalNone) }

func (c *Controller) setModal(m Modal) {
	c.mu.Lock()
	c.modal = m
	c.mu.Unlock()
}

func defaultFailure(form Form) string {
	if form == FormSignup {
		return msgSignupFailed
	}
	return msgLoginFailed
}

func retryMessage(form Form) string {
	if form == FormSignup {
		return msgSignupRetry
	}
	return msgLoginRetry
}

func successNotice(form Form) string {
	if form == FormSignup {
		return msgSignupOK
	}
	return msgLoginOK
}
