package pushagent

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"sync"

	"habitflow-backend/internal/push/domain"
)

// User-facing messages
const (
	MsgPermissionDenied = "Permissão negada. Você pode habilitar nas configurações do navegador."
	MsgUnsupported      = "Push notifications não são suportadas neste navegador"
	MsgNotGranted       = "Permissão para notificações não foi concedida"
)

const (
	testNotificationTitle = "🎉 Teste de Notificação"
	testNotificationBody  = "Parabéns! As notificações estão funcionando corretamente no HabitFlow!"
	testNotificationTag   = "test-notification"
)

type Option func(*Agent)

// WithVAPIDPublicKey pins the application server key so the backend is not asked for it
func WithVAPIDPublicKey(key string) Option {
	return func(a *Agent) {
		a.vapidKey = key
	}
}

// Agent drives one device's subscription lifecycle. Subscribe, Unsubscribe
// and RequestPermission do not overlap: a call made while another is running
// fails with ErrBusy.
type Agent struct {
	platform Platform
	backend  Backend
	vapidKey string

	mu       sync.Mutex
	state    State
	watchers map[int]chan State
	nextID   int
}

// New creates an agent and checks platform support once
func New(ctx context.Context, platform Platform, backend Backend, opts ...Option) *Agent {
	a := &Agent{
		platform: platform,
		backend:  backend,
		watchers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.checkSupport(ctx)
	return a
}

func (a *Agent) checkSupport(ctx context.Context) {
	st := State{
		Checked:      true,
		IsIOS:        a.platform.IsIOS(),
		IsStandalone: a.platform.IsStandalone(),
		Supported:    a.platform.Supported(),
	}

	if st.Supported {
		st.Permission = a.platform.Permission()
		if st.Permission == PermissionGranted {
			sub, err := a.platform.GetSubscription(ctx)
			if err != nil {
				log.Printf("[Agent] Failed to read existing subscription: %v", err)
			} else {
				st.Subscription = sub
			}
		}
	}

	a.mu.Lock()
	a.state = st
	a.notifyLocked()
	a.mu.Unlock()
}

// State returns a snapshot of the current state
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.clone()
}

// Watch streams a snapshot after every state change. The channel keeps only
// the most recent snapshots; call cancel to stop watching.
func (a *Agent) Watch() (<-chan State, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan State, 8)
	a.watchers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.watchers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (a *Agent) notifyLocked() {
	snapshot := a.state.clone()
	for _, ch := range a.watchers {
		select {
		case ch <- snapshot:
		default:
			// Drop the oldest snapshot so the latest one always lands
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// begin marks the agent busy and clears the previous error
func (a *Agent) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state.IsLoading {
		return ErrBusy
	}
	a.state.IsLoading = true
	a.state.Error = ""
	a.notifyLocked()
	return nil
}

// end applies update and clears the busy flag
func (a *Agent) end(update func(s *State)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if update != nil {
		update(&a.state)
	}
	a.state.IsLoading = false
	a.notifyLocked()
}

func (a *Agent) fail(err error) error {
	a.end(func(s *State) { s.Error = err.Error() })
	return err
}

func (a *Agent) supported() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Supported
}

// RequestPermission asks the user for notification permission. A denial is
// not an error; it is reported in State.Error.
func (a *Agent) RequestPermission(ctx context.Context) (Permission, error) {
	if !a.supported() {
		return "", ErrUnsupported
	}
	if err := a.begin(); err != nil {
		return "", err
	}

	perm, err := a.platform.RequestPermission(ctx)
	if err != nil {
		return "", a.fail(fmt.Errorf("request permission: %w", err))
	}

	a.end(func(s *State) {
		s.Permission = perm
		if perm == PermissionDenied {
			s.Error = MsgPermissionDenied
		}
	})
	return perm, nil
}

// Subscribe makes sure the device has a subscription and the backend knows it.
// It returns nil, nil when the user denies permission.
func (a *Agent) Subscribe(ctx context.Context) (*domain.Subscription, error) {
	if !a.supported() {
		return nil, ErrUnsupported
	}
	if err := a.begin(); err != nil {
		return nil, err
	}

	key := a.vapidKey
	if key == "" {
		fetched, err := a.backend.VAPIDPublicKey(ctx)
		if err != nil {
			log.Printf("[Agent] Failed to fetch VAPID public key: %v", err)
		}
		key = fetched
	}
	if key == "" {
		return nil, a.fail(ErrConfiguration)
	}

	a.mu.Lock()
	perm := a.state.Permission
	a.mu.Unlock()

	if perm != PermissionGranted {
		granted, err := a.platform.RequestPermission(ctx)
		if err != nil {
			return nil, a.fail(fmt.Errorf("request permission: %w", err))
		}
		if granted != PermissionGranted {
			a.end(func(s *State) {
				s.Permission = granted
				if granted == PermissionDenied {
					s.Error = MsgPermissionDenied
				}
			})
			return nil, nil
		}
		a.mu.Lock()
		a.state.Permission = granted
		a.notifyLocked()
		a.mu.Unlock()
	}

	sub, err := a.platform.GetSubscription(ctx)
	if err != nil {
		return nil, a.fail(fmt.Errorf("get subscription: %w", err))
	}

	if sub == nil {
		appServerKey, err := decodeKey(key)
		if err != nil {
			return nil, a.fail(fmt.Errorf("%w: %v", ErrConfiguration, err))
		}
		sub, err = a.platform.Subscribe(ctx, appServerKey)
		if err != nil {
			return nil, a.fail(fmt.Errorf("create subscription: %w", err))
		}
		log.Printf("[Agent] New subscription created: %s", domain.EndpointPrefix(sub.Endpoint, 50))
	}

	if _, err := a.backend.Subscribe(ctx, sub); err != nil {
		return nil, a.fail(&NetworkError{Op: "register subscription", Err: err})
	}
	log.Printf("[Agent] Subscription registered with backend")

	a.end(func(s *State) {
		s.Subscription = sub
		s.Error = ""
	})

	out := *sub
	return &out, nil
}

// Unsubscribe cancels the device subscription and tells the backend. With no
// active subscription it succeeds without touching the network.
func (a *Agent) Unsubscribe(ctx context.Context) (bool, error) {
	a.mu.Lock()
	sub := a.state.Subscription
	a.mu.Unlock()
	if sub == nil {
		return true, nil
	}

	if err := a.begin(); err != nil {
		return false, err
	}

	if err := a.platform.CancelSubscription(ctx, sub); err != nil {
		return false, a.fail(fmt.Errorf("cancel subscription: %w", err))
	}

	if _, err := a.backend.Unsubscribe(ctx, sub.Endpoint); err != nil {
		// best effort
		log.Printf("[Agent] Failed to notify backend about unsubscribe: %v", err)
	}

	a.end(func(s *State) { s.Subscription = nil })
	log.Printf("[Agent] Subscription cancelled")
	return true, nil
}

// SendTestNotification shows a local notification without going through the
// backend. When that is not possible it returns the message to show the user.
func (a *Agent) SendTestNotification() (string, error) {
	a.mu.Lock()
	supported, perm := a.state.Supported, a.state.Permission
	a.mu.Unlock()

	if !supported {
		return MsgUnsupported, nil
	}
	if perm != PermissionGranted {
		return MsgNotGranted, nil
	}

	err := a.platform.ShowNotification(testNotificationTitle, NotificationOptions{
		Body:    testNotificationBody,
		Icon:    domain.DefaultIcon,
		Badge:   domain.DefaultBadge,
		Tag:     testNotificationTag,
		Vibrate: append([]int(nil), domain.DefaultVibrate...),
	})
	if err != nil {
		return "", fmt.Errorf("show notification: %w", err)
	}
	return "", nil
}

// decodeKey accepts base64url with or without padding
func decodeKey(key string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(key, "="))
}
