// Package session is the client-side credential store. The credential lives
// in a JSON file (the persistent channel), is attached to requests as a
// bearer header and mirrored into a cookie jar for the API origin.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/quillpress/blog-system/internal/core/domain"
	"github.com/quillpress/blog-system/internal/core/token"
)

// Session is what the client knows about the signed-in identity. Role and
// UserID are read from the credential without verification; they drive UX
// decisions only.
type Session struct {
	Token     string      `json:"token"`
	UserID    string      `json:"userId"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Authorize attaches the credential as a bearer header.
func (s *Session) Authorize(req *http.Request) {
	if s == nil || s.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
}

// Expired reports whether the credential is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// Listener receives the new session, or nil when it was cleared.
type Listener func(*Session)

// Store persists the session in a file. Every Load reads the file again.
type Store struct {
	path string
	base *url.URL
	jar  *cookiejar.Jar
	log  zerolog.Logger

	mu     sync.Mutex
	subs   map[int]Listener
	nextID int
	last   string
}

// NewStore keeps the session at path and mirrors it as a cookie for apiURL.
func NewStore(path, apiURL string, log zerolog.Logger) (*Store, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("session: api url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, base: base, jar: jar, log: log, subs: map[int]Listener{}}, nil
}

// Path is the session file location.
func (s *Store) Path() string { return s.path }

// Jar is the cookie channel to hand to an http.Client.
func (s *Store) Jar() http.CookieJar { return s.jar }

// Save stores raw and the identity it names, then notifies subscribers.
func (s *Store) Save(raw string) (*Session, error) {
	claims, err := token.Peek(raw)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	sess := &Session{Token: raw, UserID: claims.UserID(), Role: claims.Role, ExpiresAt: claims.Expiry()}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeFile(s.path, data); err != nil {
		return nil, fmt.Errorf("session: write: %w", err)
	}
	s.mirror(sess)
	s.notify(sess)
	return sess, nil
}

// Load returns the stored session, or nil when none is stored.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	s.mirror(&sess)
	return &sess, nil
}

// Clear removes the stored session and expires the cookie.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove: %w", err)
	}
	s.mirror(nil)
	s.notify(nil)
	return nil
}

// Subscribe registers fn for session changes. The returned func unsubscribes.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Watch delivers changes that other processes make to the session file. It
// returns once the watch is established; watching stops when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("session: watcher: %w", err)
	}
	// The directory is watched because Save replaces the file by rename.
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("session: watch %s: %w", dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				sess, err := s.Load()
				if err != nil {
					s.log.Warn().Err(err).Msg("session changed but could not be read")
					continue
				}
				s.notify(sess)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(err).Msg("session watch error")
			}
		}
	}()
	return nil
}

// notify delivers sess to subscribers when it differs from the last delivery.
func (s *Store) notify(sess *Session) {
	key := ""
	if sess != nil {
		key = sess.Token
	}

	s.mu.Lock()
	if key == s.last {
		s.mu.Unlock()
		return
	}
	s.last = key
	subs := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
}

func (s *Store) mirror(sess *Session) {
	c := &http.Cookie{Name: token.CookieName, Path: "/", MaxAge: -1}
	if sess != nil {
		c = &http.Cookie{Name: token.CookieName, Value: sess.Token, Path: "/", Expires: sess.ExpiresAt}
	}
	s.jar.SetCookies(s.base, []*http.Cookie{c})
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
