package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/outlawshop/storefront/internal/cart"
	"github.com/outlawshop/storefront/internal/logging"
	"github.com/outlawshop/storefront/internal/models"
)

const CookieName = "sid"

const ctxKey = "session"

// State is one request's view of the browser session. The cart is the
// typed decoding of the stored payload; anything malformed resets to an
// empty cart at the boundary instead of leaking a broken blob inward.
type State struct {
	ID     string
	UserID uint
	Cart   *cart.Cart

	fresh bool
}

type payload struct {
	Cart *cart.Cart `json:"cart"`
}

// Store persists sessions in the database, keyed by the sid cookie.
type Store struct {
	DB  *gorm.DB
	TTL time.Duration
}

func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{DB: db, TTL: ttl}
}

// Middleware loads (or creates) the session before the handler runs and
// saves it afterwards. Read at request start, written at request end; the
// last write wins across overlapping requests.
func (s *Store) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		st := s.load(ctx, c)
		c.Set(ctxKey, st)

		if st.fresh {
			c.SetCookie(&http.Cookie{
				Name:     CookieName,
				Value:    st.ID,
				Path:     "/",
				Expires:  time.Now().Add(s.TTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		err := next(c)

		if uid, ok := c.Get("userID").(uint); ok {
			st.UserID = uid
		}
		if saveErr := s.Save(ctx, st); saveErr != nil {
			logging.FromContext(ctx).Error("session save failed", "error", saveErr)
		}
		return err
	}
}

func (s *Store) load(ctx context.Context, c echo.Context) *State {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		var rec models.Session
		err := s.DB.WithContext(ctx).First(&rec, "id = ?", ck.Value).Error
		switch {
		case err == nil && rec.ExpiresAt.After(time.Now()):
			return &State{ID: rec.ID, UserID: rec.UserID, Cart: decodeCart(ctx, rec.Payload)}
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			logging.FromContext(ctx).Error("session load failed", "error", err)
		}
	}
	return &State{ID: uuid.NewString(), Cart: cart.New(), fresh: true}
}

// Save upserts the session row and refreshes its expiry.
func (s *Store) Save(ctx context.Context, st *State) error {
	data, err := json.Marshal(payload{Cart: st.Cart})
	if err != nil {
		return err
	}
	rec := models.Session{
		ID:        st.ID,
		UserID:    st.UserID,
		Payload:   string(data),
		ExpiresAt: time.Now().Add(s.TTL),
	}
	return s.DB.WithContext(ctx).Save(&rec).Error
}

func decodeCart(ctx context.Context, raw string) *cart.Cart {
	if raw == "" {
		return cart.New()
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Cart == nil {
		logging.FromContext(ctx).Warn("malformed session payload, resetting cart", "error", err)
		return cart.New()
	}
	for _, it := range p.Cart.Items {
		if it.ProductID == 0 || it.Qty < 1 {
			logging.FromContext(ctx).Warn("malformed cart line, resetting cart")
			return cart.New()
		}
	}
	return p.Cart
}

// FromEcho returns the request's session state; the middleware must have run.
func FromEcho(c echo.Context) *State {
	st, _ := c.Get(ctxKey).(*State)
	return st
}
