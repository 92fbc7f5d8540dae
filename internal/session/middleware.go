package session

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

const (
	// CookieName is the browser session cookie.
	CookieName = "tiemao_sid"

	contextKey = "browser_session"
)

// State is the per-request session handle attached to the gin context.
// Handlers mutate Data and call Save to persist it.
type State struct {
	Token string
	Data  model.SessionData

	store *Store
	fresh bool
}

// Save writes the current data back to the store.
func (st *State) Save() error {
	return st.store.Save(st.Token, st.Data)
}

// Destroy drops the server-side session row.
func (st *State) Destroy() error {
	return st.store.Delete(st.Token)
}

// Middleware loads or creates the browser session for every request and sets
// the session cookie on fresh sessions.
func Middleware(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		fresh := err != nil || token == ""
		if fresh {
			token = NewToken()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CookieName, token, int(TTL.Seconds()), "/", "", false, true)
		}

		data, err := store.Load(token)
		if err != nil {
			logger.Error("Failed to load session", err, map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			data = model.SessionData{Cart: model.Cart{}}
		}

		c.Set(contextKey, &State{
			Token: token,
			Data:  data,
			store: store,
			fresh: fresh,
		})

		c.Next()
	}
}

// Get returns the request's session state. It panics if the middleware is
// not installed, which is a wiring bug.
func Get(c *gin.Context) *State {
	v, ok := c.Get(contextKey)
	if !ok {
		panic("session middleware not installed")
	}
	return v.(*State)
}
