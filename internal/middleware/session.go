package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig shapes the operator session cookie.
type SessionConfig struct {
	Secret            string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "grayco.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour

	localSessionData  = "session_data"
	localSessionID    = "session_id"
	localSessionDirty = "session_dirty"
)

// SessionUser is what a logged-in operator looks like inside the session.
type SessionUser struct {
	OperatorID string `json:"operator_id"`
	Fullname   string `json:"fullname"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

func (u SessionUser) asMap() map[string]interface{} {
	return map[string]interface{}{
		"operator_id": u.OperatorID,
		"fullname":    u.Fullname,
		"email":       u.Email,
		"role":        u.Role,
	}
}

// NewRedis parses a redis:// URL into a client.
func NewRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func signature(secret, id string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignSessionID renders the cookie value: "s:<id>.<hmac>", or "s:<id>" when secret is empty.
func SignSessionID(secret, id string) string {
	if secret == "" {
		return "s:" + id
	}
	return "s:" + id + "." + signature(secret, id)
}

// sessionIDFromCookie returns the id in a cookie value, or "" when the signature does not match.
func sessionIDFromCookie(raw, secret string) string {
	raw = strings.TrimPrefix(raw, "s:")
	id, sig, signed := strings.Cut(raw, ".")
	if secret == "" {
		return id
	}
	if !signed || !hmac.Equal([]byte(sig), []byte(signature(secret, id))) {
		return ""
	}
	return id
}

// Session loads the operator session named by the cookie into Locals and writes it back after the handler.
// Unchanged sessions only get their TTL pushed out.
func Session(rdb *redis.Client, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sessionID string
		if raw := c.Cookies(SessionCookieName); raw != "" {
			sessionID = sessionIDFromCookie(raw, secret)
			if sessionID == "" {
				log.Warn().Str("ip", c.IP()).Msg("session: bad cookie signature")
			}
		}

		data := map[string]interface{}{}
		if sessionID != "" {
			if b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes(); err == nil {
				_ = json.Unmarshal(b, &data)
			} else if err != redis.Nil {
				log.Warn().Err(err).Msg("session: load failed")
			}
		}

		c.Locals(localSessionData, data)
		c.Locals(userLocal, data["user"])
		c.Locals(localSessionID, sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		sid := GetSessionID(c)
		updated, _ := c.Locals(localSessionData).(map[string]interface{})
		if sid == "" || len(updated) == 0 {
			return nil
		}
		ctx := c.UserContext()
		if dirty, _ := c.Locals(localSessionDirty).(bool); dirty {
			b, _ := json.Marshal(updated)
			if err := rdb.Set(ctx, SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
				log.Warn().Err(err).Msg("session: save failed")
			}
			return nil
		}
		if err := rdb.Expire(ctx, SessionRedisPrefix+sid, sessionMaxAge).Err(); err != nil {
			log.Warn().Err(err).Msg("session: refresh failed")
		}
		return nil
	}
}

// GetSessionID returns the session id in play for this request ("" when anonymous).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localSessionID).(string)
	return sid
}

// SetSessionUser stores user in the session. Call RegenerateSessionID first so a login never reuses a pre-auth id.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals(localSessionData).(map[string]interface{})
	if data == nil {
		data = map[string]interface{}{}
	}
	data["user"] = user.asMap()
	c.Locals(localSessionData, data)
	c.Locals(localSessionDirty, true)
	c.Locals(userLocal, data["user"])
}

func RegenerateSessionID(c *fiber.Ctx) string {
	id := uuid.NewString()
	c.Locals(localSessionID, id)
	return id
}

// DestroySession empties the request's session. The caller clears the cookie and the Redis key.
func DestroySession(c *fiber.Ctx) {
	c.Locals(localSessionData, map[string]interface{}{})
	c.Locals(userLocal, nil)
}

// SessionCookieConfig returns the cookie attributes; callers fill in Value.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	cookie := fiber.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if cfg.AllowCrossSiteDev {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
		cookie.Secure = true
	}
	return cookie
}
