package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/pkg/jwt"
)

// Locals keys para la identidad verificada en Fiber.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID, Email y Role en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, code, msg := bearerToken(c)
		if code != "" {
			return fail(c, fiber.StatusUnauthorized, code, msg)
		}
		claims, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, CodeInvalidToken, "token inválido o expirado")
		}
		setIdentity(c, claims)
		return c.Next()
	}
}

// OptionalAuth para endpoints públicos: nunca rechaza. Si hay un token válido carga la identidad;
// un token ausente o inválido deja la request como anónima.
func OptionalAuth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, code, _ := bearerToken(c)
		if code == "" {
			if claims, err := jwt.Parse(jwtSecret, token); err == nil {
				setIdentity(c, claims)
			}
		}
		return c.Next()
	}
}

// bearerToken extrae el token. code vacío = ok.
func bearerToken(c *fiber.Ctx) (token, code, msg string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", CodeMissingToken, "Authorization header requerido"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", CodeInvalidToken, "formato: Bearer <token>"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", CodeMissingToken, "token vacío"
	}
	return token, "", ""
}

func setIdentity(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalEmail, claims.Email)
	c.Locals(LocalRole, claims.Role)
}

// RequireRole autoriza por rol usando solo los claims ya verificados (no consulta el store).
// Debe ir después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return fail(c, fiber.StatusUnauthorized, CodeMissingRole, "el token no incluye rol")
		}
		if _, ok := allowed[role]; !ok {
			return fail(c, fiber.StatusForbidden, CodeForbidden, "no tiene permisos para este recurso")
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string { return local(c, LocalUserID) }

// GetEmail devuelve el email del token.
func GetEmail(c *fiber.Ctx) string { return local(c, LocalEmail) }

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string { return local(c, LocalRole) }

// IsAdmin indica si la identidad verificada es admin.
func IsAdmin(c *fiber.Ctx) bool { return GetRole(c) == entity.RoleAdmin }

func local(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
