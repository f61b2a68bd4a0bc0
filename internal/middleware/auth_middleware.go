package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/crimi5361/IIPEA-BACKEND/models"
)

const userCacheTTL = 10 * time.Minute

// CachedUserData holds everything the request pipeline needs to know about
// the authenticated user.
type CachedUserData struct {
	UserID      uint     `json:"user_id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Auth authenticates requests and resolves the user's permissions. RDB may
// be nil, in which case every request hits the database.
type Auth struct {
	DB     *gorm.DB
	RDB    *redis.Client
	JWTKey []byte
}

func NewAuth(db *gorm.DB, rdb *redis.Client, jwtKey []byte) *Auth {
	return &Auth{DB: db, RDB: rdb, JWTKey: jwtKey}
}

// Handler validates the bearer token and loads the user's roles and
// permissions into the request context, from Redis when cached.
func (a *Auth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				abortUnauthorized(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				abortUnauthorized(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.JWTKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			abortUnauthorized(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		if userData := a.fromCache(c, userID); userData != nil {
			setContextAndProceed(c, userData)
			return
		}

		userData, err := a.fromDatabase(userID)
		if err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "User from token not found")
			return
		}
		a.toCache(c, userData)
		setContextAndProceed(c, userData)
	}
}

func (a *Auth) fromCache(c *gin.Context, userID uint) *CachedUserData {
	if a.RDB == nil {
		return nil
	}
	cached, err := a.RDB.Get(c.Request.Context(), cacheKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Error("Redis GET failed", "error", err, "user_id", userID)
		}
		return nil
	}
	var userData CachedUserData
	if err := json.Unmarshal([]byte(cached), &userData); err != nil {
		slog.Warn("Failed to unmarshal cached user data", "user_id", userID)
		return nil
	}
	return &userData
}

func (a *Auth) fromDatabase(userID uint) (*CachedUserData, error) {
	var user models.User
	if err := a.DB.Preload("Roles").First(&user, userID).Error; err != nil {
		return nil, err
	}

	roleNames := make([]string, 0, len(user.Roles))
	isAdmin := false
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
		if role.Name == "admin" {
			isAdmin = true
		}
	}

	permissions, err := models.UserPermissions(a.DB, userID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		permissions = append(permissions, "admin")
	}

	return &CachedUserData{
		UserID:      user.ID,
		Email:       user.Email,
		Roles:       roleNames,
		Permissions: permissions,
	}, nil
}

func (a *Auth) toCache(c *gin.Context, userData *CachedUserData) {
	if a.RDB == nil {
		return
	}
	jsonData, err := json.Marshal(userData)
	if err != nil {
		slog.Error("Failed to marshal user data for caching", "error", err, "user_id", userData.UserID)
		return
	}
	if err := a.RDB.Set(c.Request.Context(), cacheKey(userData.UserID), jsonData, userCacheTTL).Err(); err != nil {
		slog.Error("Failed to cache user data", "error", err, "user_id", userData.UserID)
	}
}

func cacheKey(userID uint) string {
	return fmt.Sprintf("user:%d:data", userID)
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("email", userData.Email)
	c.Set("roles", userData.Roles)
	c.Set("permissions", userData.Permissions)
	c.Next()
}

// RequirePermission gates a route on one permission name. The admin role
// passes every gate.
func RequirePermission(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if roles, exists := c.Get("roles"); exists {
			if userRoles, ok := roles.([]string); ok {
				for _, roleName := range userRoles {
					if roleName == "admin" {
						c.Next()
						return
					}
				}
			}
		}

		permissions, exists := c.Get("permissions")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Permissions not found in context"})
			c.Abort()
			return
		}
		userPermissions, ok := permissions.([]string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Internal permission format error"})
			c.Abort()
			return
		}
		for _, name := range userPermissions {
			if name == required {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
