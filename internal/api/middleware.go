/**
 * @description
 * Bearer-token authentication middleware. Every entitlement and payment
 * endpoint requires a valid RS256 JWT issued by the auth provider; the token
 * is validated against the provider's JWKS endpoint and the `sub` claim
 * becomes the user id for the request.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Token parsing and validation.
 */
package api

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// userIDContextKey is a custom type for the context key to avoid collisions.
type userIDContextKey string

const authUserIDKey userIDContextKey = "authUserID"

// jwksCache caches fetched signing keys so every request does not hit the
// JWKS endpoint. Keys rotate rarely; a short TTL keeps rotation working.
type jwksCache struct {
	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

var keyCache = &jwksCache{keys: make(map[string]*rsa.PublicKey)}

const jwksCacheTTL = 15 * time.Minute

// AuthMiddleware creates a middleware that validates bearer JWTs against the
// given JWKS endpoint and injects the authenticated user id into the context.
func AuthMiddleware(jwksURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				respondWithError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				kid, ok := token.Header["kid"].(string)
				if !ok {
					return nil, fmt.Errorf("kid not found in token header")
				}
				return signingKey(jwksURL, kid)
			})
			if err != nil || !token.Valid {
				respondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			// Optional audience / issuer enforcement via env.
			if expectedAud := os.Getenv("AUTH_AUDIENCE"); expectedAud != "" {
				if aud, ok := claims["aud"].(string); !ok || aud != expectedAud {
					respondWithError(w, http.StatusUnauthorized, "Invalid audience")
					return
				}
			}
			if expectedIss := os.Getenv("AUTH_ISSUER"); expectedIss != "" {
				if iss, ok := claims["iss"].(string); !ok || iss != expectedIss {
					respondWithError(w, http.StatusUnauthorized, "Invalid issuer")
					return
				}
			}

			userID, ok := claims["sub"].(string)
			if !ok || userID == "" {
				respondWithError(w, http.StatusUnauthorized, "User ID not found in token")
				return
			}

			ctx := context.WithValue(r.Context(), authUserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user id from the request
// context. Handlers use this to get the caller's identity.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(authUserIDKey).(string)
	return userID, ok
}

// signingKey returns the RSA public key for kid, fetching the JWKS document
// when the cache is cold or stale.
func signingKey(jwksURL, kid string) (*rsa.PublicKey, error) {
	keyCache.mu.RLock()
	key, hit := keyCache.keys[kid]
	fresh := time.Since(keyCache.fetchedAt) < jwksCacheTTL
	keyCache.mu.RUnlock()
	if hit && fresh {
		return key, nil
	}

	keys, err := fetchJWKS(jwksURL)
	if err != nil {
		// Serve a stale cached key over failing outright.
		if hit {
			return key, nil
		}
		return nil, err
	}

	keyCache.mu.Lock()
	keyCache.keys = keys
	keyCache.fetchedAt = time.Now()
	key, hit = keys[kid]
	keyCache.mu.Unlock()

	if !hit {
		return nil, fmt.Errorf("key with kid %s not found", kid)
	}
	return key, nil
}

func fetchJWKS(jwksURL string) (map[string]*rsa.PublicKey, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(jwksURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, err
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := parseRSAPublicKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

// parseRSAPublicKey builds an RSA public key from base64url modulus and exponent.
func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var exp uint64
	for _, b := range eb {
		exp = (exp << 8) | uint64(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(exp),
	}, nil
}
