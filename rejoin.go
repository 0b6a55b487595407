package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Resume tokens let a dropped connection reclaim its exact player slot.
// Lifetime matches the room expiry window, after which the slot may have
// been recycled anyway.

type Rejoin struct {
	secret string
}

func NewRejoin(secret string) *Rejoin {
	return &Rejoin{secret}
}

func (r Rejoin) GenerateResumeToken(gameID, roomCode string, playerID int) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gameId":   gameID,
		"roomCode": roomCode,
		"playerId": playerID,
		"exp":      jwt.NewNumericDate(time.Now().Add(roomExpiry)),
	})
	signed, err := token.SignedString([]byte(r.secret))
	if err != nil {
		return ""
	}
	return signed
}

// ParseResumeToken returns the slot binding the token was issued for, or
// ok=false for anything expired, forged, or malformed.
func (r Rejoin) ParseResumeToken(tokenString string) (gameID, roomCode string, playerID int, ok bool) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, isHMAC := t.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(r.secret), nil
	})
	if err != nil || !token.Valid {
		return "", "", 0, false
	}
	claims, isMap := token.Claims.(jwt.MapClaims)
	if !isMap {
		return "", "", 0, false
	}
	gameID, _ = claims["gameId"].(string)
	roomCode, _ = claims["roomCode"].(string)
	pid, _ := claims["playerId"].(float64)
	if gameID == "" || roomCode == "" || pid < 1 || pid > 4 {
		return "", "", 0, false
	}
	return gameID, roomCode, int(pid), true
}
